package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/rillquery/rill/internal/ir"
	"github.com/rillquery/rill/internal/ops"
	"github.com/rillquery/rill/internal/store"
)

// Error codes for load and compile failures.
const (
	ErrCodeNotFound      = "E_NOT_FOUND"
	ErrCodeScanError     = "E_SCAN"
	ErrCodeNoFiles       = "E_NO_FILES"
	ErrCodeLoadFailed    = "E_LOAD"
	ErrCodeBuildFailed   = "E_BUILD"
	ErrCodeBadClause     = "E_BAD_CLAUSE"
	ErrCodeCompileFailed = "E_COMPILE"
	ErrCodeGeneric       = "E_GENERIC"
)

// LoadError represents an error that occurred during query loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Query is one named query: an ordered list of raw clauses ready for the
// predicate compiler.
type Query struct {
	Name    string
	Clauses []Clause
}

// Clause is one raw clause tuple from a query file: the resolved operator,
// the input/output variable tokens, and clause-level options.
type Clause struct {
	OpName  string
	Op      any
	In      []any
	Out     []any
	Options map[string]any
}

// LoadResult contains the queries parsed from a directory of CUE files.
// Close releases any databases opened for table sources.
type LoadResult struct {
	Queries   []Query
	FileCount int

	dbs map[string]*store.DB
}

// Close closes every database opened while resolving table sources.
func (r *LoadResult) Close() error {
	var firstErr error
	for _, db := range r.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// LoadQueries loads query definitions from a directory of CUE files.
//
// Expected shape:
//
//	queries: <name>: clauses: [
//		{op: "table", db: "shop.db", table: "orders", columns: ["item", "qty"], out: ["?item", "?qty"]},
//		{op: "positive", in: ["?qty"]},
//		{op: "sum", in: ["?qty"], out: ["?total"]},
//	]
func LoadQueries(dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("query directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing query directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	result := &LoadResult{
		FileCount: len(cueFiles),
		dbs:       make(map[string]*store.DB),
	}
	if err := result.parseQueries(value, dir); err != nil {
		result.Close()
		return nil, err
	}
	return result, nil
}

func (r *LoadResult) parseQueries(value cue.Value, dir string) error {
	queriesVal := value.LookupPath(cue.ParsePath("queries"))
	if !queriesVal.Exists() {
		return &LoadError{Code: ErrCodeBuildFailed, Message: "no queries field found"}
	}
	iter, err := queriesVal.Fields()
	if err != nil {
		return &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("iterating queries: %v", err)}
	}
	for iter.Next() {
		q := Query{Name: iter.Label()}
		clausesVal := iter.Value().LookupPath(cue.ParsePath("clauses"))
		if !clausesVal.Exists() {
			return &LoadError{
				Code:    ErrCodeBadClause,
				Message: fmt.Sprintf("query %q has no clauses", q.Name),
				Pos:     iter.Value().Pos(),
			}
		}
		clauseIter, err := clausesVal.List()
		if err != nil {
			return &LoadError{Code: ErrCodeBadClause, Message: fmt.Sprintf("query %q: clauses must be a list: %v", q.Name, err)}
		}
		for clauseIter.Next() {
			clause, err := r.parseClause(clauseIter.Value(), dir)
			if err != nil {
				return err
			}
			q.Clauses = append(q.Clauses, clause)
		}
		r.Queries = append(r.Queries, q)
	}
	return nil
}

func (r *LoadResult) parseClause(v cue.Value, dir string) (Clause, error) {
	var c Clause

	opName, err := v.LookupPath(cue.ParsePath("op")).String()
	if err != nil {
		return c, &LoadError{Code: ErrCodeBadClause, Message: fmt.Sprintf("clause op must be a string: %v", err), Pos: v.Pos()}
	}
	c.OpName = opName

	if c.In, err = decodeTokens(v.LookupPath(cue.ParsePath("in"))); err != nil {
		return c, &LoadError{Code: ErrCodeBadClause, Message: fmt.Sprintf("clause %q in: %v", opName, err), Pos: v.Pos()}
	}
	if c.Out, err = decodeTokens(v.LookupPath(cue.ParsePath("out"))); err != nil {
		return c, &LoadError{Code: ErrCodeBadClause, Message: fmt.Sprintf("clause %q out: %v", opName, err), Pos: v.Pos()}
	}
	if c.Options, err = r.decodeOptions(v.LookupPath(cue.ParsePath("options")), dir); err != nil {
		return c, err
	}

	if opName == "table" {
		src, err := r.tableSource(v, dir)
		if err != nil {
			return c, err
		}
		c.Op = src
		return c, nil
	}

	op, ok := ops.Lookup(opName)
	if !ok {
		return c, &LoadError{Code: ErrCodeBadClause, Message: fmt.Sprintf("unknown operator %q", opName), Pos: v.Pos()}
	}
	c.Op = op
	return c, nil
}

// tableSource resolves a table clause into a SQLite-backed source,
// reusing one database handle per path.
func (r *LoadResult) tableSource(v cue.Value, dir string) (*store.TableSource, error) {
	dbPath, err := v.LookupPath(cue.ParsePath("db")).String()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBadClause, Message: fmt.Sprintf("table clause db: %v", err), Pos: v.Pos()}
	}
	table, err := v.LookupPath(cue.ParsePath("table")).String()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBadClause, Message: fmt.Sprintf("table clause table: %v", err), Pos: v.Pos()}
	}
	colTokens, err := decodeTokens(v.LookupPath(cue.ParsePath("columns")))
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBadClause, Message: fmt.Sprintf("table clause columns: %v", err), Pos: v.Pos()}
	}
	columns := make([]string, 0, len(colTokens))
	for _, tok := range colTokens {
		s, ok := tok.(string)
		if !ok {
			return nil, &LoadError{Code: ErrCodeBadClause, Message: fmt.Sprintf("table column must be a string, got %T", tok), Pos: v.Pos()}
		}
		columns = append(columns, s)
	}

	db, err := r.openDB(dir, dbPath)
	if err != nil {
		return nil, err
	}
	return db.Table(table, columns...), nil
}

func (r *LoadResult) openDB(dir, dbPath string) (*store.DB, error) {
	path := dbPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, dbPath)
	}
	if db, ok := r.dbs[path]; ok {
		return db, nil
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("opening database %s: %v", path, err)}
	}
	r.dbs[path] = db
	return db, nil
}

// decodeOptions converts a clause's options struct into the compiler's
// options map. Trap descriptors spelled as {db, table} resolve to taps.
func (r *LoadResult) decodeOptions(v cue.Value, dir string) (map[string]any, error) {
	if !v.Exists() {
		return nil, nil
	}
	out := make(map[string]any)
	iter, err := v.Fields()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBadClause, Message: fmt.Sprintf("clause options: %v", err), Pos: v.Pos()}
	}
	for iter.Next() {
		key := iter.Label()
		if key == ir.OptTrap {
			tap, err := r.tableSource(iter.Value(), dir)
			if err != nil {
				return nil, err
			}
			out[key] = tap
			continue
		}
		val, err := decodeValue(iter.Value())
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadClause, Message: fmt.Sprintf("clause option %q: %v", key, err), Pos: v.Pos()}
		}
		out[key] = val
	}
	return out, nil
}

// decodeTokens converts an optional CUE list into clause tokens.
func decodeTokens(v cue.Value) ([]any, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, err
	}
	var out []any
	for iter.Next() {
		tok, err := decodeValue(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
	return out, nil
}

// decodeValue converts a scalar or list CUE value to its Go form.
func decodeValue(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.StringKind:
		return v.String()
	case cue.IntKind:
		i, err := v.Int64()
		return i, err
	case cue.BoolKind:
		return v.Bool()
	case cue.FloatKind, cue.NumberKind:
		return v.Float64()
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, err
		}
		var out []any
		for iter.Next() {
			elem, err := decodeValue(iter.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value kind: %v", v.Kind())
	}
}

// findCUEFiles returns the .cue files directly inside dir.
func findCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".cue") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

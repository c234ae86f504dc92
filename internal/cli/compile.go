package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rillquery/rill/internal/compiler"
	"github.com/rillquery/rill/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	OptionsFile string // YAML file with default clause options

	// newCompiler builds the predicate compiler; tests inject one with a
	// fixed name generator for deterministic output.
	newCompiler func() *compiler.Compiler
}

// QueryResult holds compiled predicate summaries for one query.
type QueryResult struct {
	Name       string           `json:"name"`
	Predicates []map[string]any `json:"predicates"`
}

// CompilationResult holds the compiled queries.
type CompilationResult struct {
	Queries []QueryResult `json:"queries"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts, newCompiler: compiler.New}

	cmd := &cobra.Command{
		Use:   "compile <query-dir>",
		Short: "Compile CUE query files to predicate IR",
		Long: `Compile declarative query clauses to predicate IR.

The compiler loads CUE query files, resolves operators and table sources,
runs every clause through the predicate-compilation pipeline, and prints
the compiled predicate summaries.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.OptionsFile, "options", "", "YAML file with default clause options")

	return cmd
}

func runCompile(opts *CompileOptions, queryDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	result, err := LoadQueries(queryDir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			formatter.Error(loadErr.Code, loadErr.Message, nil)
			return &ExitError{Code: ExitCommandError, Message: loadErr.Message, Err: loadErr}
		}
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: err.Error(), Err: err}
	}
	defer result.Close()

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, queryDir)

	defaults, err := loadDefaultOptions(opts.OptionsFile)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: err.Error(), Err: err}
	}

	c := opts.newCompiler()
	compiled := &CompilationResult{}
	for _, q := range result.Queries {
		formatter.VerboseLog("Compiling query: %s", q.Name)
		qr := QueryResult{Name: q.Name}
		for _, clause := range q.Clauses {
			pred, err := c.Compile(mergeOptions(defaults, clause.Options), clause.Op, clause.In, clause.Out)
			if err != nil {
				msg := fmt.Sprintf("query %q, clause %q: %v", q.Name, clause.OpName, err)
				formatter.Error(ErrCodeCompileFailed, msg, nil)
				return &ExitError{Code: ExitFailure, Message: msg, Err: err}
			}
			summary := ir.Summarize(pred)
			summary["id"] = pred.Env().ID
			summary["op"] = clause.OpName
			qr.Predicates = append(qr.Predicates, summary)
		}
		compiled.Queries = append(compiled.Queries, qr)
	}

	return outputCompileSuccess(formatter, compiled)
}

// loadDefaultOptions reads a YAML file of clause options applied to every
// clause unless the clause sets the same key itself.
func loadDefaultOptions(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading options file: %w", err)
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing options file: %w", err)
	}
	return out, nil
}

func mergeOptions(defaults, clause map[string]any) map[string]any {
	if len(defaults) == 0 {
		return clause
	}
	out := make(map[string]any, len(defaults)+len(clause))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range clause {
		out[k] = v
	}
	return out
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	total := 0
	for _, q := range result.Queries {
		total += len(q.Predicates)
	}
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d query(s), %d predicate(s)\n", len(result.Queries), total)

	for _, q := range result.Queries {
		fmt.Fprintf(formatter.Writer, "\nQuery %s:\n", q.Name)
		for _, p := range q.Predicates {
			fmt.Fprintf(formatter.Writer, "  %-10s %-20s in=%v out=%v\n",
				p["op"], p["kind"], p["infields"], p["outfields"])
			if formatter.Verbose {
				fmt.Fprintf(formatter.Writer, "             id=%v\n", p["id"])
			}
		}
	}
	return nil
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cwbudde/go-ecma/internal/interp/realm"
	"github.com/cwbudde/go-ecma/internal/interp/runtime"
	"github.com/cwbudde/go-ecma/pkg/ast"
	"github.com/spf13/cobra"
)

var (
	evalJSON   string
	dumpAST    bool
	configPath string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a JSON-encoded AST program",
	Long: `Execute a program given as a JSON-encoded AST (the same shape
pkg/ast.Program emits via encoding/json) from a file or inline text.

Examples:
  # Run a program from a file
  ecma run program.json

  # Evaluate inline AST JSON
  ecma run -e '{"Body":[...]}'

  # Load realm limits from a YAML config
  ecma run --config realm.yaml program.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalJSON, "eval", "e", "", "evaluate inline AST JSON instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "re-marshal and print the decoded AST before running (for debugging)")
	runCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML realm configuration file")
}

func runProgram(_ *cobra.Command, args []string) error {
	var input []byte
	var source string

	switch {
	case evalJSON != "":
		input = []byte(evalJSON)
		source = "<eval>"
	case len(args) == 1:
		source = args[0]
		content, err := os.ReadFile(source)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", source, err)
		}
		input = content
	default:
		return fmt.Errorf("either provide a file path or use -e flag for inline AST JSON")
	}

	program, err := ast.ParseJSON(input)
	if err != nil {
		return fmt.Errorf("failed to decode AST from %s: %w", source, err)
	}

	if dumpAST {
		pretty, err := json.MarshalIndent(program, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to re-marshal AST: %w", err)
		}
		fmt.Println(string(pretty))
	}

	cfg := realm.DefaultConfig()
	if configPath != "" {
		raw, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
		cfg, err = realm.LoadConfigYAML(raw)
		if err != nil {
			return fmt.Errorf("failed to parse config %s: %w", configPath, err)
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[running %s, maxCallStackDepth=%d]\n", source, cfg.MaxCallStackDepth)
	}

	interp, completion := realm.EvaluateWithRealm(cfg, program)

	if completion.Kind == runtime.Throw {
		fmt.Fprintln(os.Stderr, "Uncaught exception:", describeThrown(interp, completion.Value))
		return fmt.Errorf("execution failed")
	}

	if !completion.Value.IsUndefined() {
		s, c := interp.Conversions().ToString(completion.Value)
		if c.IsAbrupt() {
			fmt.Println(completion.Value.GoString())
		} else {
			fmt.Println(s)
		}
	}

	return nil
}

// describeThrown renders a thrown value the way a script author would
// recognize it: Error objects print "Name: Message", everything else
// falls back to ToString.
func describeThrown(interp *realm.Interpreter, v runtime.Value) string {
	if v.IsObject() {
		if obj := interp.Store().Get(v.AsObject()); obj != nil && obj.ErrorData != nil {
			return fmt.Sprintf("%s: %s", obj.ErrorData.Name, obj.ErrorData.Message)
		}
	}
	s, c := interp.Conversions().ToString(v)
	if c.IsAbrupt() {
		return v.GoString()
	}
	return s
}

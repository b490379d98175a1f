package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/stage3dec/stage3dec/internal/helpers"
	"github.com/stage3dec/stage3dec/pkg/api"
)

var (
	outputFile     string
	sourceMaps     bool
	printRewritten bool
)

var transformCmd = &cobra.Command{
	Use:   "transform [file]",
	Short: "Lower decorator syntax in a single JS/TS file",
	Long: `Read one source file (or stdin, given "-" or no argument), lower
any TC39 Stage 3 decorator syntax it contains, and write the result to
stdout or --output.

Examples:
  # Transform a file and print the result
  decoratorc transform src/widget.ts

  # Transform stdin, write the result to a file
  decoratorc transform - --output out.js < src/widget.ts

  # Transform without generating a source map
  decoratorc transform src/widget.ts --sourcemap=false`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTransform,
}

func init() {
	rootCmd.AddCommand(transformCmd)

	transformCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	transformCmd.Flags().BoolVar(&sourceMaps, "sourcemap", true, "emit a source map alongside the output")
	transformCmd.Flags().BoolVar(&printRewritten, "list-classes", false, "print the names of rewritten classes to stderr")
}

func runTransform(_ *cobra.Command, args []string) error {
	filename := "-"
	if len(args) == 1 {
		filename = args[0]
	}

	source, err := readSource(filename)
	if err != nil {
		return err
	}

	optsJSON, err := json.Marshal(api.Options{SourceMaps: sourceMaps})
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}

	result := api.Transform(filename, source, string(optsJSON))

	for _, msg := range result.Errors {
		fmt.Fprintln(os.Stderr, msg)
	}

	if printRewritten && len(result.RewrittenClasses) > 0 {
		fmt.Fprintf(os.Stderr, "rewrote classes: %s\n", helpers.StringArrayToQuotedCommaSeparatedString(result.RewrittenClasses))
	}

	if err := writeOutput(outputFile, result.Code); err != nil {
		return err
	}

	if sourceMaps && result.Map != "" && outputFile != "" {
		if err := os.WriteFile(outputFile+".map", []byte(result.Map), 0644); err != nil {
			return fmt.Errorf("failed to write source map: %w", err)
		}
	}

	if len(result.Errors) > 0 {
		return fmt.Errorf("transform failed with %d error(s)", len(result.Errors))
	}
	return nil
}

func readSource(filename string) (string, error) {
	if filename == "-" || filename == "" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(content), nil
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return string(content), nil
}

func writeOutput(path string, code string) error {
	if path == "" {
		_, err := fmt.Fprint(os.Stdout, code)
		return err
	}
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}

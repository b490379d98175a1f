package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/stage3dec/stage3dec/pkg/api"
)

// serveRequest is one line of stdin input to "decoratorc serve": a single
// file to transform plus whatever options that file's transform wants.
// Unlike esbuild's binary length-prefixed service protocol, this pass has
// no incremental/watch state to synchronize across messages, so one line
// of JSON in gets one line of JSON out.
type serveRequest struct {
	Filename string `json:"filename"`
	Source   string `json:"source"`
	Options  string `json:"options"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a long-lived transform service over stdin/stdout",
	Long: `Read newline-delimited JSON transform requests from stdin and write
one newline-delimited JSON api.Result per request to stdout. Intended for
a host process (editor plugin, build tool) that wants to reuse a single
process across many files instead of spawning decoratorc per file.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req serveRequest
		if err := json.Unmarshal(line, &req); err != nil {
			writeServeError(out, err)
			continue
		}

		result := api.Transform(req.Filename, req.Source, req.Options)
		encoded, err := json.Marshal(result)
		if err != nil {
			writeServeError(out, err)
			continue
		}
		out.Write(encoded)
		out.WriteByte('\n')
		out.Flush()
	}

	if err := scanner.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("serve: error reading stdin: %w", err)
	}
	return nil
}

func writeServeError(out *bufio.Writer, err error) {
	result := api.Result{Errors: []string{err.Error()}}
	encoded, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		return
	}
	out.Write(encoded)
	out.WriteByte('\n')
	out.Flush()
}

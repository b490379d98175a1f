// Package api is the single entry point this module exposes: Transform
// turns one file's worth of JS/TS source into plain ECMAScript with no
// decorator syntax left in it: parse, run the pass, serialize, report
// errors as strings, as a plain Go function taking/returning strings.
package api

import (
	"encoding/json"
	"fmt"

	"github.com/stage3dec/stage3dec/internal/decorator"
	"github.com/stage3dec/stage3dec/internal/js_parser"
	"github.com/stage3dec/stage3dec/internal/js_printer"
	"github.com/stage3dec/stage3dec/internal/logger"
	"github.com/stage3dec/stage3dec/internal/runtime"
	"github.com/stage3dec/stage3dec/internal/sourcemap"
)

// Options mirrors the single documented knob this pass exposes: whether
// to produce a source map alongside the transformed code.
type Options struct {
	SourceMaps bool `json:"source_maps"`
}

// Result is what a transform produces. Errors is always non-nil (empty
// when there were none) so callers serializing this to JSON get a
// stable "errors": [] rather than "errors": null.
type Result struct {
	Code             string   `json:"code"`
	Map              string   `json:"map,omitempty"`
	Errors           []string `json:"errors"`
	RewrittenClasses []string `json:"rewrittenClasses,omitempty"`

	// InjectedRuntime reports whether Code was prefixed with the _applyDecs
	// helper text, so a host doing chunk-splitting can skip re-emitting its
	// own copy of the runtime when a file had nothing to lower.
	InjectedRuntime bool `json:"injectedRuntime"`
}

// Transform lowers decorator syntax out of source. filename is used only
// for diagnostic locations and (when source maps are requested) the
// map's "sources" entry; optionsJSON is the JSON encoding of Options,
// and an empty string is treated the same as "{}". A panic anywhere in the
// pipeline is recovered here and reported as a single error, with Code set
// to the original source.
func Transform(filename string, source string, optionsJSON string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Code: source, Errors: []string{fmt.Sprintf("internal error: %v", r)}}
		}
	}()

	var opts Options
	if optionsJSON != "" {
		if err := json.Unmarshal([]byte(optionsJSON), &opts); err != nil {
			return Result{Errors: []string{fmt.Sprintf("invalid options: %s", err)}}
		}
	}

	log := logger.NewDeferLog()
	src := &logger.Source{
		Index:          1,
		PrettyPath:     filename,
		IdentifierName: filename,
		Contents:       source,
	}

	program, ok := js_parser.Parse(log, src)
	if !ok {
		return Result{Code: source, Errors: log.Strings()}
	}

	rewrite := decorator.RewriteProgram(log, src, &program)

	printOpts := js_printer.Options{}
	if opts.SourceMaps {
		printOpts.Source = src
	}
	printed := js_printer.Print(program, printOpts)

	code := string(printed.JS)
	if rewrite.NeedsRuntime {
		code = runtime.Code + "\n" + code
	}

	errs := log.Strings()
	if errs == nil {
		errs = []string{}
	}

	result = Result{
		Code:             code,
		Errors:           errs,
		RewrittenClasses: rewrite.RewrittenClasses,
		InjectedRuntime:  rewrite.NeedsRuntime,
	}

	if opts.SourceMaps && printed.SourceMap != nil {
		file := sourcemap.NewFile([]string{filename}, []string{source}, printed.SourceMap.Mappings())
		if encoded, err := json.Marshal(file); err == nil {
			result.Map = string(encoded)
		}
	}

	return result
}

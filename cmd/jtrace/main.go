// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Program jtrace reads JSON values from files or standard input and prints
// them as path/value lines, as JSON, or as YAML.
//
// Usage:
//
//	jtrace [flags] [file ...]
//
// With no files, or the file "-", jtrace reads standard input. In the
// default "paths" format, each value is printed on its own line preceded by
// its path, with objects and arrays shown as {} and []:
//
//	$.users[0].name	"Jake Wharton"
//
// The --match flag keeps only values whose path matches a JSONPath
// expression, and is applied while streaming. The --select flag instead
// evaluates an RFC 9535 JSONPath query over each complete value, and the
// --at flag prints the single value at a path such as "$.users[0]" in each
// document, keeping object members in input order.
//
// Set JTRACE_DEBUG in the environment to enable debug logging.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/creachadair/jreader"
	"github.com/creachadair/jreader/ast"
	"github.com/creachadair/jreader/ast/cursor"
	"github.com/creachadair/jreader/jpath"
	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"
)

func main() {
	logLevel := slog.LevelInfo
	if os.Getenv("JTRACE_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	if err := run(os.Args[1:], os.Stdin, os.Stdout, logger); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "jtrace: %v\n", err)
		os.Exit(1)
	}
}

// config holds the settings of a single invocation.
type config struct {
	lenient       bool
	stripComments bool
	format        string
	indent        string
	match         func(path string) bool // nil matches every path
	selectExpr    string
	at            string
}

func run(args []string, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	var cfg config
	var matchExpr string

	flagSet := pflag.NewFlagSet("jtrace", pflag.ContinueOnError)
	flagSet.BoolVarP(&cfg.lenient, "lenient", "l", false, "accept the lenient JSON grammar")
	flagSet.BoolVar(&cfg.stripComments, "strip-comments", false, "remove comments and trailing commas before reading")
	flagSet.StringVarP(&cfg.format, "format", "f", "paths", "output format: paths, json, or yaml")
	flagSet.StringVar(&cfg.indent, "indent", "", "indentation for JSON output (default compact)")
	flagSet.StringVarP(&matchExpr, "match", "m", "", "print only values whose path matches this JSONPath expression")
	flagSet.StringVarP(&cfg.selectExpr, "select", "s", "", "print the results of this JSONPath query on each value")
	flagSet.StringVar(&cfg.at, "at", "", "print the value at this path in each value")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: jtrace [flags] [file ...]\n\nFlags:\n%s", flagSet.FlagUsages())
	}
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	switch cfg.format {
	case "paths", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q", cfg.format)
	}
	if matchExpr != "" {
		if cfg.selectExpr != "" {
			return errors.New("at most one of --match and --select may be set")
		} else if cfg.format == "yaml" {
			return errors.New("--match is not supported with --format yaml")
		}
		e, err := jpath.Parse(matchExpr)
		if err != nil {
			return fmt.Errorf("invalid --match expression: %w", err)
		}
		cfg.match = e.Match
	}
	if cfg.selectExpr != "" && cfg.format == "paths" {
		return errors.New("--select requires --format json or yaml")
	}
	if cfg.at != "" {
		if matchExpr != "" || cfg.selectExpr != "" {
			return errors.New("--at may not be combined with --match or --select")
		} else if cfg.format == "paths" {
			return errors.New("--at requires --format json or yaml")
		} else if _, err := jpath.ParseProjection(cfg.at); err != nil {
			return fmt.Errorf("invalid --at path %q: %w", cfg.at, err)
		}
	}

	inputs := flagSet.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	out := bufio.NewWriter(stdout)
	for _, name := range inputs {
		if err := traceFile(name, stdin, out, cfg, logger); err != nil {
			out.Flush()
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return out.Flush()
}

// traceFile opens the named input and writes its trace to out.
func traceFile(name string, stdin io.Reader, out *bufio.Writer, cfg config, logger *slog.Logger) error {
	var in io.Reader = stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	if cfg.stripComments {
		data, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		stripped := jsonc.ToJSON(data)
		logger.Debug("stripped comments", "input", name, "before", len(data), "after", len(stripped))
		in = bytes.NewReader(stripped)
	}

	r := jreader.NewReaderWithOptions(in, jreader.Options{Lenient: cfg.lenient})
	logger.Debug("reading input", "input", name, "lenient", cfg.lenient, "format", cfg.format)

	var nv int
	var err error
	switch {
	case cfg.selectExpr != "":
		nv, err = traceSelect(r, out, cfg)
	case cfg.at != "":
		nv, err = traceAt(r, out, cfg)
	case cfg.format == "yaml":
		nv, err = traceYAML(r, out)
	case cfg.format == "json":
		nv, err = traceJSON(r, out, cfg)
	default:
		nv, err = tracePaths(r, out, cfg)
	}
	if err != nil {
		logger.Debug("read failed", "input", name, "path", r.Path(), "error", err)
		return err
	}
	logger.Debug("read complete", "input", name, "values", nv)
	return nil
}

// tracePaths writes a line for each value of r, and returns the number of
// lines written.
func tracePaths(r *jreader.Reader, out *bufio.Writer, cfg config) (int, error) {
	h := &pathPrinter{out: out, match: cfg.match}
	err := jreader.WalkAll(r, h)
	return h.n, err
}

// traceJSON copies the values of r to out as JSON. If a match expression is
// set, only the matching values are copied.
func traceJSON(r *jreader.Reader, out *bufio.Writer, cfg config) (int, error) {
	w := jreader.NewWriterWithOptions(out, jreader.Options{Indent: cfg.indent, Lenient: true})
	var n int
	for {
		k, err := r.Peek()
		if err != nil {
			return n, err
		} else if k == jreader.EndDocument {
			break
		}
		if k.IsValue() && (cfg.match == nil || cfg.match(r.Path())) {
			if err := jreader.Copy(w, r); err != nil {
				return n, err
			}
			n++
			continue
		}
		if _, err := r.Next(); err != nil {
			return n, err
		}
	}
	if err := w.Flush(); err != nil {
		return n, err
	}
	if n > 0 {
		out.WriteByte('\n')
	}
	return n, nil
}

// traceYAML writes each value of r to out as a YAML document.
func traceYAML(r *jreader.Reader, out *bufio.Writer) (int, error) {
	vs, err := ast.ParseReader(r)
	if err != nil {
		return 0, err
	}
	for i, v := range vs {
		if err := writeYAML(out, i, v); err != nil {
			return i, err
		}
	}
	return len(vs), nil
}

// traceSelect evaluates the select query on each value of r, and writes the
// results in the chosen format.
func traceSelect(r *jreader.Reader, out *bufio.Writer, cfg config) (int, error) {
	vs, err := ast.ParseReader(r)
	if err != nil {
		return 0, err
	}
	var n int
	for _, v := range vs {
		res, err := ast.Select(v, cfg.selectExpr)
		if err != nil {
			return n, err
		}
		for _, elt := range res {
			if cfg.format == "yaml" {
				err = writeYAML(out, n, ast.ToValue(elt))
			} else {
				err = writeJSON(out, ast.ToValue(elt), cfg.indent)
			}
			if err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

// traceAt writes the value at the configured path in each value of r.
// Values that do not contain the path are skipped.
func traceAt(r *jreader.Reader, out *bufio.Writer, cfg config) (int, error) {
	vs, err := ast.ParseReader(r)
	if err != nil {
		return 0, err
	}
	var n int
	for _, v := range vs {
		c := cursor.New(v).Seek(cfg.at)
		if c.Err() != nil {
			continue
		}
		if cfg.format == "yaml" {
			err = writeYAML(out, n, c.Value())
		} else {
			err = writeJSON(out, c.Value(), cfg.indent)
		}
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func writeYAML(out *bufio.Writer, i int, v ast.Value) error {
	data, err := ast.ToYAML(v)
	if err != nil {
		return err
	}
	if i > 0 {
		out.WriteString("---\n")
	}
	_, err = out.Write(data)
	return err
}

func writeJSON(out *bufio.Writer, v ast.Value, indent string) error {
	if indent == "" {
		_, err := fmt.Fprintln(out, v.JSON())
		return err
	}
	w := jreader.NewWriterWithOptions(out, jreader.Options{Indent: indent, Lenient: true})
	r := jreader.NewReaderWithOptions(bytes.NewReader([]byte(v.JSON())), jreader.Options{Lenient: true})
	if err := jreader.Copy(w, r); err != nil {
		return err
	} else if err := w.Flush(); err != nil {
		return err
	}
	return out.WriteByte('\n')
}

// pathPrinter is a jreader.Handler that prints a line for each value.
type pathPrinter struct {
	out   *bufio.Writer
	match func(string) bool
	n     int
}

func (p *pathPrinter) print(loc jreader.Anchor, text string) {
	if p.match != nil && !p.match(loc.Path()) {
		return
	}
	p.n++
	fmt.Fprintf(p.out, "%s\t%s\n", loc.Path(), text)
}

func (p *pathPrinter) BeginObject(loc jreader.Anchor) error { p.print(loc, "{}"); return nil }
func (p *pathPrinter) BeginArray(loc jreader.Anchor) error  { p.print(loc, "[]"); return nil }

func (p *pathPrinter) EndObject(jreader.Anchor) error   { return nil }
func (p *pathPrinter) EndArray(jreader.Anchor) error    { return nil }
func (p *pathPrinter) BeginMember(jreader.Anchor) error { return nil }
func (p *pathPrinter) EndMember(jreader.Anchor) error   { return nil }
func (p *pathPrinter) EndOfInput(jreader.Anchor)        {}

func (p *pathPrinter) Value(loc jreader.Anchor) error {
	tok := loc.Token()
	switch tok.Kind {
	case jreader.StringValue:
		p.print(loc, jreader.Quote(tok.Text))
	case jreader.NullValue:
		p.print(loc, "null")
	default:
		p.print(loc, tok.Text)
	}
	return nil
}

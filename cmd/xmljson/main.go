// Command xmljson converts an XML document into an equivalent JSON
// representation augmented with a computed score summary, and prints it with
// 4-space indentation.
//
// Usage (stdin):
//
//	cat data.xml | xmljson
//
// Usage (file):
//
//	xmljson -i data.xml
//
// Usage (directory mode, one object per .xml file):
//
//	xmljson -dir ./responses
//
// Persist summaries and ship metrics:
//
//	xmljson -i data.xml -db_kind sqlite -db conversions.db -dd -name nightly
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"xmljson/internal/convert"
	"xmljson/internal/metrics"
	"xmljson/internal/metrics/datadog"
	"xmljson/internal/score"
	"xmljson/internal/store"

	_ "xmljson/internal/store/mssql"
	_ "xmljson/internal/store/postgres"
	_ "xmljson/internal/store/sqlite"
)

// backendCloser is the minimal interface used by this command to manage a
// metrics backend.
type backendCloser interface {
	metrics.Backend
	Close() error
}

// deps are external seams for testability.
//
// Unit tests inject fake factories and capture stdout/stderr; main wires the
// real implementations.
type deps struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	BackendFactory func(ctx context.Context, jobName string, tags []string, flushEvery time.Duration) (backendCloser, error)
	StoreFactory   func(ctx context.Context, cfg store.Config) (store.Repository, error)
	Now            func() time.Time
}

// runConfig holds the parsed flags for a run.
type runConfig struct {
	InputFile string
	Dir       string

	Tag    string
	Target string

	DBKind string
	DBDSN  string

	JobName    string
	Datadog    bool
	DDTagsCSV  string
	FlushEvery time.Duration

	Quiet bool
}

// main is intentionally small: it wires real dependencies and exits with a code.
func main() {
	code := run(context.Background(), os.Args[1:], deps{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		BackendFactory: func(ctx context.Context, jobName string, tags []string, flushEvery time.Duration) (backendCloser, error) {
			return datadog.NewBackend(ctx, datadog.Options{
				JobName:    jobName,
				Tags:       tags,
				FlushEvery: flushEvery,
			})
		},
		StoreFactory: store.New,
		Now:          time.Now,
	})
	os.Exit(code)
}

// run executes the conversion command and returns an exit code.
//
// Exit codes:
//   - 0: success.
//   - 1: operational failure (unreadable input, malformed XML, overflow, ...).
//   - 2: configuration/usage error.
func run(ctx context.Context, args []string, d deps) int {
	if d.Stdout == nil {
		d.Stdout = io.Discard
	}
	if d.Stderr == nil {
		d.Stderr = io.Discard
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	cfg, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(d.Stderr, err.Error())
		return 2
	}
	if cfg.InputFile != "" && cfg.Dir != "" {
		fmt.Fprintln(d.Stderr, "-i and -dir are mutually exclusive")
		return 2
	}

	rule := score.DefaultRule()
	if cfg.Tag != "" {
		rule.MatchTag = cfg.Tag
	}
	if cfg.Target != "" {
		rule.TargetPath = strings.Split(cfg.Target, ".")
	}

	if cfg.Datadog {
		if d.BackendFactory == nil {
			fmt.Fprintln(d.Stderr, "internal error: BackendFactory is nil")
			return 2
		}
		tags := append(datadog.ParseTagsCSV(cfg.DDTagsCSV), "tool:xmljson")
		backend, err := d.BackendFactory(ctx, cfg.JobName, tags, cfg.FlushEvery)
		if err != nil {
			fmt.Fprintf(d.Stderr, "datadog backend init failed: %v\n", err)
			return 2
		}
		metrics.SetBackend(backend)
		defer func() {
			_ = backend.Close()
			metrics.SetBackend(nil)
		}()
	}

	var repo store.Repository
	if cfg.DBDSN != "" {
		if d.StoreFactory == nil {
			fmt.Fprintln(d.Stderr, "internal error: StoreFactory is nil")
			return 2
		}
		repo, err = d.StoreFactory(ctx, store.Config{Kind: cfg.DBKind, DSN: cfg.DBDSN})
		if err != nil {
			fmt.Fprintf(d.Stderr, "store init failed: %v\n", err)
			return 2
		}
		defer repo.Close()

		if err := repo.EnsureSchema(ctx); err != nil {
			fmt.Fprintf(d.Stderr, "store schema: %v\n", err)
			return 2
		}
	}

	var sink convert.WarningSink
	if !cfg.Quiet {
		sink = convert.WarnFunc(func(w convert.Warning) {
			fmt.Fprintf(d.Stderr, "warning: %s\n", w)
		})
	}

	opts := convert.Options{
		Rule: rule,
		Sink: sink,
		Job:  cfg.JobName,
	}

	enc := json.NewEncoder(d.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")

	persist := func(source string, res convert.Result) error {
		if repo == nil {
			return nil
		}
		payload, err := json.Marshal(res.Doc)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		return repo.InsertConversion(ctx, store.Conversion{
			Source:        source,
			TotalScore:    res.TotalScore,
			MatchedScores: res.MatchedScores,
			SkippedScores: res.SkippedScores,
			WarningCount:  len(res.Warnings),
			Payload:       string(payload),
			ConvertedAt:   d.Now(),
		})
	}

	// Directory mode: stream a single JSON array, one object per file.
	if cfg.Dir != "" {
		if err := convert.StreamFromDir(d.Stdout, cfg.Dir, opts, enc, persist); err != nil {
			fmt.Fprintf(d.Stderr, "dir convert: %v\n", err)
			return 1
		}
		return 0
	}

	// Single input mode: stdin or -i.
	var res convert.Result
	source := cfg.InputFile
	if cfg.InputFile == "" {
		source = "stdin"
		data, err := io.ReadAll(d.Stdin)
		if err != nil {
			fmt.Fprintf(d.Stderr, "read stdin: %v\n", err)
			return 1
		}
		res, err = convert.Bytes(data, opts)
		if err != nil {
			fmt.Fprintf(d.Stderr, "convert: %v\n", err)
			return 1
		}
	} else {
		res, err = convert.File(cfg.InputFile, opts)
		if err != nil {
			fmt.Fprintf(d.Stderr, "convert: %v\n", err)
			return 1
		}
	}

	if err := persist(source, res); err != nil {
		fmt.Fprintf(d.Stderr, "persist: %v\n", err)
		return 1
	}

	if err := enc.Encode(res.Doc); err != nil {
		fmt.Fprintf(d.Stderr, "encode json: %v\n", err)
		return 1
	}
	return 0
}

// parseFlags parses command arguments into a runConfig.
//
// Errors:
//   - Returns an error (with usage text) for invalid flags.
//   - Does not exit the process; the caller decides the exit code.
func parseFlags(args []string) (runConfig, error) {
	fs := flag.NewFlagSet("xmljson", flag.ContinueOnError)

	// Capture help/usage text instead of writing to stdout.
	var usageBuf strings.Builder
	fs.SetOutput(&usageBuf)
	fs.Usage = func() {
		fmt.Fprintf(&usageBuf, "Usage of %s:\n", fs.Name())
		fs.PrintDefaults()
	}

	var cfg runConfig
	fs.StringVar(&cfg.InputFile, "i", "", "Path to XML input file (stdin when empty)")
	fs.StringVar(&cfg.Dir, "dir", "", "Directory of .xml files to convert as a JSON array")
	fs.StringVar(&cfg.Tag, "tag", "", "Element name to sum (default Score)")
	fs.StringVar(&cfg.Target, "target", "", "Dotted path the summary is injected under (default Response.ResultBlock)")
	fs.StringVar(&cfg.DBKind, "db_kind", "sqlite", "Summary store backend: sqlite, postgres or mssql")
	fs.StringVar(&cfg.DBDSN, "db", "", "DSN for the summary store (disabled when empty)")
	fs.StringVar(&cfg.JobName, "name", "xmljson", "Logical job name used in metrics tags")
	fs.BoolVar(&cfg.Datadog, "dd", false, "Ship conversion metrics to Datadog")
	fs.StringVar(&cfg.DDTagsCSV, "dd_tags", "", "Extra Datadog tags CSV (e.g. env:prod,service:intake)")
	fs.DurationVar(&cfg.FlushEvery, "metrics_flush", 1*time.Minute, "Datadog flush interval")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Suppress warning diagnostics on stderr")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return runConfig{}, errors.New(usageBuf.String())
		}
		return runConfig{}, fmt.Errorf("%v\n\n%s", err, usageBuf.String())
	}

	return cfg, nil
}

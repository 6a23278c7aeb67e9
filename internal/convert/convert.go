// Package convert runs the whole XML→JSON pipeline: read, parse, map,
// aggregate, inject.
//
// Error policy is explicit rather than mixed: fatal problems (unreadable
// input, malformed XML, mapping failure, score overflow) abort the conversion
// and surface to the caller; recovered problems (unparseable score text, a
// missing injection target path) are reported to the warning sink, collected
// on the Result, and the conversion still returns the structure built so far.
package convert

import (
	"fmt"
	"os"
	"time"

	"xmljson/internal/jsonmap"
	"xmljson/internal/metrics"
	"xmljson/internal/score"
	"xmljson/internal/xmltree"
)

// IOError reports an unreadable input. It is returned before any parse
// attempt, so no partial output can exist when it surfaces.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("read %s: %v", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// Warning kinds, stable for machine consumption.
const (
	WarnScoreFormat = "score_format"
	WarnTargetPath  = "target_path"
	WarnSkippedFile = "skipped_file"
)

// Warning is one recovered, non-fatal problem from a conversion.
type Warning struct {
	Kind   string
	Detail string
}

func (w Warning) String() string { return w.Kind + ": " + w.Detail }

// WarningSink receives recovered problems as they happen.
//
// Conversions never write to process-wide logs directly; the caller decides
// where warnings go (stderr in the CLI, a recorder in tests).
type WarningSink interface {
	Warn(w Warning)
}

// WarnFunc adapts a func to WarningSink.
type WarnFunc func(Warning)

func (f WarnFunc) Warn(w Warning) { f(w) }

// Options configure one conversion.
type Options struct {
	// Rule selects the score tag and injection target. The zero value
	// (empty MatchTag) means score.DefaultRule().
	Rule score.Rule

	// Sink receives recovered warnings as they occur. May be nil; Result
	// still collects them.
	Sink WarningSink

	// Job names the conversion in metrics. Defaults to "xmljson".
	Job string
}

// Result is the outcome of a successful conversion: the mapped structure
// plus any recovered warnings.
//
// When the injection target path was absent, Doc carries no summary field
// and Warnings says so; callers that need the distinction check Warnings
// rather than an error.
type Result struct {
	// Doc is the mapped JSON structure, augmented with the score summary
	// when the target path existed.
	Doc map[string]any

	// TotalScore is the aggregate, zero when nothing matched.
	TotalScore int64

	// MatchedScores and SkippedScores count elements that parsed and that
	// were dropped with a format warning.
	MatchedScores int
	SkippedScores int

	Warnings []Warning
}

// File reads path and converts it.
//
// Errors:
//   - An unreadable file returns *IOError before any parse attempt.
//   - Everything else follows Bytes.
func File(path string, opts Options) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, &IOError{Path: path, Err: err}
	}
	return Bytes(data, opts)
}

// Bytes converts a single XML document held in memory.
//
// The pipeline is synchronous and owns all intermediate state; nothing is
// shared or cached across calls.
func Bytes(data []byte, opts Options) (Result, error) {
	start := time.Now()

	job := opts.Job
	if job == "" {
		job = "xmljson"
	}
	rule := opts.Rule
	if rule.MatchTag == "" {
		rule = score.DefaultRule()
	}

	res, err := pipeline(data, rule, opts.Sink)
	metrics.RecordConversion(job, err, res.MatchedScores, res.SkippedScores, time.Since(start))
	return res, err
}

func pipeline(data []byte, rule score.Rule, sink WarningSink) (Result, error) {
	root, err := xmltree.Parse(data)
	if err != nil {
		return Result{}, err
	}

	var res Result
	emit := func(w Warning) {
		res.Warnings = append(res.Warnings, w)
		if sink != nil {
			sink.Warn(w)
		}
	}

	total, err := score.Sum(root, rule.MatchTag, func(sw score.Warning) {
		res.SkippedScores++
		emit(Warning{Kind: WarnScoreFormat, Detail: sw.String()})
	})
	if err != nil {
		return Result{}, err
	}
	res.TotalScore = total
	res.MatchedScores = len(xmltree.FindAll(root, rule.MatchTag)) - res.SkippedScores

	doc, err := jsonmap.Map(root)
	if err != nil {
		return Result{}, err
	}
	res.Doc = doc

	if err := score.Inject(doc, rule, total); err != nil {
		// Missing target path degrades to "JSON without the summary field":
		// the mapped structure is intact and still returned.
		emit(Warning{Kind: WarnTargetPath, Detail: err.Error()})
	}

	return res, nil
}

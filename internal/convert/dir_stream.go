package convert

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// StreamFromDir converts every .xml file in dir and streams a single JSON
// array to w, one object per file.
//
// Behavior:
//   - stable ordering by filename
//   - unreadable or unconvertible files are reported to the warning sink and
//     skipped, so one bad document cannot abort a batch
//   - each emitted object carries a "source_file" key naming its file
//
// onResult, when non-nil, is invoked with each successful conversion before
// it is encoded; returning an error aborts the stream. Callers use it to
// persist summaries alongside the streamed output.
func StreamFromDir(w io.Writer, dir string, opts Options, enc *json.Encoder, onResult func(file string, res Result) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	if _, err := io.WriteString(w, "["); err != nil {
		return fmt.Errorf("write [: %w", err)
	}

	first := true
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			continue
		}

		res, err := File(filepath.Join(dir, e.Name()), opts)
		if err != nil {
			if opts.Sink != nil {
				opts.Sink.Warn(Warning{
					Kind:   WarnSkippedFile,
					Detail: fmt.Sprintf("%s: %v", e.Name(), err),
				})
			}
			continue
		}

		if onResult != nil {
			if err := onResult(e.Name(), res); err != nil {
				return fmt.Errorf("record %s: %w", e.Name(), err)
			}
		}

		res.Doc["source_file"] = e.Name()

		if !first {
			if _, err := io.WriteString(w, ","); err != nil {
				return fmt.Errorf("write comma: %w", err)
			}
		}
		first = false

		if err := enc.Encode(res.Doc); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
	}

	if _, err := io.WriteString(w, "]"); err != nil {
		return fmt.Errorf("write ]: %w", err)
	}
	return nil
}

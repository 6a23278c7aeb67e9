// Package score extracts integer scores from a document tree, sums them with
// overflow protection, and injects the aggregate into a mapped JSON
// structure.
//
// Aggregation and injection are driven by a Rule so the generic mapper and
// this domain logic stay decoupled and independently testable.
package score

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"xmljson/internal/xmltree"
)

// Rule describes one extraction: which elements are summed and where the
// result is written in the mapped structure.
type Rule struct {
	// MatchTag is the exact element name whose text content is summed.
	MatchTag string

	// TargetPath is the chain of object keys, from the structure root, that
	// must already exist for injection to succeed.
	TargetPath []string

	// ResultKey is the key created under the target object.
	ResultKey string

	// ValueKey is the field holding the sum inside the result object.
	ValueKey string
}

// DefaultRule matches the fixed convention of the match-response format:
// sum <Score> elements and write
// Response.ResultBlock.MatchSummary.TotalMatchScore.
func DefaultRule() Rule {
	return Rule{
		MatchTag:   "Score",
		TargetPath: []string{"Response", "ResultBlock"},
		ResultKey:  "MatchSummary",
		ValueKey:   "TotalMatchScore",
	}
}

// Warning records one skipped score element.
type Warning struct {
	// Index is the 1-based position of the element in document order among
	// all elements matching the tag.
	Index int

	// Text is the trimmed text that failed to parse.
	Text string

	Err error
}

func (w Warning) String() string {
	return fmt.Sprintf("score element %d: invalid integer %q", w.Index, w.Text)
}

// OverflowError reports a sum that would leave the int64 range.
//
// Unlike a per-node format problem, overflow is fatal: the running total is
// already wrong to report, so aggregation aborts.
type OverflowError struct {
	Total int64
	Value int64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("score sum overflow: adding %d to running total %d exceeds int64", e.Value, e.Total)
}

// Sum adds the integer text of every element named tag, at any depth, in
// document order.
//
// Behavior:
//   - A node whose text is empty or not a base-10 integer is skipped and
//     reported to warn; remaining nodes still contribute. Warning order
//     follows document order, so it is reproducible.
//   - An addition that would pass math.MaxInt64 or math.MinInt64 returns
//     *OverflowError and aborts.
//   - Returns 0 when nothing matches or every match was skipped.
//
// warn may be nil.
func Sum(root *xmltree.Node, tag string, warn func(Warning)) (int64, error) {
	var total int64
	var overflow *OverflowError
	idx := 0

	xmltree.Walk(root, func(n *xmltree.Node) {
		if overflow != nil || n.Name != tag {
			return
		}
		idx++

		text := strings.TrimSpace(n.Text)
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			if warn != nil {
				warn(Warning{Index: idx, Text: text, Err: err})
			}
			return
		}

		if (v > 0 && total > math.MaxInt64-v) || (v < 0 && total < math.MinInt64-v) {
			overflow = &OverflowError{Total: total, Value: v}
			return
		}
		total += v
	})

	if overflow != nil {
		return 0, overflow
	}
	return total, nil
}

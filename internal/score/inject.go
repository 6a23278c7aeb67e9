package score

import (
	"fmt"
	"strings"
)

// PathError reports that Rule.TargetPath does not lead to an object in the
// mapped structure. The structure is left untouched when this is returned.
type PathError struct {
	Path    []string
	Missing string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("target path %s: step %q is missing or not an object",
		strings.Join(e.Path, "."), e.Missing)
}

// Inject writes {rule.ValueKey: total} as the value of rule.ResultKey inside
// the object reached by descending rule.TargetPath from the root of doc.
//
// Behavior:
//   - Every step of TargetPath must already exist as an object; Inject never
//     creates intermediate objects.
//   - On success no key other than ResultKey is touched.
//
// Errors:
//   - Returns *PathError when a step is absent or not an object. doc is not
//     modified in that case.
func Inject(doc map[string]any, rule Rule, total int64) error {
	cur := doc
	for _, step := range rule.TargetPath {
		next, ok := cur[step].(map[string]any)
		if !ok {
			return &PathError{Path: rule.TargetPath, Missing: step}
		}
		cur = next
	}

	cur[rule.ResultKey] = map[string]any{rule.ValueKey: total}
	return nil
}

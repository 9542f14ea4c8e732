package evaluator

import (
	"regexp"
	"strconv"
	"strings"
)

// indexedSegment matches array-access segments of the form ident[3]
var indexedSegment = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\[([0-9]+)\]$`)

// Resolve walks a dot/bracket path expression against a decoded JSON
// document and returns the value it names, or nil when any step of the
// walk fails. Paths may carry a leading "$." or "$" root marker; "$"
// and the empty path name the document itself.
//
// Each dot-separated segment is either a plain key or an ident[n]
// array access. Wildcard, slice, and filter syntax is not supported
// and is looked up as a literal key, which simply fails to match.
// Resolve never returns an error; a missing key, an out-of-range
// index, or indexing into a non-container all degrade to nil.
func Resolve(doc interface{}, path string) interface{} {
	if strings.HasPrefix(path, "$.") {
		path = path[2:]
	} else if strings.HasPrefix(path, "$") {
		path = path[1:]
	}

	if path == "" {
		return doc
	}

	current := doc
	for _, segment := range strings.Split(path, ".") {
		if current == nil {
			return nil
		}

		if m := indexedSegment.FindStringSubmatch(segment); m != nil {
			obj, ok := current.(map[string]interface{})
			if !ok {
				return nil
			}
			arr, ok := obj[m[1]].([]interface{})
			if !ok {
				return nil
			}
			index, err := strconv.Atoi(m[2])
			if err != nil || index >= len(arr) {
				return nil
			}
			current = arr[index]
			continue
		}

		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current = obj[segment]
	}

	return current
}

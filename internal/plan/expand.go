package plan

import (
	"fmt"
	"strconv"
	"strings"
)

// ExpandChapters expands a compact chapter token into the concrete list of
// chapter numbers: "5" -> [5], "1-3" -> [1 2 3]. Surrounding whitespace is
// ignored. Malformed tokens (non-numeric parts, extra dashes, reversed
// ranges) expand to an empty list rather than an error — schedule rows use
// non-chapter tokens as placeholders for rest days, and rendering must not
// break on them.
func ExpandChapters(token string) []int {
	chapters, err := ParseChapterRange(token)
	if err != nil {
		return nil
	}
	return chapters
}

// InvalidRangeError reports a chapter token that does not parse as a single
// chapter or an inclusive range.
type InvalidRangeError struct {
	Token string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid chapter range %q", e.Token)
}

// ParseChapterRange is the strict form of ExpandChapters: same grammar, but
// malformed input returns *InvalidRangeError so validating callers (the plan
// importer) can distinguish bad data from an intentional empty assignment.
// A reversed range ("3-1") parses but yields no chapters.
func ParseChapterRange(token string) ([]int, error) {
	token = strings.TrimSpace(token)

	if strings.Contains(token, "-") {
		parts := strings.Split(token, "-")
		if len(parts) != 2 {
			return nil, &InvalidRangeError{Token: token}
		}
		start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, &InvalidRangeError{Token: token}
		}
		end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, &InvalidRangeError{Token: token}
		}
		var chapters []int
		for c := start; c <= end; c++ {
			chapters = append(chapters, c)
		}
		return chapters, nil
	}

	n, err := strconv.Atoi(token)
	if err != nil {
		return nil, &InvalidRangeError{Token: token}
	}
	return []int{n}, nil
}

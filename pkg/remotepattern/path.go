package remotepattern

import (
	"strings"

	"github.com/gobwas/glob"
)

type pathSegment struct {
	any     bool // "**": zero or more whole segments
	literal string
	g       glob.Glob
}

func (s pathSegment) match(seg string) bool {
	if s.g != nil {
		// "*" stands for one segment, never an empty one.
		return seg != "" && s.g.Match(seg)
	}
	return seg == s.literal
}

// pathMatcher matches an escaped URL path segment by segment.
type pathMatcher struct {
	never    bool
	segments []pathSegment
}

func compilePath(pattern string) (pathMatcher, error) {
	if pattern == "" {
		return pathMatcher{never: true}, nil
	}
	if !strings.HasPrefix(pattern, "/") {
		return pathMatcher{}, errReason("must start with \"/\"")
	}

	parts := strings.Split(pattern[1:], "/")
	segments := make([]pathSegment, 0, len(parts))
	for _, part := range parts {
		switch {
		case part == "**":
			// Consecutive "**" segments are equivalent to one.
			if n := len(segments); n > 0 && segments[n-1].any {
				continue
			}
			segments = append(segments, pathSegment{any: true})

		case strings.Contains(part, "**"):
			return pathMatcher{}, errReason("\"**\" must be a whole path segment")

		case strings.Contains(part, "*"):
			g, err := glob.Compile(quoteSegment(part))
			if err != nil {
				return pathMatcher{}, err
			}
			segments = append(segments, pathSegment{g: g})

		default:
			segments = append(segments, pathSegment{literal: part})
		}
	}
	return pathMatcher{segments: segments}, nil
}

// quoteSegment escapes everything in a path segment except "*".
func quoteSegment(part string) string {
	pieces := strings.Split(part, "*")
	for i, p := range pieces {
		pieces[i] = glob.QuoteMeta(p)
	}
	return strings.Join(pieces, "*")
}

func (m pathMatcher) match(path string) bool {
	if m.never {
		return false
	}
	segs := strings.Split(strings.TrimPrefix(path, "/"), "/")

	// reach[j] is true when the pattern consumed so far matches segs[:j].
	reach := make([]bool, len(segs)+1)
	reach[0] = true
	for _, ps := range m.segments {
		next := make([]bool, len(segs)+1)
		if ps.any {
			seen := false
			for j := range next {
				seen = seen || reach[j]
				next[j] = seen
			}
		} else {
			for j := 1; j <= len(segs); j++ {
				next[j] = reach[j-1] && ps.match(segs[j-1])
			}
		}
		reach = next
	}
	return reach[len(segs)]
}

package utils

import "strings"

// ParseQueryList handles both repeated and comma-separated query params.
// Empty items are dropped.
//
//	?severity=high,medium            → ["high","medium"]
//	?severity=high&severity=medium   → ["high","medium"]
func ParseQueryList(q map[string][]string, key string) []string {
	values := q[key]

	if len(values) == 0 {
		return nil
	}

	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

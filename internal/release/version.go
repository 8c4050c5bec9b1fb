package release

import (
	"strconv"
	"strings"
)

// CompareVersions orders version strings by their numeric fields, so both
// dotted versions ("7.4.6" > "7.4.10" is false) and date-stamped versions
// ("20240727" > "20231026") compare correctly. Plain string comparison is
// never used.
func CompareVersions(a, b string) int {
	pa := numericParts(a)
	pb := numericParts(b)
	for len(pa) < len(pb) {
		pa = append(pa, 0)
	}
	for len(pb) < len(pa) {
		pb = append(pb, 0)
	}
	for i := range pa {
		if pa[i] != pb[i] {
			if pa[i] > pb[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

func numericParts(version string) []int {
	var parts []int
	current := strings.Builder{}
	flush := func() {
		if current.Len() > 0 {
			val, _ := strconv.Atoi(current.String())
			parts = append(parts, val)
			current.Reset()
		}
	}
	for _, r := range version {
		if r >= '0' && r <= '9' {
			current.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return parts
}

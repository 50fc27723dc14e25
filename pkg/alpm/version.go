package alpm

import "strings"

// VerCmp compares two pacman version strings and returns -1, 0 or 1 when a
// is older than, equal to or newer than b.
//
// A full version has the shape [epoch:]pkgver[-pkgrel]. Epochs compare
// numerically (absent epoch is 0) and dominate everything else. The upstream
// version and the release are compared segment by segment: a segment is a
// maximal run of digits or a maximal run of letters, separators only
// delimit. Numeric segments compare by value, alphabetic segments
// lexicographically, a numeric segment is newer than an alphabetic one, and
// a missing segment sorts before any present segment. An absent release
// compares equal to any release.
func VerCmp(a, b string) int {
	ea, va, ra := splitEVR(a)
	eb, vb, rb := splitEVR(b)

	if c := cmpNumeric(ea, eb); c != 0 {
		return c
	}
	if c := cmpSegments(va, vb); c != 0 {
		return c
	}
	if ra == "" || rb == "" {
		return 0
	}
	return cmpSegments(ra, rb)
}

// splitEVR splits a version string into epoch, upstream version and release.
func splitEVR(v string) (epoch, version, release string) {
	epoch = "0"
	if i := strings.IndexByte(v, ':'); i >= 0 {
		if isDigits(v[:i]) {
			epoch = v[:i]
		}
		v = v[i+1:]
	}
	if i := strings.LastIndexByte(v, '-'); i >= 0 {
		return epoch, v[:i], v[i+1:]
	}
	return epoch, v, ""
}

// cmpSegments compares two version bodies segment by segment.
func cmpSegments(a, b string) int {
	for a != "" || b != "" {
		a = trimSeparators(a)
		b = trimSeparators(b)
		if a == "" && b == "" {
			return 0
		}
		// A missing segment sorts before any present one.
		if a == "" {
			return -1
		}
		if b == "" {
			return 1
		}

		segA, restA, numA := nextSegment(a)
		segB, restB, numB := nextSegment(b)

		switch {
		case numA && numB:
			if c := cmpNumeric(segA, segB); c != 0 {
				return c
			}
		case numA != numB:
			// Numeric beats alphabetic.
			if numA {
				return 1
			}
			return -1
		default:
			if c := strings.Compare(segA, segB); c != 0 {
				return c
			}
		}

		a, b = restA, restB
	}
	return 0
}

// nextSegment returns the leading digit or letter run, the remainder, and
// whether the segment was numeric.
func nextSegment(s string) (seg, rest string, numeric bool) {
	numeric = isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == numeric && isAlnum(s[i]) {
		i++
	}
	return s[:i], s[i:], numeric
}

// cmpNumeric compares two digit strings by numeric value without overflow.
func cmpNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func trimSeparators(s string) string {
	i := 0
	for i < len(s) && !isAlnum(s[i]) {
		i++
	}
	return s[i:]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// Package directive extracts and strips in-band control directives that
// clients embed in their authorization header: [STATUS_CODES:<spec>] and
// [ACCESS_KEY:<value>]. The grammar is intentionally small and
// extensible — a single regex pass recognizes both tags rather than
// three separate traversals, so adding a third directive later only
// means adding another case in Parse's switch.
package directive

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	minCode = 100
	maxCode = 599
)

var directiveRe = regexp.MustCompile(`(?i)\[(STATUS_CODES|ACCESS_KEY):([^\]]*)\]`)

var (
	termGTE    = regexp.MustCompile(`^(\d+)=\+$`)
	termGT     = regexp.MustCompile(`^(\d+)\+$`)
	termRange  = regexp.MustCompile(`^(\d+)-(\d+)$`)
	termSingle = regexp.MustCompile(`^(\d+)$`)
)

// Parsed is the result of extracting directives from one auth header.
type Parsed struct {
	// CleanedHeader is the header with all directives removed, ready to
	// forward upstream (or empty, per the Bearer-only collapsing rule).
	CleanedHeader string

	// RotationCodes is the parsed [STATUS_CODES:...] set, sorted
	// ascending. Nil means the directive was absent, empty, or entirely
	// invalid — callers should fall back to the default rotation policy.
	RotationCodes []int

	// AccessKey is the literal value of [ACCESS_KEY:...].
	AccessKey string

	// HasAccessKey reports whether an [ACCESS_KEY:...] directive was
	// present at all, distinguishing "no directive" from "directive with
	// an empty value".
	HasAccessKey bool
}

// Parse extracts directives from header and returns the cleaned header
// alongside whatever directives were found.
func Parse(header string) Parsed {
	var p Parsed

	p.CleanedHeader = directiveRe.ReplaceAllStringFunc(header, func(match string) string {
		sub := directiveRe.FindStringSubmatch(match)
		tag := strings.ToUpper(sub[1])
		value := strings.TrimSpace(sub[2])

		switch tag {
		case "STATUS_CODES":
			p.RotationCodes = ParseStatusCodeSpec(value)
		case "ACCESS_KEY":
			p.HasAccessKey = true
			p.AccessKey = value
		}
		return ""
	})

	if p.CleanedHeader == "Bearer" || p.CleanedHeader == "Bearer " {
		p.CleanedHeader = ""
	}

	return p
}

// ParseStatusCodeSpec parses a comma-separated status-code spec:
//
//	spec := term ("," term)*
//	term := INT | INT "-" INT | INT "+" | INT "=+"
//
// Non-integer or malformed terms are silently skipped. The result is a
// sorted, de-duplicated set of codes clamped to [100, 599]. An empty or
// entirely invalid spec returns nil.
func ParseStatusCodeSpec(spec string) []int {
	if spec == "" {
		return nil
	}

	set := make(map[int]struct{})
	for _, rawTerm := range strings.Split(spec, ",") {
		term := strings.TrimSpace(rawTerm)
		switch {
		case termGTE.MatchString(term):
			n := mustAtoi(termGTE.FindStringSubmatch(term)[1])
			addRange(set, n, maxCode)
		case termGT.MatchString(term):
			n := mustAtoi(termGT.FindStringSubmatch(term)[1])
			addRange(set, n+1, maxCode)
		case termRange.MatchString(term):
			m := termRange.FindStringSubmatch(term)
			addRange(set, mustAtoi(m[1]), mustAtoi(m[2]))
		case termSingle.MatchString(term):
			n := mustAtoi(term)
			addRange(set, n, n)
		default:
			continue
		}
	}

	if len(set) == 0 {
		return nil
	}

	result := make([]int, 0, len(set))
	for code := range set {
		result = append(result, code)
	}
	sort.Ints(result)
	return result
}

func addRange(set map[int]struct{}, a, b int) {
	if a < minCode {
		a = minCode
	}
	if b > maxCode {
		b = maxCode
	}
	for c := a; c <= b; c++ {
		set[c] = struct{}{}
	}
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Package scanner inspects request input for known attack signatures before
// the rate gate runs. It is a cheap, strict pre-filter: false positives on
// benign payloads containing flagged substrings are an accepted tradeoff.
package scanner

import (
	"net/url"
	"regexp"
)

// Family names the class of attack a pattern detects.
type Family string

const (
	FamilySQLInjection     Family = "sql_injection"
	FamilyXSS              Family = "xss"
	FamilyPathTraversal    Family = "path_traversal"
	FamilyCommandInjection Family = "command_injection"
)

// Match identifies the first pattern that fired.
type Match struct {
	Family  Family
	Pattern string
}

type signature struct {
	family Family
	re     *regexp.Regexp
}

// Patterns are compiled once at package init. MustCompile means an invalid
// pattern fails the process at start, never at request time.
var signatures = compile([]struct {
	family Family
	expr   string
}{
	{FamilySQLInjection, `(?i)\bunion\s+(all\s+)?select\b`},
	{FamilySQLInjection, `(?i)\b(select|insert|update|delete|drop|alter)\b.*\b(from|into|table|where)\b`},
	{FamilySQLInjection, `(?i)('|%27)\s*(or|and)\s*('|%27)?\s*\d`},
	{FamilySQLInjection, `(?i);\s*(drop|delete|truncate)\b`},
	{FamilyXSS, `(?i)<\s*script\b`},
	{FamilyXSS, `(?i)javascript\s*:`},
	{FamilyXSS, `(?i)\bon(error|load|click|mouseover)\s*=`},
	{FamilyPathTraversal, `\.\./`},
	{FamilyPathTraversal, `(?i)%2e%2e[/\\]`},
	{FamilyPathTraversal, `(?i)(etc/passwd|boot\.ini|win\.ini)`},
	{FamilyCommandInjection, "[;&|`]\\s*(cat|ls|rm|wget|curl|sh|bash|nc)\\b"},
	{FamilyCommandInjection, `\$\(.+\)`},
})

func compile(specs []struct {
	family Family
	expr   string
}) []signature {
	out := make([]signature, 0, len(specs))
	for _, s := range specs {
		out = append(out, signature{family: s.family, re: regexp.MustCompile(s.expr)})
	}
	return out
}

// Scan tests each value against the ordered signature list and returns the
// first match. Short-circuits: no need to enumerate every hit.
func Scan(values []string) (Match, bool) {
	for _, sig := range signatures {
		for _, v := range values {
			if v == "" {
				continue
			}
			if sig.re.MatchString(v) {
				return Match{Family: sig.family, Pattern: sig.re.String()}, true
			}
		}
	}
	return Match{}, false
}

// ScanRequestValues gathers the inputs the scanner cares about: the raw
// query string and every header value. No header is exempt; any of them is
// attacker-controlled, and the signatures do not fire on well-formed
// negotiation or credential values.
func ScanRequestValues(rawQuery string, headers map[string][]string) (Match, bool) {
	values := make([]string, 0, len(headers)+2)
	if rawQuery != "" {
		values = append(values, rawQuery)
		// Attackers URL-encode payloads; scan the decoded form too.
		if decoded, err := url.QueryUnescape(rawQuery); err == nil && decoded != rawQuery {
			values = append(values, decoded)
		}
	}
	for _, vals := range headers {
		values = append(values, vals...)
	}
	return Scan(values)
}

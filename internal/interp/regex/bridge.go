// Package regex bridges the script-surface regular expression syntax
// (§4.9) to a real engine. It never implements matching itself: it
// translates `(?<name>...)`, `\k<name>`, and the numeric/hex/unicode
// escapes JS defines into a form the chosen engine accepts, tries the
// feature-rich engine first, and falls back to a restricted one whose
// feature set is a strict subset when the first fails to compile
// (§4.9, §9 "Regex engine choice").
package regex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"go.uber.org/multierr"
)

// Engine tags which compiled backend a Pattern ended up using, so
// callers (and Flags diagnostics) can report the fallback's
// limitations rather than silently mismatching (§9).
type Engine int

const (
	EngineFancy Engine = iota // github.com/dlclark/regexp2 — supports look-around/back-references
	EngineRE2                 // stdlib regexp — no look-around/back-references, linear time
)

func (e Engine) String() string {
	if e == EngineFancy {
		return "regexp2"
	}
	return "re2"
}

// Pattern is a compiled script-surface regular expression plus the
// flag booleans the RegExp instance getters derive from (§4.9 "Flag
// getters... derive from the stored flags string").
type Pattern struct {
	Source string
	Flags  string

	Global     bool
	IgnoreCase bool
	Multiline  bool
	DotAll     bool
	Unicode    bool
	Sticky     bool
	HasIndices bool

	Engine Engine
	fancy  *regexp2.Regexp
	re2    *regexp.Regexp

	// GroupNames maps 1-based capture-group index to its `(?<name>)`
	// name, or "" if unnamed; index 0 is the whole match and is never
	// named.
	GroupNames []string
}

// Compile translates source/flags and compiles it, preferring the
// feature-rich engine and falling back to the restricted one on a
// compile failure (§4.9, §9; grounded on
// original_source/builtins/regexp.rs's `build_regex`, which always
// attempts fancy_regex first).
func Compile(source, flags string) (*Pattern, error) {
	p := &Pattern{Source: source, Flags: flags}
	for _, f := range flags {
		switch f {
		case 'g':
			p.Global = true
		case 'i':
			p.IgnoreCase = true
		case 'm':
			p.Multiline = true
		case 's':
			p.DotAll = true
		case 'u', 'v':
			p.Unicode = true
		case 'y':
			p.Sticky = true
		case 'd':
			p.HasIndices = true
		}
	}

	fancyPattern, names := translateForFancy(source)
	opts := regexp2.ECMAScript
	if p.IgnoreCase {
		opts |= regexp2.IgnoreCase
	}
	if p.Multiline {
		opts |= regexp2.Multiline
	}
	if p.DotAll {
		opts |= regexp2.Singleline
	}
	if re, err := regexp2.Compile(fancyPattern, opts); err == nil {
		p.Engine = EngineFancy
		p.fancy = re
		p.GroupNames = names
		return p, nil
	} else {
		fancyErr := err
		re2Pattern := translateForRE2(source)
		re2Pattern = applyRE2Flags(re2Pattern, p)
		re2, err2 := regexp.Compile(re2Pattern)
		if err2 != nil {
			return nil, multierr.Append(
				fmt.Errorf("regexp2 compile failed: %w", fancyErr),
				fmt.Errorf("re2 fallback compile failed: %w", err2),
			)
		}
		p.Engine = EngineRE2
		p.re2 = re2
		p.GroupNames = re2.SubexpNames()
		return p, nil
	}
}

// CanonicalFlags reassembles the flags string in the spec's canonical
// getter order (§8 Testable Property 8): d,g,i,m,s,u,v,y — only the
// boolean getters that are actually spec-defined, but this core keeps
// both `u` and `v` as the same Unicode flag internally, so only one of
// them appears, matching whichever the source specified.
func (p *Pattern) CanonicalFlags() string {
	var b strings.Builder
	if p.HasIndices {
		b.WriteByte('d')
	}
	if p.Global {
		b.WriteByte('g')
	}
	if p.IgnoreCase {
		b.WriteByte('i')
	}
	if p.Multiline {
		b.WriteByte('m')
	}
	if p.DotAll {
		b.WriteByte('s')
	}
	for _, f := range p.Flags {
		if f == 'u' || f == 'v' {
			b.WriteRune(f)
			break
		}
	}
	if p.Sticky {
		b.WriteByte('y')
	}
	return b.String()
}

// applyRE2Flags prepends RE2's inline-flag-group syntax, since RE2 does
// not understand .NET/ECMAScript option bits.
func applyRE2Flags(pattern string, p *Pattern) string {
	var prefix string
	if p.IgnoreCase {
		prefix += "i"
	}
	if p.Multiline {
		prefix += "m"
	}
	if p.DotAll {
		prefix += "s"
	}
	if prefix == "" {
		return pattern
	}
	return "(?" + prefix + ")" + pattern
}

// translateForFancy lightly adapts JS syntax for regexp2's .NET-derived
// grammar: `(?<name>...)`, `\k<name>`, and `\xHH` are already valid
// .NET syntax and pass through untouched; only the brace form of
// unicode escapes (`\u{...}`), `\0`, and `\cX` need manual resolution
// since .NET regex lacks them. Returns the translated pattern and the
// 1-based list of capture-group names (empty string for unnamed).
func translateForFancy(source string) (string, []string) {
	chars := []rune(source)
	var out strings.Builder
	names := []string{""}
	inClass := false

	for i := 0; i < len(chars); i++ {
		c := chars[i]

		if c == '[' && !inClass {
			inClass = true
			out.WriteRune(c)
			continue
		}
		if c == ']' && inClass {
			inClass = false
			out.WriteRune(c)
			continue
		}

		if c == '(' && !inClass && i+1 < len(chars) && chars[i+1] == '?' {
			if i+2 < len(chars) && chars[i+2] == '<' && i+3 < len(chars) && chars[i+3] != '=' && chars[i+3] != '!' {
				start := i + 3
				end := indexRune(chars, '>', start)
				if end > 0 {
					names = append(names, string(chars[start:end]))
					out.WriteString(string(chars[i : end+1]))
					i = end
					continue
				}
			} else {
				// unnamed group or (?:...), (?=...), (?!...), (?<=...), (?<!...)
				if !(i+2 < len(chars) && chars[i+2] == ':') && !(i+2 < len(chars) && (chars[i+2] == '=' || chars[i+2] == '!')) &&
					!(i+2 < len(chars) && chars[i+2] == '<') {
					names = append(names, "")
				}
			}
		} else if c == '(' && !inClass {
			names = append(names, "")
		}

		if c == '\\' && i+1 < len(chars) {
			next := chars[i+1]
			switch {
			case next == '0' && (i+2 >= len(chars) || !isDigit(chars[i+2])):
				out.WriteString("\\x00")
				i++
				continue
			case next == 'c' && i+2 < len(chars) && isAlpha(chars[i+2]):
				out.WriteString("\\c")
				out.WriteRune(chars[i+2])
				i += 2
				continue
			case next == 'u' && i+2 < len(chars) && chars[i+2] == '{':
				start := i + 3
				end := indexRune(chars, '}', start)
				if end > 0 {
					hex := string(chars[start:end])
					if cp, err := strconv.ParseInt(hex, 16, 32); err == nil {
						out.WriteString(encodeUnicodeEscape(rune(cp)))
					}
					i = end
					continue
				}
			}
		}

		out.WriteRune(c)
	}
	return out.String(), names
}

// encodeUnicodeEscape renders a code point as the \uHHHH escape
// (surrogate pair if outside the BMP) that .NET regex syntax accepts,
// since it has no brace form.
func encodeUnicodeEscape(cp rune) string {
	if cp <= 0xFFFF {
		return fmt.Sprintf("\\u%04x", cp)
	}
	cp -= 0x10000
	high := 0xD800 + (cp >> 10)
	low := 0xDC00 + (cp & 0x3FF)
	return fmt.Sprintf("\\u%04x\\u%04x", high, low)
}

// translateForRE2 rewrites JS named groups and back-references to
// RE2's Perl-style syntax (§9 "restricted subset fallback"). Back
// references have no RE2 equivalent and are left as invalid escapes so
// compilation fails loudly rather than silently mismatching, per the
// design note's "must document the fallback's limitations rather than
// silently mis-match".
func translateForRE2(source string) string {
	chars := []rune(source)
	var out strings.Builder
	inClass := false
	for i := 0; i < len(chars); i++ {
		c := chars[i]
		if c == '[' && !inClass {
			inClass = true
			out.WriteRune(c)
			continue
		}
		if c == ']' && inClass {
			inClass = false
			out.WriteRune(c)
			continue
		}
		if c == '(' && !inClass && i+2 < len(chars) && chars[i+1] == '?' && chars[i+2] == '<' &&
			i+3 < len(chars) && chars[i+3] != '=' && chars[i+3] != '!' {
			out.WriteString("(?P<")
			i += 2
			continue
		}
		if c == '\\' && i+1 < len(chars) && chars[i+1] == 'k' && i+2 < len(chars) && chars[i+2] == '<' {
			// Named back-reference: no RE2 equivalent.
			out.WriteString("\\k<")
			i += 2
			continue
		}
		out.WriteRune(c)
	}
	return out.String()
}

func indexRune(chars []rune, target rune, from int) int {
	for i := from; i < len(chars); i++ {
		if chars[i] == target {
			return i
		}
	}
	return -1
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isAlpha(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }

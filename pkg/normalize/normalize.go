// Package normalize canonicalizes the Arabic and mixed-script strings
// that make up beneficiary records: names, villages, phones, ids, and
// children lists. Normalize is idempotent and never mutates its input.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// alefVariants fold to the bare alef (U+0627).
var alefVariants = map[rune]rune{
	0x0622: 0x0627, // alef with madda above
	0x0623: 0x0627, // alef with hamza above
	0x0625: 0x0627, // alef with hamza below
}

// letterFolds collapses a handful of Arabic letter variants that humanitarian
// intake forms use interchangeably.
var letterFolds = map[rune]rune{
	0x0624: 0x0648, // waw with hamza above -> waw
	0x0626: 0x064A, // ya with hamza above -> ya
	0x0629: 0x0647, // teh marbuta -> heh
}

// isDiacritic reports whether r falls in one of the Arabic combining-mark
// ranges that carry no distinguishing information for fuzzy matching.
func isDiacritic(r rune) bool {
	switch {
	case r >= 0x064B && r <= 0x065F:
		return true
	case r >= 0x0610 && r <= 0x061A:
		return true
	case r >= 0x06D6 && r <= 0x06ED:
		return true
	default:
		return false
	}
}

func isArabic(r rune) bool {
	return r >= 0x0600 && r <= 0x06FF
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isKeptRune(r rune) bool {
	return isArabic(r) || isASCIILetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r)
}

// Normalize applies Unicode compatibility composition, strips Arabic
// diacritics, folds letter variants, replaces everything outside
// {Arabic, ASCII letters, digits, whitespace} with a space, collapses
// whitespace, trims, and lowercases. It is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if isDiacritic(r) {
			continue
		}
		if folded, ok := alefVariants[r]; ok {
			r = folded
		} else if folded, ok := letterFolds[r]; ok {
			r = folded
		}
		if !isKeptRune(r) {
			r = ' '
		}
		b.WriteRune(r)
	}

	collapsed := collapseWhitespace(b.String())
	return strings.ToLower(strings.TrimSpace(collapsed))
}

// collapseWhitespace replaces every run of whitespace with a single space.
func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteRune(' ')
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// Tokens splits a normalized string on whitespace. Empty tokens never
// appear in the result.
func Tokens(s string) []string {
	normalized := Normalize(s)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// DigitsOnly keeps only the ASCII digit runes of s.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// childrenSeparators is every delimiter intake forms use to pack a
// children list into a single string cell, including the Arabic comma.
const childrenSeparators = ";,|،"

// NormalizeChildrenField accepts either an already-ordered sequence of
// child names or a single delimited string, and returns the normalized
// per-child tokens with empties dropped.
func NormalizeChildrenField(v any) []string {
	var raw []string

	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		raw = t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		raw = strings.FieldsFunc(t, func(r rune) bool {
			return strings.ContainsRune(childrenSeparators, r)
		})
	default:
		return nil
	}

	result := make([]string, 0, len(raw))
	for _, child := range raw {
		n := Normalize(child)
		if n != "" {
			result = append(result, n)
		}
	}
	return result
}

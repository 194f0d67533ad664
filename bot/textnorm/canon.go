// Package textnorm normalizes free-text user input into a canonical form
// used only for equality and membership comparison, never for display.
//
// Pipeline order (each stage assumes the previous stage's output shape):
//  1. NFKC composition (full-width digits become ASCII, etc.)
//  2. strip zero-width and bidi control code points
//  3. strip emoji, emoji modifiers and joiners
//  4. fold cross-script confusable letters to Latin
//  5. fold leetspeak digits and symbols to letters
//  6. NFD decomposition, then drop combining marks
//  7. drop everything that is not a letter
//  8. case fold
//  9. collapse runs of a repeated character
package textnorm

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// zeroWidthSet covers zero-width spaces/joiners, bidi controls and BOM.
var zeroWidthSet = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200B, Hi: 0x200F, Stride: 1},
		{Lo: 0x202A, Hi: 0x202E, Stride: 1},
		{Lo: 0x2060, Hi: 0x206F, Stride: 1},
		{Lo: 0xFEFF, Hi: 0xFEFF, Stride: 1},
	},
}

// emojiSet covers pictographs, symbols, flags and the joiner/variation
// selector pair used to build multi-codepoint emoji.
var emojiSet = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200D, Hi: 0x200D, Stride: 1},
		{Lo: 0x2600, Hi: 0x26FF, Stride: 1},
		{Lo: 0x2700, Hi: 0x27BF, Stride: 1},
		{Lo: 0xFE0F, Hi: 0xFE0F, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F1E6, Hi: 0x1F1FF, Stride: 1},
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1},
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1},
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1},
		{Lo: 0x1F700, Hi: 0x1F77F, Stride: 1},
		{Lo: 0x1F780, Hi: 0x1F7FF, Stride: 1},
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1},
		{Lo: 0x1FA00, Hi: 0x1FA6F, Stride: 1},
		{Lo: 0x1FA70, Hi: 0x1FAFF, Stride: 1},
	},
}

// confusables maps Cyrillic, Greek and small-capital look-alikes to the
// closest Latin letter. Folding runs before decomposition so a confusable
// carrying a mark still resolves.
var confusables = map[rune]rune{
	// Cyrillic
	'А': 'A', 'В': 'B', 'Е': 'E', 'К': 'K', 'М': 'M', 'Н': 'H',
	'О': 'O', 'Р': 'P', 'С': 'S', 'Т': 'T', 'У': 'Y', 'Х': 'X',
	'а': 'a', 'в': 'b', 'е': 'e', 'к': 'k', 'м': 'm', 'н': 'h',
	'о': 'o', 'р': 'p', 'с': 'c', 'т': 't', 'у': 'y', 'х': 'x',
	// Greek
	'Α': 'A', 'Β': 'B', 'Ε': 'E', 'Ζ': 'Z', 'Η': 'H', 'Ι': 'I',
	'Κ': 'K', 'Μ': 'M', 'Ν': 'N', 'Ο': 'O', 'Ρ': 'P', 'Τ': 'T',
	'Υ': 'Y', 'Χ': 'X',
	'α': 'a', 'β': 'b', 'ε': 'e', 'ι': 'i', 'κ': 'k', 'ν': 'n',
	'ο': 'o', 'ρ': 'p', 'τ': 't', 'υ': 'y', 'χ': 'x',
	// Latin letter small capitals
	'ʙ': 'b', 'ɢ': 'g', 'ʜ': 'h', 'ɪ': 'i', 'ʟ': 'l', 'ᴍ': 'm',
	'ɴ': 'n', 'ᴏ': 'o', 'ᴘ': 'p', 'ʀ': 'r', 'ᴛ': 't', 'ᴜ': 'u',
}

// leet maps digit and symbol substitutions back to letters.
var leet = map[rune]rune{
	'0': 'o', '1': 'l', '2': 'z', '3': 'e', '4': 'a', '5': 's',
	'6': 'g', '7': 't', '8': 'b', '9': 'g',
	'@': 'a', '$': 's', '+': 't',
}

func mapTable(table map[rune]rune) runes.Transformer {
	return runes.Map(func(r rune) rune {
		if out, ok := table[r]; ok {
			return out
		}
		return r
	})
}

// chainPool hands out fresh transformer chains; chains are stateful and
// not safe for concurrent use.
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			runes.Remove(runes.In(zeroWidthSet)),
			runes.Remove(runes.In(emojiSet)),
			mapTable(confusables),
			mapTable(leet),
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.Predicate(func(r rune) bool { return !unicode.IsLetter(r) })),
			cases.Fold(),
		)
	},
}

// Canonicalize returns the canonical comparison form of s. It is total,
// deterministic and idempotent.
func Canonicalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		// transform failures leave partial output; fall back to the raw
		// string so equality checks stay deterministic
		out = s
	}

	return collapseRuns(out)
}

// collapseRuns reduces maximal runs of an identical rune to one occurrence.
// It runs last because earlier stages can create new adjacent duplicates.
func collapseRuns(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune = -1
	for _, r := range s {
		if r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// ContainsEmoji reports whether raw text carries emoji code points: any
// rune in the pictograph/symbol ranges, a joiner or variation selector, or
// a regional-indicator pair (flag emoji).
func ContainsEmoji(s string) bool {
	prevRegional := false
	for _, r := range s {
		regional := r >= 0x1F1E6 && r <= 0x1F1FF
		if regional {
			if prevRegional {
				return true
			}
			prevRegional = true
			continue
		}
		prevRegional = false
		if r == 0x200D || r == 0xFE0F {
			return true
		}
		if unicode.In(r, emojiSet) {
			return true
		}
	}
	return false
}

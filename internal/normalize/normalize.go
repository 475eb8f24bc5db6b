// Package normalize transforms lyric text for display and for comparison.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Options are the user-selected display toggles.
type Options struct {
	Capitalization bool
	Punctuation    bool
}

// substitutions is applied before diacritic folding.
var substitutions = map[rune]rune{
	'\u2018': '\'',
	'\u2019': '\'',
	'\u201C': '"',
	'\u201D': '"',
	'\u2014': '-',
	'\u0130': 'I',
	'\u0131': 'i',
	'\u00BF': '?',
	'\u00A1': '!',
	'\n':     ' ',
}

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// ForDisplay returns the text shown to the user.
func ForDisplay(text string, opts Options) string {
	text = strings.Map(foldSpace, lineEndings.Replace(norm.NFC.String(text)))
	if !opts.Capitalization {
		text = strings.ToLower(text)
	}
	if !opts.Punctuation {
		text = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
				return r
			}
			return -1
		}, text)
	}
	return text
}

// foldSpace turns tabs, non-breaking and other Unicode spaces into ' ' so
// every gap in a lyric can be typed with the space bar.
func foldSpace(r rune) rune {
	if r != '\n' && unicode.IsSpace(r) {
		return ' '
	}
	return r
}

// ForComparison folds text into the form used to diff input against lyrics.
// The result has the same rune count as the NFC form of text.
func ForComparison(text string) string {
	return strings.Map(FoldRune, norm.NFC.String(text))
}

// FoldRune maps a single rune to its comparison form.
func FoldRune(r rune) rune {
	if sub, ok := substitutions[r]; ok {
		return sub
	}
	if r < 0x80 {
		return r
	}
	stripped, _, err := transform.String(stripMarks(), string(r))
	if err != nil {
		return r
	}
	folded := []rune(stripped)
	if len(folded) != 1 {
		return r
	}
	return folded[0]
}

// IsSeparator reports whether r splits words in comparison form.
func IsSeparator(r rune) bool {
	return r == ' ' || r == '\n'
}

// stripMarks is rebuilt per call because transform chains carry state.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Compose returns the NFC form of text.
func Compose(text string) string {
	return norm.NFC.String(text)
}

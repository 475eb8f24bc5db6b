package normalize

import (
	"testing"
	"unicode/utf8"
)

func TestForDisplayToggles(t *testing.T) {
	in := "Hello, World! It's 2am"
	if got := ForDisplay(in, Options{Capitalization: true, Punctuation: true}); got != in {
		t.Fatalf("expected text unchanged, got %q", got)
	}
	if got := ForDisplay(in, Options{Capitalization: false, Punctuation: true}); got != "hello, world! it's 2am" {
		t.Fatalf("unexpected lowercase output: %q", got)
	}
	if got := ForDisplay(in, Options{Capitalization: true, Punctuation: false}); got != "Hello World Its 2am" {
		t.Fatalf("unexpected stripped output: %q", got)
	}
}

func TestForDisplayLineEndings(t *testing.T) {
	got := ForDisplay("one\r\ntwo\rthree", Options{Capitalization: true, Punctuation: true})
	if got != "one\ntwo\nthree" {
		t.Fatalf("unexpected line endings: %q", got)
	}
}

func TestForDisplayFoldsUnicodeSpaces(t *testing.T) {
	got := ForDisplay("one\u00a0two\tthree\u2005four\nfive", Options{Capitalization: true, Punctuation: false})
	if got != "one two three four\nfive" {
		t.Fatalf("unexpected spaces: %q", got)
	}
}

func TestForDisplayIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"¿Qué PASA, amigo?",
		"Don’t stop — believin’\nHold on",
		"café İstanbul ılık",
		"!!! ... ???",
	}
	for _, in := range inputs {
		for _, opts := range []Options{{}, {Capitalization: true}, {Punctuation: true}, {Capitalization: true, Punctuation: true}} {
			once := ForDisplay(in, opts)
			twice := ForDisplay(once, opts)
			if once != twice {
				t.Fatalf("ForDisplay not idempotent for %q %+v: %q vs %q", in, opts, once, twice)
			}
		}
	}
}

func TestForComparisonTable(t *testing.T) {
	cases := map[string]string{
		"\u2018a\u2019":   "'a'",
		"\u201Cq\u201D":   "\"q\"",
		"a\u2014b":        "a-b",
		"\u0130\u0131":    "Ii",
		"\u00BFqu\u00E9?": "?que?",
		"\u00A1ya!":       "!ya!",
		"line\nbreak":     "line break",
		"caf\u00E9":       "cafe",
		"cafe\u0301":      "cafe",
		"na\u00EFve":      "naive",
	}
	for in, want := range cases {
		if got := ForComparison(in); got != want {
			t.Fatalf("ForComparison(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestForComparisonPreservesLength(t *testing.T) {
	display := ForDisplay("Señor, ¿cómo está?\nÇa va — très bien", Options{Capitalization: true, Punctuation: true})
	cmp := ForComparison(display)
	if utf8.RuneCountInString(cmp) != utf8.RuneCountInString(display) {
		t.Fatalf("comparison length %d differs from display length %d", utf8.RuneCountInString(cmp), utf8.RuneCountInString(display))
	}
	if ForComparison(cmp) != cmp {
		t.Fatalf("ForComparison not idempotent: %q", cmp)
	}
}

func TestFoldRuneKeepsUnmappedRunes(t *testing.T) {
	for _, r := range []rune{'a', 'Z', '7', ' ', '中', 'ß'} {
		if got := FoldRune(r); got != r {
			t.Fatalf("FoldRune(%q) = %q, want unchanged", r, got)
		}
	}
}

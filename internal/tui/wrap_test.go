package tui

import (
	"testing"

	"github.com/verte-zerg/lyrictype/internal/lyric"
)

func tokensFor(target, input string) []lyric.Token {
	tokens := lyric.Tokenize(target)
	typed := []rune(input)
	lyric.Each(tokens, func(pos int, ch *lyric.Character) {
		if pos >= len(typed) {
			return
		}
		if typed[pos] == ch.Char {
			ch.State = lyric.Correct
		} else {
			ch.State = lyric.Incorrect
		}
	})
	return tokens
}

func TestBuildStyledRunesCursor(t *testing.T) {
	runes := buildStyledRunes(tokensFor("a b", "a"), 1)
	if len(runes) != 3 {
		t.Fatalf("expected 3 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[1].s != cursorStyle.Render(" ") {
		t.Fatalf("expected cursor style on the space")
	}
	if runes[2].s != currentWordStyle.Render("b") {
		t.Fatalf("expected next word highlighted")
	}
}

func TestBuildStyledRunesNoCursorWhenComplete(t *testing.T) {
	runes := buildStyledRunes(tokensFor("a", "a"), -1)
	if len(runes) != 1 {
		t.Fatalf("expected 1 rune, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for completed rune")
	}
}

func TestBuildStyledRunesKeepsTargetOnMistype(t *testing.T) {
	runes := buildStyledRunes(tokensFor("ab", "ax"), 2)
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected incorrect style for second rune")
	}
}

func TestBuildStyledRunesWordHighlighting(t *testing.T) {
	runes := buildStyledRunes(tokensFor("one two", "o"), 1)
	if runes[0].s != correctStyle.Render("o") {
		t.Fatalf("expected correct style for typed rune")
	}
	if runes[1].s != currentWordStyle.Underline(true).Render("n") {
		t.Fatalf("expected underlined current word style under the cursor")
	}
	if runes[2].s != currentWordStyle.Render("e") {
		t.Fatalf("expected current word style for untyped in current word")
	}
	if runes[4].s != pendingStyle.Render("t") {
		t.Fatalf("expected pending style for next word")
	}
	if runes[6].s != pendingStyle.Render("o") {
		t.Fatalf("expected pending style for next word")
	}
}

func TestBuildStyledRunesWrongSpaceDot(t *testing.T) {
	runes := buildStyledRunes(tokensFor("a b", "ax"), 2)
	if len(runes) != 3 {
		t.Fatalf("expected 3 runes, got %d", len(runes))
	}
	if runes[1].s != incorrectStyle.Render("•") {
		t.Fatalf("expected red dot for wrong space")
	}
}

func TestBuildStyledRunesNewline(t *testing.T) {
	runes := buildStyledRunes(tokensFor("ab\ncd", "ab"), 2)
	nl := runes[2]
	if !nl.isNewline || nl.s != cursorStyle.Render(" ") || nl.width != 1 {
		t.Fatalf("expected cursor cell at line break, got %+v", nl)
	}
	runes = buildStyledRunes(tokensFor("ab\ncd", "abx"), 3)
	if runes[2].s != incorrectStyle.Render("↵") {
		t.Fatalf("expected return marker for wrong line break")
	}
	runes = buildStyledRunes(tokensFor("ab\ncd", ""), 0)
	if runes[2].s != "" || runes[2].width != 0 {
		t.Fatalf("expected invisible pending line break, got %+v", runes[2])
	}
}

func plainRunes(text string) []styledRune {
	out := make([]styledRune, 0, len(text))
	for _, r := range text {
		item := styledRune{s: string(r), width: 1, isSpace: r == ' '}
		if r == '\n' {
			item = styledRune{isNewline: true}
		}
		out = append(out, item)
	}
	return out
}

func TestWrapStyledRunes(t *testing.T) {
	cases := []struct {
		text  string
		width int
		want  string
	}{
		{"one two three", 8, "one two\nthree"},
		{"ab\ncd", 10, "ab\ncd"},
		{"abcdefgh", 3, "abc\ndef\ngh"},
		{"one two\nthree four", 0, "one two\nthree four"},
	}
	for _, tc := range cases {
		if got := wrapStyledRunes(plainRunes(tc.text), tc.width); got != tc.want {
			t.Fatalf("wrap(%q, %d) = %q, want %q", tc.text, tc.width, got, tc.want)
		}
	}
}

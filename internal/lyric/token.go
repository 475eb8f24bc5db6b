// Package lyric splits display lyrics into tokens and tracks the cursor.
package lyric

import "strings"

// State is the correctness tag of a typed character.
type State int

const (
	Unset State = iota
	Correct
	Incorrect
)

// Kind distinguishes token types.
type Kind int

const (
	Word Kind = iota
	Space
	Newline
)

// Character is a single rune of the display text with its correctness.
type Character struct {
	Char  rune
	State State
}

// Token is a word or a single separator. Separators hold exactly one
// Character so every display rune carries a state.
type Token struct {
	Kind  Kind
	Chars []Character
}

// Len returns the number of display runes the token covers.
func (t Token) Len() int {
	return len(t.Chars)
}

// Tokenize splits display text on spaces and newlines.
func Tokenize(display string) []Token {
	tokens := []Token{}
	var word []Character
	flush := func() {
		if len(word) > 0 {
			tokens = append(tokens, Token{Kind: Word, Chars: word})
			word = nil
		}
	}
	for _, r := range display {
		switch r {
		case ' ':
			flush()
			tokens = append(tokens, Token{Kind: Space, Chars: []Character{{Char: r}}})
		case '\n':
			flush()
			tokens = append(tokens, Token{Kind: Newline, Chars: []Character{{Char: r}}})
		default:
			word = append(word, Character{Char: r})
		}
	}
	flush()
	return tokens
}

// Count returns the total number of display runes across tokens.
func Count(tokens []Token) int {
	total := 0
	for _, tok := range tokens {
		total += tok.Len()
	}
	return total
}

// Text concatenates tokens back into display text.
func Text(tokens []Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		for _, ch := range tok.Chars {
			b.WriteRune(ch.Char)
		}
	}
	return b.String()
}

// Each calls fn with a pointer to every character in order along with its
// linear position.
func Each(tokens []Token, fn func(pos int, ch *Character)) {
	pos := 0
	for i := range tokens {
		for j := range tokens[i].Chars {
			fn(pos, &tokens[i].Chars[j])
			pos++
		}
	}
}

// CountState returns how many characters carry the given state.
func CountState(tokens []Token, state State) int {
	n := 0
	for _, tok := range tokens {
		for _, ch := range tok.Chars {
			if ch.State == state {
				n++
			}
		}
	}
	return n
}

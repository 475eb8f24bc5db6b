package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/lyrictype/internal/lyric"
)

type styledRune struct {
	s         string
	width     int
	isSpace   bool
	isNewline bool
}

// buildStyledRunes renders every lyric character. cursorIndex is the flat
// position of the next character to type, or -1 when the test is over.
func buildStyledRunes(tokens []lyric.Token, cursorIndex int) []styledRune {
	currentWord := wordForCursor(tokens, cursorIndex)

	out := make([]styledRune, 0, lyric.Count(tokens))
	pos := 0
	for ti, tok := range tokens {
		for _, ch := range tok.Chars {
			displayed := string(ch.Char)
			style := pendingStyle
			switch ch.State {
			case lyric.Correct:
				style = correctStyle
			case lyric.Incorrect:
				style = incorrectStyle
				switch tok.Kind {
				case lyric.Space:
					displayed = "•"
				case lyric.Newline:
					displayed = "↵"
				}
			default:
				if ti == currentWord {
					style = currentWordStyle
				}
			}
			if tok.Kind == lyric.Newline && ch.State != lyric.Incorrect {
				displayed = ""
				if pos == cursorIndex {
					displayed = " "
				}
			}
			if pos == cursorIndex {
				style = style.Underline(true)
			}
			rendered := ""
			if displayed != "" {
				rendered = style.Render(displayed)
			}
			out = append(out, styledRune{
				s:         rendered,
				width:     runewidth.StringWidth(displayed),
				isSpace:   tok.Kind == lyric.Space,
				isNewline: tok.Kind == lyric.Newline,
			})
			pos++
		}
	}
	return out
}

// wordForCursor returns the index of the word token being typed: the one
// under the cursor or the first one after it. It returns -1 when none.
func wordForCursor(tokens []lyric.Token, cursorIndex int) int {
	if cursorIndex < 0 {
		return -1
	}
	start := 0
	for i, tok := range tokens {
		end := start + tok.Len()
		if tok.Kind == lyric.Word && cursorIndex < end {
			return i
		}
		start = end
	}
	return -1
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at lyric newlines and at the last space that
// keeps a line within width.
func wrapStyledRunes(runes []styledRune, width int) string {
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if item.isNewline {
			line = append(line, item)
			out.WriteString(renderStyledRunes(line))
			out.WriteRune('\n')
			line = line[:0]
			lineWidth = 0
			lastSpaceIdx = -1
			i++
			continue
		}
		if width > 0 && lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}

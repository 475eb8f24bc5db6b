package lyric

// Position locates the cursor inside the token slice. CharIndex counts the
// characters already consumed in the token at TokenIndex.
type Position struct {
	TokenIndex int
	CharIndex  int
	End        bool
}

// Locate maps an input length onto a token position. Lengths outside
// [0, Count(tokens)] are clamped.
func Locate(tokens []Token, inputLength int) Position {
	if len(tokens) == 0 {
		return Position{End: true}
	}
	if inputLength < 0 {
		inputLength = 0
	}
	consumed := 0
	for i, tok := range tokens {
		if inputLength < consumed+tok.Len() {
			return Position{TokenIndex: i, CharIndex: inputLength - consumed}
		}
		consumed += tok.Len()
	}
	last := len(tokens) - 1
	return Position{TokenIndex: last, CharIndex: tokens[last].Len(), End: true}
}

package stats

// ErrorPenaltyWPM is subtracted from raw WPM for every incorrect character.
const ErrorPenaltyWPM = 3.0

// Metrics is the scored outcome of a typing test.
type Metrics struct {
	RawWPM   float64
	WPM      float64
	Accuracy float64
}

// Score computes penalized WPM and accuracy (0-100). Zero typed characters
// or a non-positive active duration score as all zeros.
func Score(typed, incorrect int, activeMs int64) Metrics {
	if typed <= 0 || activeMs <= 0 {
		return Metrics{}
	}
	minutes := float64(activeMs) / 60000.0
	raw := (float64(typed) / 5.0) / minutes
	wpm := raw - float64(incorrect)*ErrorPenaltyWPM
	if wpm < 0 {
		wpm = 0
	}
	acc := float64(typed-incorrect) / float64(typed) * 100
	if acc < 0 {
		acc = 0
	}
	if acc > 100 {
		acc = 100
	}
	return Metrics{RawWPM: raw, WPM: wpm, Accuracy: acc}
}

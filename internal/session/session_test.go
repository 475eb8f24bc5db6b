package session

import (
	"math"
	"testing"
	"time"

	"github.com/verte-zerg/lyrictype/internal/lyric"
	"github.com/verte-zerg/lyrictype/internal/normalize"
	"github.com/verte-zerg/lyrictype/internal/timing"
)

var fullOpts = normalize.Options{Capitalization: true, Punctuation: true}

func newTestSession(t *testing.T, lyrics string, opts normalize.Options) (*Session, *timing.Fake) {
	t.Helper()
	clock := timing.NewFake(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	return New(lyrics, opts, clock), clock
}

func typeSteps(t *testing.T, s *Session, clock *timing.Fake, step time.Duration, values ...string) Outcome {
	t.Helper()
	var out Outcome
	for i, v := range values {
		if i > 0 {
			clock.Advance(step)
		}
		out = s.HandleKeystroke(v)
		if out == Rejected {
			t.Fatalf("keystroke %q unexpectedly rejected", v)
		}
	}
	return out
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestCleanRunScoresWPM(t *testing.T) {
	s, clock := newTestSession(t, "I am", fullOpts)
	s.HandleKeystroke("I")
	clock.Advance(time.Second)
	s.HandleKeystroke("I ")
	clock.Advance(500 * time.Millisecond)
	s.HandleKeystroke("I a")
	clock.Advance(500 * time.Millisecond)
	if out := s.HandleKeystroke("I am"); out != Finished {
		t.Fatalf("expected Finished, got %v", out)
	}
	res, ok := s.Result()
	if !ok {
		t.Fatalf("expected completed result")
	}
	if res.CharactersTyped != 4 {
		t.Fatalf("expected 4 characters, got %d", res.CharactersTyped)
	}
	if !approx(res.WPM, 24) {
		t.Fatalf("expected 24 WPM, got %f", res.WPM)
	}
	if res.Accuracy != 100 {
		t.Fatalf("expected 100%% accuracy, got %f", res.Accuracy)
	}
}

func TestMistypedCharacterPenalty(t *testing.T) {
	s, clock := newTestSession(t, "cat", fullOpts)
	typeSteps(t, s, clock, 3*time.Second, "c", "cb", "cbt")
	res, ok := s.Result()
	if !ok {
		t.Fatalf("expected completed result")
	}
	if res.Incorrect != 1 {
		t.Fatalf("expected 1 incorrect, got %d", res.Incorrect)
	}
	if !approx(res.Accuracy, 200.0/3.0) {
		t.Fatalf("expected 66.67%% accuracy, got %f", res.Accuracy)
	}
	if !approx(res.RawWPM, 6) || !approx(res.WPM, 3) {
		t.Fatalf("expected raw 6 / final 3 WPM, got %f / %f", res.RawWPM, res.WPM)
	}
	tokens := s.Tokens()
	if tokens[0].Chars[1].State != lyric.Incorrect || tokens[0].Chars[0].State != lyric.Correct {
		t.Fatalf("unexpected character states: %+v", tokens[0].Chars)
	}
}

func TestSpaceMidWordRejected(t *testing.T) {
	s, _ := newTestSession(t, "cat", fullOpts)
	s.HandleKeystroke("c")
	if out := s.HandleKeystroke("c "); out != Rejected {
		t.Fatalf("expected Rejected, got %v", out)
	}
	if s.Input() != "c" {
		t.Fatalf("expected input unchanged, got %q", s.Input())
	}
}

func TestLetterAtBoundaryRejected(t *testing.T) {
	s, _ := newTestSession(t, "a b", fullOpts)
	s.HandleKeystroke("a")
	if out := s.HandleKeystroke("ax"); out != Rejected {
		t.Fatalf("expected Rejected, got %v", out)
	}
	if out := s.HandleKeystroke("a "); out != Accepted {
		t.Fatalf("expected Accepted, got %v", out)
	}
}

func TestNewlineTypedAsSpace(t *testing.T) {
	s, _ := newTestSession(t, "a\nb", fullOpts)
	s.HandleKeystroke("a")
	if out := s.HandleKeystroke("a "); out != Accepted {
		t.Fatalf("expected space to satisfy newline, got %v", out)
	}
	if out := s.HandleKeystroke("a b"); out != Finished {
		t.Fatalf("expected Finished, got %v", out)
	}
	res, _ := s.Result()
	if res.Incorrect != 0 {
		t.Fatalf("expected no errors, got %d", res.Incorrect)
	}
}

func TestEscapeEndsTest(t *testing.T) {
	s, clock := newTestSession(t, "hello world", fullOpts)
	typeSteps(t, s, clock, time.Second, "h", "he", "hel")
	clock.Advance(time.Second)
	if out := s.HandleKeystroke("hel~"); out != Escaped {
		t.Fatalf("expected Escaped, got %v", out)
	}
	if s.State() != Completed {
		t.Fatalf("expected Completed, got %v", s.State())
	}
	if s.Input() != "hel" {
		t.Fatalf("expected escape keystroke discarded, got %q", s.Input())
	}
	res, _ := s.Result()
	if !res.Escaped || res.CharactersTyped != 3 || res.Active != 3*time.Second {
		t.Fatalf("unexpected result %+v", res)
	}
	if !approx(res.WPM, 12) {
		t.Fatalf("expected 12 WPM, got %f", res.WPM)
	}
	if out := s.HandleKeystroke("hell"); out != Ignored {
		t.Fatalf("expected keystrokes after completion to be ignored, got %v", out)
	}
}

func TestTildeInLyricsIsTypeable(t *testing.T) {
	s, _ := newTestSession(t, "la~", fullOpts)
	s.HandleKeystroke("la")
	if out := s.HandleKeystroke("la~"); out != Finished {
		t.Fatalf("expected Finished, got %v", out)
	}
}

func TestEscapeWithoutInputScoresZero(t *testing.T) {
	s, _ := newTestSession(t, "abc", fullOpts)
	if out := s.HandleKeystroke("~"); out != Escaped {
		t.Fatalf("expected Escaped, got %v", out)
	}
	res, ok := s.Result()
	if !ok {
		t.Fatalf("expected completed result")
	}
	if res.WPM != 0 || res.Accuracy != 0 {
		t.Fatalf("expected zero score, got %+v", res)
	}
	if math.IsNaN(res.WPM) || math.IsNaN(res.Accuracy) {
		t.Fatalf("expected finite score, got %+v", res)
	}
}

func TestToggleResetsSession(t *testing.T) {
	s, _ := newTestSession(t, "Hello World", fullOpts)
	s.HandleKeystroke("He")
	if s.State() != Running {
		t.Fatalf("expected Running, got %v", s.State())
	}
	oldID := s.ID()
	if !s.SetOptions(normalize.Options{Capitalization: false, Punctuation: true}) {
		t.Fatalf("expected reset on toggle change")
	}
	if s.Input() != "" || s.State() != NotStarted {
		t.Fatalf("expected cleared session, got input %q state %v", s.Input(), s.State())
	}
	if got := lyric.Text(s.Tokens()); got != "hello world" {
		t.Fatalf("expected lowercase tokens, got %q", got)
	}
	if s.ID() == oldID {
		t.Fatalf("expected a new attempt id")
	}
	if s.SetOptions(normalize.Options{Capitalization: false, Punctuation: true}) {
		t.Fatalf("expected no reset when options are unchanged")
	}
}

func TestPauseTimeExcluded(t *testing.T) {
	s, clock := newTestSession(t, "abcd", fullOpts)
	s.HandleKeystroke("a")
	clock.Advance(time.Second)
	s.HandleKeystroke("ab")
	s.SetPaused(true)
	if s.State() != Paused {
		t.Fatalf("expected Paused, got %v", s.State())
	}
	clock.Advance(10 * time.Second)
	s.SetPaused(false)
	clock.Advance(time.Second)
	s.HandleKeystroke("abc")
	clock.Advance(time.Second)
	s.HandleKeystroke("abcd")
	res, _ := s.Result()
	if res.Active != 3*time.Second {
		t.Fatalf("expected 3s active, got %v", res.Active)
	}
	if !approx(res.WPM, 16) {
		t.Fatalf("expected 16 WPM, got %f", res.WPM)
	}
}

func TestKeystrokeWhilePausedResumes(t *testing.T) {
	s, clock := newTestSession(t, "abc", fullOpts)
	s.HandleKeystroke("a")
	s.SetPaused(true)
	clock.Advance(5 * time.Second)
	if out := s.HandleKeystroke("ab"); out != Accepted {
		t.Fatalf("expected Accepted, got %v", out)
	}
	if s.State() != Running {
		t.Fatalf("expected Running, got %v", s.State())
	}
	clock.Advance(time.Second)
	s.HandleKeystroke("abc")
	res, _ := s.Result()
	if res.Active != time.Second {
		t.Fatalf("expected pause excluded, got %v", res.Active)
	}
}

func TestPauseIgnoredBeforeStart(t *testing.T) {
	s, _ := newTestSession(t, "abc", fullOpts)
	s.SetPaused(true)
	if s.State() != NotStarted {
		t.Fatalf("expected NotStarted, got %v", s.State())
	}
}

func TestLiveWPM(t *testing.T) {
	s, clock := newTestSession(t, "abcdefghij", fullOpts)
	if wpm := s.LiveWPM(); wpm != 0 {
		t.Fatalf("expected 0 before start, got %f", wpm)
	}
	s.HandleKeystroke("abcde")
	if wpm := s.LiveWPM(); wpm != 0 {
		t.Fatalf("expected 0 with no elapsed time, got %f", wpm)
	}
	clock.Advance(30 * time.Second)
	if wpm := s.LiveWPM(); !approx(wpm, 2) {
		t.Fatalf("expected 2 WPM, got %f", wpm)
	}
	s.SetPaused(true)
	clock.Advance(30 * time.Second)
	if wpm := s.LiveWPM(); !approx(wpm, 2) {
		t.Fatalf("expected paused time excluded, got %f", wpm)
	}
}

func TestLiveWPMAppliesPenalty(t *testing.T) {
	s, clock := newTestSession(t, "abcdefghij", fullOpts)
	s.HandleKeystroke("abcdx")
	clock.Advance(30 * time.Second)
	if wpm := s.LiveWPM(); wpm != 0 {
		t.Fatalf("expected penalized live WPM of 0, got %f", wpm)
	}
}

func TestDeletionAccepted(t *testing.T) {
	s, _ := newTestSession(t, "abc", fullOpts)
	s.HandleKeystroke("ax")
	if out := s.HandleKeystroke("a"); out != Accepted {
		t.Fatalf("expected Accepted, got %v", out)
	}
	tokens := s.Tokens()
	if tokens[0].Chars[1].State != lyric.Unset {
		t.Fatalf("expected deleted position to be unset")
	}
	if pos := s.Position(); pos.TokenIndex != 0 || pos.CharIndex != 1 {
		t.Fatalf("unexpected cursor %+v", pos)
	}
}

func TestComparisonFolding(t *testing.T) {
	s, _ := newTestSession(t, "Café don’t", fullOpts)
	if out := s.HandleKeystroke("Cafe don't"); out != Finished {
		t.Fatalf("expected Finished, got %v", out)
	}
	res, _ := s.Result()
	if res.Incorrect != 0 {
		t.Fatalf("expected folded input to match, got %d incorrect", res.Incorrect)
	}
}

func TestInputBeyondLyricsRejected(t *testing.T) {
	s, _ := newTestSession(t, "ab", fullOpts)
	if out := s.HandleKeystroke("abc"); out != Rejected {
		t.Fatalf("expected Rejected, got %v", out)
	}
}

func TestRestart(t *testing.T) {
	s, _ := newTestSession(t, "ab", fullOpts)
	s.HandleKeystroke("ab")
	if s.State() != Completed {
		t.Fatalf("expected Completed, got %v", s.State())
	}
	s.Restart()
	if s.State() != NotStarted || s.Input() != "" {
		t.Fatalf("expected fresh session after restart")
	}
	if n := lyric.CountState(s.Tokens(), lyric.Unset); n != 2 {
		t.Fatalf("expected all characters unset, got %d", n)
	}
}

func TestDispatch(t *testing.T) {
	s, _ := newTestSession(t, "ab", fullOpts)
	if out := s.Dispatch(Keystroke{Value: "a"}); out != Accepted {
		t.Fatalf("expected Accepted, got %v", out)
	}
	if out := s.Dispatch(Pause{Paused: true}); out != Accepted || s.State() != Paused {
		t.Fatalf("expected pause to apply, got %v %v", out, s.State())
	}
	if out := s.Dispatch(Pause{Paused: true}); out != Ignored {
		t.Fatalf("expected repeated pause to be ignored, got %v", out)
	}
	if out := s.Dispatch(Restart{}); out != Accepted || s.Input() != "" {
		t.Fatalf("expected restart, got %v", out)
	}
}

func TestUnicodeSpacesTypedWithSpaceBar(t *testing.T) {
	for _, lyrics := range []string{"a\u00a0b", "a\tb", "a\u2005b"} {
		for _, opts := range []normalize.Options{fullOpts, {Capitalization: true}} {
			s, clock := newTestSession(t, lyrics, opts)
			if s.Display() != "a b" {
				t.Fatalf("display for %q = %q, want %q", lyrics, s.Display(), "a b")
			}
			if out := typeSteps(t, s, clock, time.Second, "a", "a ", "a b"); out != Finished {
				t.Fatalf("expected %q to finish with %+v, got %v", lyrics, opts, out)
			}
		}
	}
}

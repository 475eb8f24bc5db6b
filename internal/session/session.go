// Package session implements the typing test state machine and scoring.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/lyrictype/internal/lyric"
	"github.com/verte-zerg/lyrictype/internal/normalize"
	"github.com/verte-zerg/lyrictype/internal/stats"
	"github.com/verte-zerg/lyrictype/internal/timing"
)

// State is the lifecycle of a test.
type State int

const (
	NotStarted State = iota
	Running
	Paused
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Outcome reports what a keystroke did.
type Outcome int

const (
	// Accepted means the input was stored.
	Accepted Outcome = iota
	// Rejected means the input broke a word-boundary rule and was reverted.
	Rejected
	// Ignored means nothing changed.
	Ignored
	// Escaped means the escape key ended the test early.
	Escaped
	// Finished means the last character was typed.
	Finished
)

// EscapeRune ends a test immediately when typed where the lyric does not
// expect it.
const EscapeRune = '~'

// Result is the scored outcome of a completed test.
type Result struct {
	StartedAt       time.Time
	EndedAt         time.Time
	Active          time.Duration
	CharactersTyped int
	Incorrect       int
	Escaped         bool
	stats.Metrics
}

// Session is a single typing test over one song's lyrics.
type Session struct {
	id    string
	clock timing.Clock
	opts  normalize.Options
	raw   string

	display []rune
	compare []rune
	tokens  []lyric.Token
	input   []rune

	state      State
	startedAt  time.Time
	endedAt    time.Time
	pauseAccum time.Duration
	pausedAt   time.Time
	result     Result
}

// New creates a session for raw lyrics.
func New(lyrics string, opts normalize.Options, clock timing.Clock) *Session {
	if clock == nil {
		clock = timing.System()
	}
	s := &Session{clock: clock, opts: opts, raw: lyrics}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.id = uuid.NewString()
	s.display = []rune(normalize.ForDisplay(s.raw, s.opts))
	s.compare = make([]rune, len(s.display))
	for i, r := range s.display {
		s.compare[i] = normalize.FoldRune(r)
	}
	s.tokens = lyric.Tokenize(string(s.display))
	s.input = nil
	s.state = NotStarted
	s.startedAt = time.Time{}
	s.endedAt = time.Time{}
	s.pauseAccum = 0
	s.pausedAt = time.Time{}
	s.result = Result{}
}

// HandleKeystroke processes the full candidate value of the input.
func (s *Session) HandleKeystroke(value string) Outcome {
	if s.state == Completed {
		return Ignored
	}
	candidate := []rune(normalize.Compose(value))
	prefix := commonPrefix(s.input, candidate)
	typed := candidate[prefix:]
	if len(typed) == 0 && len(candidate) == len(s.input) {
		return Ignored
	}

	for k, r := range typed {
		pos := prefix + k
		if r == EscapeRune && (pos >= len(s.compare) || s.compare[pos] != EscapeRune) {
			s.finish(true)
			return Escaped
		}
	}
	for k, r := range typed {
		pos := prefix + k
		if pos >= len(s.compare) {
			return Rejected
		}
		typedSpace := normalize.FoldRune(r) == ' '
		if normalize.IsSeparator(s.compare[pos]) != typedSpace {
			return Rejected
		}
	}

	now := s.clock.Now()
	if s.state == Paused {
		s.resume(now)
	}
	s.input = candidate
	if s.state == NotStarted && len(s.input) > 0 {
		s.state = Running
		s.startedAt = now
	}
	s.recompute()
	if len(s.input) == len(s.display) && len(s.display) > 0 {
		s.finish(false)
		return Finished
	}
	return Accepted
}

// SetPaused pauses a running test or resumes a paused one.
func (s *Session) SetPaused(paused bool) {
	now := s.clock.Now()
	if paused {
		if s.state == Running {
			s.state = Paused
			s.pausedAt = now
		}
		return
	}
	if s.state == Paused {
		s.resume(now)
	}
}

func (s *Session) resume(now time.Time) {
	if !s.pausedAt.IsZero() {
		s.pauseAccum += now.Sub(s.pausedAt)
		s.pausedAt = time.Time{}
	}
	s.state = Running
}

// SetOptions applies new display toggles. The session restarts with
// re-normalized lyrics whenever the toggles change; it reports whether
// that happened.
func (s *Session) SetOptions(opts normalize.Options) bool {
	if opts == s.opts {
		return false
	}
	s.opts = opts
	s.reset()
	return true
}

// Restart re-tokenizes the same lyrics and clears all progress.
func (s *Session) Restart() {
	s.reset()
}

func (s *Session) recompute() {
	lyric.Each(s.tokens, func(pos int, ch *lyric.Character) {
		switch {
		case pos >= len(s.input):
			ch.State = lyric.Unset
		case normalize.FoldRune(s.input[pos]) == s.compare[pos]:
			ch.State = lyric.Correct
		default:
			ch.State = lyric.Incorrect
		}
	})
}

func (s *Session) finish(escaped bool) {
	now := s.clock.Now()
	s.endedAt = now
	s.state = Completed
	active := s.activeAt(now)
	incorrect := lyric.CountState(s.tokens, lyric.Incorrect)
	s.result = Result{
		StartedAt:       s.startedAt,
		EndedAt:         now,
		Active:          active,
		CharactersTyped: len(s.input),
		Incorrect:       incorrect,
		Escaped:         escaped,
		Metrics:         stats.Score(len(s.input), incorrect, active.Milliseconds()),
	}
	s.pausedAt = time.Time{}
}

// activeAt returns time spent typing up to end, excluding pauses.
func (s *Session) activeAt(end time.Time) time.Duration {
	if s.startedAt.IsZero() {
		return 0
	}
	active := end.Sub(s.startedAt) - s.pauseAccum
	if !s.pausedAt.IsZero() {
		active -= end.Sub(s.pausedAt)
	}
	if active < 0 {
		return 0
	}
	return active
}

// LiveWPM scores the input so far against the active time elapsed.
func (s *Session) LiveWPM() float64 {
	switch s.state {
	case NotStarted:
		return 0
	case Completed:
		return s.result.WPM
	}
	active := s.activeAt(s.clock.Now())
	if active <= 0 {
		return 0
	}
	incorrect := lyric.CountState(s.tokens, lyric.Incorrect)
	return stats.Score(len(s.input), incorrect, active.Milliseconds()).WPM
}

// ID returns a unique id for the current attempt.
func (s *Session) ID() string {
	return s.id
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Options returns the display toggles in effect.
func (s *Session) Options() normalize.Options {
	return s.opts
}

// Input returns the accepted input.
func (s *Session) Input() string {
	return string(s.input)
}

// Display returns the normalized lyrics being typed.
func (s *Session) Display() string {
	return string(s.display)
}

// Tokens returns a copy of the tokens with their current states.
func (s *Session) Tokens() []lyric.Token {
	out := make([]lyric.Token, len(s.tokens))
	for i, tok := range s.tokens {
		chars := make([]lyric.Character, len(tok.Chars))
		copy(chars, tok.Chars)
		out[i] = lyric.Token{Kind: tok.Kind, Chars: chars}
	}
	return out
}

// Position returns the cursor position derived from the input length.
func (s *Session) Position() lyric.Position {
	return lyric.Locate(s.tokens, len(s.input))
}

// Progress returns the typed fraction of the lyrics in [0, 1].
func (s *Session) Progress() float64 {
	if len(s.display) == 0 {
		return 0
	}
	return float64(len(s.input)) / float64(len(s.display))
}

// Result returns the score, valid once the state is Completed.
func (s *Session) Result() (Result, bool) {
	return s.result, s.state == Completed
}

func commonPrefix(a, b []rune) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

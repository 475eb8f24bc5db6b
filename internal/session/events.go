package session

import "github.com/verte-zerg/lyrictype/internal/normalize"

// Event is an input to Dispatch.
type Event interface {
	isEvent()
}

// Keystroke carries the full candidate input value.
type Keystroke struct {
	Value string
}

// Pause toggles the paused state.
type Pause struct {
	Paused bool
}

// Toggle changes the display options.
type Toggle struct {
	Options normalize.Options
}

// Restart clears progress on the same lyrics.
type Restart struct{}

func (Keystroke) isEvent() {}
func (Pause) isEvent()     {}
func (Toggle) isEvent()    {}
func (Restart) isEvent()   {}

// Dispatch applies ev to the session. Non-keystroke events report Accepted
// when they changed state and Ignored otherwise.
func (s *Session) Dispatch(ev Event) Outcome {
	switch ev := ev.(type) {
	case Keystroke:
		return s.HandleKeystroke(ev.Value)
	case Pause:
		before := s.state
		s.SetPaused(ev.Paused)
		if s.state == before {
			return Ignored
		}
		return Accepted
	case Toggle:
		if s.SetOptions(ev.Options) {
			return Accepted
		}
		return Ignored
	case Restart:
		s.Restart()
		return Accepted
	default:
		return Ignored
	}
}

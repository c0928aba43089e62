package engine

// EventKind names a discrete thing that happened during play.
// Collaborators (rendering, audio, persistence) subscribe to these
// instead of being called into directly.
type EventKind string

const (
	PieceMoved   EventKind = "piece-moved"
	PieceRotated EventKind = "piece-rotated"
	PieceHeld    EventKind = "piece-held"
	SoftDropped  EventKind = "soft-dropped"
	HardDropped  EventKind = "hard-dropped"
	PieceLocked  EventKind = "piece-locked"
	LinesCleared EventKind = "lines-cleared"
	LevelUp      EventKind = "level-up"
	GameOver     EventKind = "game-over"
)

// Event is a single emitted game event. Lines is set for LinesCleared,
// Level for LevelUp and Score for GameOver.
type Event struct {
	Kind  EventKind
	Lines int
	Level int
	Score int
}

// EventHandler receives events synchronously, on the goroutine driving
// the session. Handlers must not call back into the session.
type EventHandler func(Event)

// Subscribe registers a handler for all subsequent events.
func (s *Session) Subscribe(h EventHandler) {
	s.subs = append(s.subs, h)
}

func (s *Session) emit(e Event) {
	for _, h := range s.subs {
		h(e)
	}
}

package engine

import "time"

// Action is an externally triggered input. Inputs are serialized with
// ticks on a single goroutine, so a tick's animation > gravity > lock
// sequence is atomic with respect to them.
type Action string

const (
	MoveLeft    Action = "left"      // Moves the piece one step to the left.
	MoveRight   Action = "right"     // Moves the piece one step to the right.
	MoveDown    Action = "down"      // Soft drop: one manual step down.
	DropDown    Action = "drop"      // Hard drop: straight to the bottom.
	RotateRight Action = "rotatecw"  // Rotates the piece clockwise.
	RotateLeft  Action = "rotateccw" // Rotates the piece counter-clockwise.
	SwapHold    Action = "hold"      // Swaps the piece with the hold slot.
	TogglePause Action = "pause"     // Pauses or resumes play.
)

// frameInterval is how often the session ticks, one rendered frame.
const frameInterval = time.Second / 60

type Ticker interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

func newWrappedTicker(d time.Duration) *wrappedTicker {
	return &wrappedTicker{ticker: time.NewTicker(d)}
}

func (t *wrappedTicker) C() <-chan time.Time   { return t.ticker.C }
func (t *wrappedTicker) Stop()                 { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) { t.ticker.Reset(d) }

// PieceView is the render-side copy of the active piece.
type PieceView struct {
	Kind         Kind
	Cells        [][]bool
	X, Y, GhostY int
}

// Snapshot is an immutable copy of everything a renderer needs.
type Snapshot struct {
	Stack     Grid
	Piece     *PieceView
	Next      Kind
	Hold      Kind
	CanHold   bool
	Clearing  []int
	Score     int
	HighScore int
	Lines     int
	Level     int
	State     State
}

// Game owns a Session on a dedicated goroutine and feeds it frame ticks
// and queued actions, one at a time. Renderers consume UpdateCh; the
// final score arrives on GameOverCh when the board tops out.
type Game struct {
	UpdateCh   chan *Snapshot
	GameOverCh chan int

	actionCh chan Action
	doneCh   chan bool
	quitCh   chan struct{}
	session  *Session
	ticker   Ticker
	last     time.Time
}

func NewGame() *Game {
	return NewConfigurableGame(newWrappedTicker(1 * time.Hour))
}

func NewConfigurableGame(ticker Ticker) *Game {
	return &Game{
		UpdateCh:   make(chan *Snapshot),
		GameOverCh: make(chan int),
		actionCh:   make(chan Action),
		doneCh:     make(chan bool, 1),
		session:    NewSession(),
		ticker:     ticker,
	}
}

// Subscribe registers an event handler on the underlying session. Call
// before Start; the handler runs on the game goroutine.
func (g *Game) Subscribe(h EventHandler) {
	g.session.Subscribe(h)
}

// Start begins a round and spawns the goroutine driving it. Blocks
// until the first snapshot is consumed.
func (g *Game) Start() {
	if g.session.State() == Over {
		g.session.Reset()
	}
	g.session.Start()
	g.quitCh = make(chan struct{})
	g.UpdateCh <- g.snapshot()
	go g.listen()
}

func (g *Game) Stop() {
	g.ticker.Stop()
	g.doneCh <- true
}

// Action queues an input for the game goroutine. Dropped silently once
// the round has ended.
func (g *Game) Action(a Action) {
	select {
	case g.actionCh <- a:
	case <-g.quitCh:
	}
}

func (g *Game) listen() {
	defer close(g.quitCh)
	g.ticker.Reset(frameInterval)
	g.last = time.Now()
	for {
		select {
		case now := <-g.ticker.C():
			g.session.Tick(now.Sub(g.last))
			g.last = now
		case a := <-g.actionCh:
			g.apply(a)
		case <-g.doneCh:
			return
		}
		// The consumer may be gone by the time a snapshot is ready, so
		// every outbound send must stay interruptible by Stop.
		select {
		case g.UpdateCh <- g.snapshot():
		case <-g.doneCh:
			return
		}
		if g.session.State() == Over {
			g.ticker.Stop()
			select {
			case g.GameOverCh <- g.session.Score():
			case <-g.doneCh:
			}
			return
		}
	}
}

func (g *Game) apply(a Action) {
	switch a {
	case MoveLeft:
		g.session.Move(-1)
	case MoveRight:
		g.session.Move(1)
	case MoveDown:
		g.session.SoftDrop()
	case DropDown:
		g.session.HardDrop()
	case RotateRight:
		g.session.Rotate(1)
	case RotateLeft:
		g.session.Rotate(-1)
	case SwapHold:
		g.session.Hold()
	case TogglePause:
		g.session.TogglePause()
	}
}

func (g *Game) snapshot() *Snapshot {
	var pv *PieceView
	if p := g.session.ActivePiece(); p != nil {
		pv = &PieceView{
			Kind:   p.Kind,
			Cells:  p.Cells,
			X:      p.X,
			Y:      p.Y,
			GhostY: p.GhostY,
		}
	}
	return &Snapshot{
		Stack:     g.session.Grid(),
		Piece:     pv,
		Next:      g.session.NextKind(),
		Hold:      g.session.HoldKind(),
		CanHold:   g.session.CanHold(),
		Clearing:  g.session.ClearingRows(),
		Score:     g.session.Score(),
		HighScore: g.session.HighScore(),
		Lines:     g.session.Lines(),
		Level:     g.session.Level(),
		State:     g.session.State(),
	}
}

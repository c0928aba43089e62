package engine

import "time"

// State is the top-level session state.
type State int

const (
	Menu State = iota
	Playing
	Paused
	Over
)

func (s State) String() string {
	switch s {
	case Menu:
		return "menu"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Over:
		return "gameover"
	}
	return "unknown"
}

// phase is the in-play sub-state. Keeping it as one tagged value instead
// of isLocking/isClearing booleans makes the impossible combinations
// (clearing while locking, locking without a piece) unrepresentable.
type phase int

const (
	phaseFalling phase = iota
	phaseLocking
	phaseClearing
)

const (
	// lockDelay is the grace period after a piece can no longer fall.
	lockDelay = 500 * time.Millisecond
	// maxLockResets caps how many successful moves or rotations may
	// postpone the lock, bounding infinite stalling.
	maxLockResets = 15
	// clearTicks is how many ticks the line-clear animation holds the
	// full rows on screen before they are actually removed.
	clearTicks = 20
)

// levelFrames maps level to gravity frames per row, NES style. The
// session's level counter starts at 1, so the level 0 entry is never
// looked up in practice. Levels above 19 are pinned at 2 frames.
var levelFrames = map[int]int{
	0: 48, 1: 48, 2: 43, 3: 38, 4: 33,
	5: 28, 6: 23, 7: 18, 8: 13, 9: 8,
	10: 6, 11: 5, 12: 5, 13: 5, 14: 4,
	15: 4, 16: 4, 17: 3, 18: 3, 19: 2,
}

func intervalFor(level int) time.Duration {
	if level > 19 {
		return 2 * time.Second / 60
	}
	frames, ok := levelFrames[level]
	if !ok {
		frames = 4
	}
	return time.Duration(frames) * time.Second / 60
}

// lineScores is the base award per simultaneous rows cleared, before
// the level multiplier.
var lineScores = map[int]int{1: 100, 2: 300, 3: 500, 4: 800}

func lineScore(rows int) int {
	if v, ok := lineScores[rows]; ok {
		return v
	}
	return 100
}

// Session is the rules engine: board, active piece, randomizer, hold
// slot, timers and score. It is single-threaded; every method runs to
// completion and nothing suspends mid-operation. Callers that want
// concurrency wrap it in a Game, which serializes ticks and inputs.
type Session struct {
	state State
	phase phase

	board   board
	piece   *Piece
	next    Kind
	hold    Kind
	canHold bool
	bag     *bag

	score     int
	highScore int
	lines     int
	level     int

	dropInterval time.Duration
	dropAcc      time.Duration
	lockAcc      time.Duration
	lockResets   int

	clearTick   int
	pendingRows []int

	subs []EventHandler
}

func NewSession() *Session {
	return &Session{state: Menu, level: 1}
}

// Start begins play from the menu: fresh bag, first lookahead, first
// spawn. A no-op in any other state; use Reset to leave GAMEOVER.
func (s *Session) Start() {
	if s.state != Menu {
		return
	}
	s.bag = newBag()
	s.level = 1
	s.dropInterval = intervalFor(s.level)
	s.next = s.bag.draw()
	s.state = Playing
	s.spawnNext()
}

// Reset discards all in-flight state unconditionally and returns to the
// menu. The running high score survives.
func (s *Session) Reset() {
	best := s.highScore
	subs := s.subs
	*s = Session{state: Menu, level: 1, highScore: best, subs: subs}
}

// TogglePause flips between PLAYING and PAUSED. Timers freeze: the
// accumulated partial-tick time is kept, not reset.
func (s *Session) TogglePause() {
	switch s.state {
	case Playing:
		s.state = Paused
	case Paused:
		s.state = Playing
	}
}

// Tick advances the session by the elapsed real time since the previous
// tick. The sequence is fixed: clear animation, then gravity, then lock
// delay. Anything but PLAYING ignores ticks entirely.
func (s *Session) Tick(elapsed time.Duration) {
	if s.state != Playing {
		return
	}
	if s.phase == phaseClearing {
		s.clearTick++
		if s.clearTick >= clearTicks {
			s.finishClear()
		}
		return
	}
	s.dropAcc += elapsed
	if s.dropAcc > s.dropInterval {
		s.gravityDrop()
		s.dropAcc = 0
	}
	if s.phase == phaseLocking {
		s.lockAcc += elapsed
		if s.lockAcc >= lockDelay {
			s.lock()
		}
	}
}

// Move shifts the piece one column. Reverts on collision and reports
// whether the shift happened.
func (s *Session) Move(dir int) bool {
	if !s.pieceInPlay() {
		return false
	}
	if s.board.collides(s.piece.Cells, s.piece.X+dir, s.piece.Y) {
		return false
	}
	s.piece.X += dir
	s.postponeLock()
	s.updateGhost()
	s.emit(Event{Kind: PieceMoved})
	return true
}

// Rotate turns the piece a quarter in the given direction (+1
// clockwise, -1 counter-clockwise), trying each wall-kick candidate in
// order. If every candidate collides the piece is left exactly as it
// was. The O piece is a full no-op: its rotations are indistinguishable,
// so they neither postpone the lock delay nor emit an event.
func (s *Session) Rotate(dir int) bool {
	if !s.pieceInPlay() || s.piece.Kind == O {
		return false
	}
	from := s.piece.Rotation
	to := (from + dir + 4) % 4
	rotated := rotatedCells(s.piece.Cells, dir)
	for _, off := range kicksFor(s.piece.Kind, from, to) {
		if s.board.collides(rotated, s.piece.X+off.DX, s.piece.Y+off.DY) {
			continue
		}
		s.piece.Cells = rotated
		s.piece.X += off.DX
		s.piece.Y += off.DY
		s.piece.Rotation = to
		s.postponeLock()
		s.updateGhost()
		s.emit(Event{Kind: PieceRotated})
		return true
	}
	return false
}

// SoftDrop is the manual one-row descent: +1 score on success, arms the
// lock delay on failure. It never locks by itself.
func (s *Session) SoftDrop() bool {
	if !s.pieceInPlay() {
		return false
	}
	if s.board.collides(s.piece.Cells, s.piece.X, s.piece.Y+1) {
		s.armLock()
		return false
	}
	s.piece.Y++
	s.score += 1
	s.dropAcc = 0
	s.unarmLock()
	s.emit(Event{Kind: SoftDropped})
	return true
}

// HardDrop sends the piece straight to its lowest legal row and locks
// it immediately, worth 2 points per row fallen.
func (s *Session) HardDrop() {
	if !s.pieceInPlay() {
		return
	}
	dist := s.dropDistance()
	s.piece.Y += dist
	s.score += 2 * dist
	s.emit(Event{Kind: HardDropped})
	s.lock()
}

// Hold stashes the active piece's kind. With an empty slot the
// lookahead piece spawns; otherwise the slotted kind swaps in at spawn
// position and rotation. One hold per piece lifetime; further calls are
// no-ops until the next spawn.
func (s *Session) Hold() {
	if !s.pieceInPlay() || !s.canHold {
		return
	}
	held := s.piece.Kind
	if s.hold == "" {
		s.hold = held
		s.spawnNext()
	} else {
		swapIn := s.hold
		s.hold = held
		s.spawn(swapIn)
	}
	s.canHold = false
	if s.state == Playing {
		s.emit(Event{Kind: PieceHeld})
	}
}

// Read-only queries. Grid and ActivePiece return copies that are safe
// to keep across ticks.

func (s *Session) State() State         { return s.state }
func (s *Session) Score() int           { return s.score }
func (s *Session) HighScore() int       { return s.highScore }
func (s *Session) Lines() int           { return s.lines }
func (s *Session) Level() int           { return s.level }
func (s *Session) NextKind() Kind       { return s.next }
func (s *Session) HoldKind() Kind       { return s.hold }
func (s *Session) CanHold() bool        { return s.canHold }
func (s *Session) Grid() Grid           { return s.board.cells }
func (s *Session) ActivePiece() *Piece  { return s.piece.copy() }
func (s *Session) DropInterval() time.Duration { return s.dropInterval }

// ClearingRows returns the rows frozen on screen while the clear
// animation runs, nil otherwise.
func (s *Session) ClearingRows() []int {
	if s.phase != phaseClearing {
		return nil
	}
	rows := make([]int, len(s.pendingRows))
	copy(rows, s.pendingRows)
	return rows
}

func (s *Session) pieceInPlay() bool {
	return s.state == Playing && s.phase != phaseClearing && s.piece != nil
}

// spawnNext consumes the lookahead and draws a fresh one.
func (s *Session) spawnNext() {
	k := s.next
	s.next = s.bag.draw()
	s.spawn(k)
}

// spawn places a new active piece and resets everything scoped to a
// piece's lifetime. A blocked spawn means the board topped out.
func (s *Session) spawn(k Kind) {
	s.piece = newPiece(k)
	s.phase = phaseFalling
	s.dropAcc = 0
	s.lockAcc = 0
	s.lockResets = 0
	s.canHold = true
	if s.board.collides(s.piece.Cells, s.piece.X, s.piece.Y) {
		s.gameOver()
		return
	}
	s.updateGhost()
}

func (s *Session) gameOver() {
	s.state = Over
	s.piece = nil
	if s.score > s.highScore {
		s.highScore = s.score
	}
	s.emit(Event{Kind: GameOver, Score: s.score})
}

func (s *Session) gravityDrop() {
	if s.piece == nil {
		return
	}
	if s.board.collides(s.piece.Cells, s.piece.X, s.piece.Y+1) {
		s.armLock()
		return
	}
	s.piece.Y++
	s.unarmLock()
}

func (s *Session) armLock() {
	if s.phase == phaseFalling {
		s.phase = phaseLocking
		s.lockAcc = 0
	}
}

// unarmLock returns a locking piece to free fall, e.g. after it slid
// off a ledge. The reset counter is piece-scoped and stays.
func (s *Session) unarmLock() {
	if s.phase == phaseLocking {
		s.phase = phaseFalling
		s.lockAcc = 0
	}
}

// postponeLock zeroes the lock timer for a successful move or rotation,
// but only until the piece has spent its reset budget.
func (s *Session) postponeLock() {
	if s.phase == phaseLocking && s.lockResets < maxLockResets {
		s.lockAcc = 0
		s.lockResets++
	}
}

// lock finalizes the piece: merge, sweep, and either start the clear
// animation or spawn the next piece right away.
func (s *Session) lock() {
	s.board.merge(s.piece.Cells, s.piece.X, s.piece.Y, s.piece.Kind)
	s.piece = nil
	s.emit(Event{Kind: PieceLocked})
	if rows := s.board.fullRows(); len(rows) > 0 {
		s.phase = phaseClearing
		s.clearTick = 0
		s.pendingRows = rows
		return
	}
	s.spawnNext()
}

// finishClear performs the removal the animation deferred, then scores
// and advances the level.
func (s *Session) finishClear() {
	n := len(s.pendingRows)
	s.board.clearRows(s.pendingRows)
	s.pendingRows = nil
	s.lines += n
	s.score += lineScore(n) * s.level
	s.emit(Event{Kind: LinesCleared, Lines: n})
	if lv := s.lines/10 + 1; lv > s.level {
		s.level = lv
		s.dropInterval = intervalFor(s.level)
		s.emit(Event{Kind: LevelUp, Level: s.level})
	}
	s.spawnNext()
}

// dropDistance is how many rows the piece can still fall.
func (s *Session) dropDistance() int {
	d := 0
	for !s.board.collides(s.piece.Cells, s.piece.X, s.piece.Y+d+1) {
		d++
	}
	return d
}

func (s *Session) updateGhost() {
	s.piece.GhostY = s.piece.Y + s.dropDistance()
}

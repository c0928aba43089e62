package engine

import (
	"reflect"
	"testing"
	"time"
)

func TestNewSessionStartsInMenu(t *testing.T) {
	s := NewSession()
	if s.State() != Menu {
		t.Errorf("wanted state %v, got %v", Menu, s.State())
	}
	if !reflect.DeepEqual(s.Grid(), Grid{}) {
		t.Error("wanted an empty grid")
	}
	s.Tick(time.Second)
	if s.ActivePiece() != nil {
		t.Error("ticking in the menu must not spawn anything")
	}
}

func TestStartSpawnsPieceAndLookahead(t *testing.T) {
	s := NewSession()
	s.Start()
	if s.State() != Playing {
		t.Fatalf("wanted state %v, got %v", Playing, s.State())
	}
	if s.ActivePiece() == nil || s.NextKind() == "" {
		t.Error("wanted an active piece and a lookahead kind after start")
	}
	if s.Level() != 1 || s.DropInterval() != intervalFor(1) {
		t.Errorf("wanted level 1 at %v per row, got level %d at %v", intervalFor(1), s.Level(), s.DropInterval())
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		name        string
		dir         int
		updateStack func(s *Session)
		wantMoved   bool
		wantX       int
	}{
		{
			name:      "left unblocked",
			dir:       -1,
			wantMoved: true,
			wantX:     3,
		},
		{
			name: "left blocked",
			dir:  -1,
			updateStack: func(s *Session) {
				s.board.cells[1][3] = J
			},
			wantX: 4,
		},
		{
			name:      "right unblocked",
			dir:       1,
			wantMoved: true,
			wantX:     5,
		},
		{
			name: "right blocked",
			dir:  1,
			updateStack: func(s *Session) {
				s.board.cells[1][7] = J
			},
			wantX: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewTestSession(J)
			if tt.updateStack != nil {
				tt.updateStack(s)
			}
			if got := s.Move(tt.dir); got != tt.wantMoved {
				t.Errorf("Move(%d) = %v, want %v", tt.dir, got, tt.wantMoved)
			}
			if s.piece.X != tt.wantX {
				t.Errorf("wanted X %d, got %d", tt.wantX, s.piece.X)
			}
		})
	}
}

func TestRotateOIsANoOp(t *testing.T) {
	s := NewTestSession(O)
	var events []EventKind
	s.Subscribe(func(e Event) { events = append(events, e.Kind) })
	before := s.ActivePiece()

	if s.Rotate(1) {
		t.Error("wanted rotating the O piece to report false")
	}
	if len(events) != 0 {
		t.Errorf("wanted no events, got %v", events)
	}
	if got := s.ActivePiece(); !reflect.DeepEqual(got, before) {
		t.Errorf("wanted the piece untouched, got %+v", got)
	}

	s.phase = phaseLocking
	s.lockAcc = 300 * time.Millisecond
	s.Rotate(-1)
	if s.lockAcc != 300*time.Millisecond {
		t.Error("wanted the lock timer untouched by an O rotation")
	}
}

func TestSoftDrop(t *testing.T) {
	t.Run("successful step scores one point", func(t *testing.T) {
		s := NewTestSession(J)
		if !s.SoftDrop() {
			t.Fatal("wanted the step to succeed")
		}
		if s.piece.Y != 1 {
			t.Errorf("wanted Y 1, got %d", s.piece.Y)
		}
		if s.Score() != 1 {
			t.Errorf("wanted score 1, got %d", s.Score())
		}
		if s.phase != phaseFalling {
			t.Error("a successful step must not arm the lock delay")
		}
	})

	t.Run("blocked step arms the lock delay without locking", func(t *testing.T) {
		s := NewTestSession(J)
		s.piece.Y = 18
		if s.SoftDrop() {
			t.Fatal("wanted the step to fail")
		}
		if s.phase != phaseLocking {
			t.Error("wanted the lock delay armed")
		}
		if s.piece == nil {
			t.Error("a blocked soft drop must not lock the piece")
		}
		if s.Score() != 0 {
			t.Errorf("wanted score 0, got %d", s.Score())
		}
	})
}

func TestHardDrop(t *testing.T) {
	s := NewTestSession(J)
	s.HardDrop()

	// spawned at y=0, the J rests with its bottom row on row 19, an
	// 18 row fall worth 36 points.
	if s.Score() != 36 {
		t.Errorf("wanted score 36, got %d", s.Score())
	}
	grid := s.Grid()
	for _, cell := range [][2]int{{18, 4}, {19, 4}, {19, 5}, {19, 6}} {
		if grid[cell[0]][cell[1]] != J {
			t.Errorf("wanted a J cell at %v", cell)
		}
	}
	if s.piece == nil {
		t.Fatal("wanted the next piece spawned immediately")
	}
	if s.piece.Y != 0 || s.piece.Rotation != 0 {
		t.Error("wanted the next piece at spawn position")
	}
}

func TestGravity(t *testing.T) {
	t.Run("drop counter triggers a one row fall", func(t *testing.T) {
		s := NewTestSession(J)
		s.Tick(intervalFor(1) + time.Millisecond)
		if s.piece.Y != 1 {
			t.Errorf("wanted Y 1, got %d", s.piece.Y)
		}
		// the counter resets: the next small tick does nothing
		s.Tick(time.Millisecond)
		if s.piece.Y != 1 {
			t.Errorf("wanted Y still 1, got %d", s.piece.Y)
		}
	})

	t.Run("blocked gravity arms the lock delay", func(t *testing.T) {
		s := NewTestSession(J)
		s.piece.Y = 18
		s.Tick(intervalFor(1) + time.Millisecond)
		if s.phase != phaseLocking {
			t.Error("wanted the lock delay armed")
		}
	})
}

func TestLockDelay(t *testing.T) {
	t.Run("piece locks when the timer expires", func(t *testing.T) {
		s := NewTestSession(J)
		s.piece.Y = 18
		s.SoftDrop() // arms
		s.Tick(lockDelay - time.Millisecond)
		if s.piece == nil {
			t.Fatal("locked before the delay expired")
		}
		s.Tick(time.Millisecond)
		if s.Grid()[19][4] != J {
			t.Error("wanted the piece merged into the grid")
		}
		if s.piece == nil || s.piece.Y != 0 {
			t.Error("wanted a fresh piece at spawn")
		}
	})

	t.Run("successful moves postpone the lock up to the cap", func(t *testing.T) {
		s := NewTestSession(J)
		s.piece.Y = 18
		s.SoftDrop() // arms
		dir := 1
		for range maxLockResets {
			s.Tick(400 * time.Millisecond)
			if !s.Move(dir) {
				t.Fatal("move in the open must succeed")
			}
			dir = -dir
			if s.lockAcc != 0 {
				t.Fatal("wanted the lock timer reset")
			}
		}

		// the 16th move still succeeds but no longer buys time
		s.Tick(400 * time.Millisecond)
		if !s.Move(dir) {
			t.Fatal("move in the open must succeed")
		}
		if s.lockAcc != 400*time.Millisecond {
			t.Errorf("wanted the lock timer untouched at 400ms, got %v", s.lockAcc)
		}
		s.Tick(100 * time.Millisecond)
		if s.Grid() == (Grid{}) {
			t.Error("wanted the piece locked at the original deadline")
		}
	})

	t.Run("sliding off a ledge resumes free fall", func(t *testing.T) {
		s := NewTestSession(J)
		// a single settled cell under the piece's left column
		s.board.cells[2][4] = T
		s.SoftDrop() // blocked by the ledge, arms
		if s.phase != phaseLocking {
			t.Fatal("wanted the lock delay armed")
		}
		if !s.Move(1) {
			t.Fatal("move in the open must succeed")
		}
		if !s.SoftDrop() {
			t.Error("wanted the piece falling again after clearing the ledge")
		}
		if s.phase != phaseFalling {
			t.Error("wanted the lock delay disarmed")
		}
	})
}

func TestLineClear(t *testing.T) {
	t.Run("single line scores 100 at level 1", func(t *testing.T) {
		s := NewTestSession(J)
		for c := range Cols {
			if c < 4 || c > 6 {
				s.board.cells[19][c] = T
			}
		}
		s.HardDrop() // lands at y=18, completing row 19
		if s.phase != phaseClearing {
			t.Fatal("wanted the clear animation running")
		}
		if got := s.ClearingRows(); !reflect.DeepEqual(got, []int{19}) {
			t.Fatalf("wanted row 19 clearing, got %v", got)
		}
		if s.ActivePiece() != nil {
			t.Error("no piece may spawn during the clear animation")
		}
		dropScore := s.Score()

		for range clearTicks {
			s.Tick(time.Millisecond)
		}
		if s.phase == phaseClearing {
			t.Fatal("wanted the animation finished")
		}
		if s.Lines() != 1 {
			t.Errorf("wanted 1 line, got %d", s.Lines())
		}
		if s.Level() != 1 {
			t.Errorf("wanted level 1, got %d", s.Level())
		}
		if got := s.Score() - dropScore; got != 100 {
			t.Errorf("wanted 100 points for the clear, got %d", got)
		}
		if s.Grid()[19][0] != "" {
			t.Error("wanted the cleared row removed")
		}
		if s.ActivePiece() == nil {
			t.Error("wanted the next piece spawned after the animation")
		}
	})

	t.Run("four simultaneous lines score 800 at level 1", func(t *testing.T) {
		s := NewTestSession(I)
		for r := 16; r < Rows; r++ {
			for c := 0; c < Cols-1; c++ {
				s.board.cells[r][c] = T
			}
		}
		if !s.Rotate(1) {
			t.Fatal("setup rotation failed")
		}
		for range 4 {
			s.Move(1)
		}
		s.HardDrop() // vertical I fills column 9, rows 16-19
		dropScore := s.Score()
		for range clearTicks {
			s.Tick(time.Millisecond)
		}
		if got := s.Score() - dropScore; got != 800 {
			t.Errorf("wanted 800 points for the tetris, got %d", got)
		}
		if s.Lines() != 4 {
			t.Errorf("wanted 4 lines, got %d", s.Lines())
		}
	})

	t.Run("tenth line raises the level and speeds up gravity", func(t *testing.T) {
		s := NewTestSession(J)
		s.lines = 9
		for c := range Cols {
			if c < 4 || c > 6 {
				s.board.cells[19][c] = T
			}
		}
		s.HardDrop()
		for range clearTicks {
			s.Tick(time.Millisecond)
		}
		if s.Level() != 2 {
			t.Errorf("wanted level 2, got %d", s.Level())
		}
		if want := 43 * time.Second / 60; s.DropInterval() != want {
			t.Errorf("wanted drop interval %v, got %v", want, s.DropInterval())
		}
	})
}

func TestHold(t *testing.T) {
	t.Run("empty slot stores the kind and spawns the lookahead", func(t *testing.T) {
		s := NewTestSession(J)
		s.Rotate(1)
		s.Move(1)
		s.SoftDrop()

		s.Hold()
		if s.HoldKind() != J {
			t.Errorf("wanted J held, got %v", s.HoldKind())
		}
		if s.piece.Y != 0 || s.piece.X != 4 || s.piece.Rotation != 0 {
			t.Error("wanted the lookahead spawned at default position and rotation")
		}
		if s.CanHold() {
			t.Error("wanted hold consumed for this piece")
		}
	})

	t.Run("second hold before the next lock is a no-op", func(t *testing.T) {
		s := NewTestSession(J)
		s.Hold()
		s.Move(1)
		s.Hold()
		if s.HoldKind() != J {
			t.Errorf("wanted the slot unchanged, got %v", s.HoldKind())
		}
		if s.piece.X != 5 {
			t.Error("wanted the active piece untouched")
		}
	})

	t.Run("occupied slot swaps kinds and resets the spawn state", func(t *testing.T) {
		s := NewTestSession(J)
		s.hold = L
		s.Rotate(1)
		s.Hold()
		if s.HoldKind() != J {
			t.Errorf("wanted J held, got %v", s.HoldKind())
		}
		if s.piece.Kind != L {
			t.Errorf("wanted an L active, got %v", s.piece.Kind)
		}
		if s.piece.Rotation != 0 || s.piece.Y != 0 {
			t.Error("wanted the swapped-in piece at default rotation and position")
		}
	})

	t.Run("hold becomes available again after the next spawn", func(t *testing.T) {
		s := NewTestSession(J)
		s.Hold()
		s.HardDrop()
		if !s.CanHold() {
			t.Error("wanted hold available for the new piece")
		}
	})
}

func TestTopOutEndsTheGame(t *testing.T) {
	s := NewTestSession(J)
	s.board.cells[2][4] = T // pins the piece in the spawn rows
	s.HardDrop()            // locks in place; the next spawn collides

	if s.State() != Over {
		t.Fatalf("wanted state %v, got %v", Over, s.State())
	}
	// every further operation is a silent no-op
	grid := s.Grid()
	s.Move(1)
	s.Rotate(1)
	s.SoftDrop()
	s.HardDrop()
	s.Hold()
	s.Tick(time.Second)
	if !reflect.DeepEqual(grid, s.Grid()) {
		t.Error("operations after game over must not change anything")
	}
}

func TestHighScoreSurvivesReset(t *testing.T) {
	s := NewTestSession(J)
	s.score = 1200
	s.gameOver()
	if s.HighScore() != 1200 {
		t.Errorf("wanted high score 1200, got %d", s.HighScore())
	}
	s.Reset()
	if s.State() != Menu {
		t.Errorf("wanted state %v, got %v", Menu, s.State())
	}
	if s.HighScore() != 1200 {
		t.Errorf("wanted high score kept across reset, got %d", s.HighScore())
	}
	s.score = 300
	s.gameOver()
	if s.HighScore() != 1200 {
		t.Errorf("high score must be monotonic, got %d", s.HighScore())
	}
}

func TestPauseFreezesTimers(t *testing.T) {
	s := NewTestSession(J)
	s.Tick(700 * time.Millisecond) // under the 800ms level 1 interval
	s.TogglePause()
	if s.State() != Paused {
		t.Fatalf("wanted state %v, got %v", Paused, s.State())
	}
	s.Tick(10 * time.Second)
	if s.piece.Y != 0 {
		t.Error("gravity must not run while paused")
	}
	if s.Move(1) {
		t.Error("moves must be no-ops while paused")
	}

	s.TogglePause()
	s.Tick(200 * time.Millisecond) // 700ms carried over, crosses 800ms
	if s.piece.Y != 1 {
		t.Error("wanted the partial drop counter preserved across pause")
	}
}

func TestIntervalFor(t *testing.T) {
	tests := []struct {
		level      int
		wantFrames int
	}{
		{1, 48},
		{2, 43},
		{9, 8},
		{19, 2},
		{20, 2},
		{35, 2},
	}
	for _, tt := range tests {
		want := time.Duration(tt.wantFrames) * time.Second / 60
		if got := intervalFor(tt.level); got != want {
			t.Errorf("intervalFor(%d) = %v, want %v", tt.level, got, want)
		}
	}
}

func TestLineScore(t *testing.T) {
	tests := []struct {
		rows, want int
	}{
		{1, 100},
		{2, 300},
		{3, 500},
		{4, 800},
		{5, 100}, // not in the table, falls back to the base value
	}
	for _, tt := range tests {
		if got := lineScore(tt.rows); got != tt.want {
			t.Errorf("lineScore(%d) = %d, want %d", tt.rows, got, tt.want)
		}
	}
}

func TestEvents(t *testing.T) {
	s := NewTestSession(J)
	var got []EventKind
	s.Subscribe(func(e Event) { got = append(got, e.Kind) })

	s.Move(1)
	s.Rotate(1)
	s.SoftDrop()
	s.Hold()
	s.HardDrop()

	want := []EventKind{PieceMoved, PieceRotated, SoftDropped, PieceHeld, HardDropped, PieceLocked}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("wanted events %v, got %v", want, got)
	}
}

func TestLinesClearedEventCarriesTheCount(t *testing.T) {
	s := NewTestSession(J)
	var cleared []int
	var over []int
	s.Subscribe(func(e Event) {
		switch e.Kind {
		case LinesCleared:
			cleared = append(cleared, e.Lines)
		case GameOver:
			over = append(over, e.Score)
		}
	})

	for c := range Cols {
		if c < 4 || c > 6 {
			s.board.cells[19][c] = T
		}
	}
	s.HardDrop()
	for range clearTicks {
		s.Tick(time.Millisecond)
	}
	if !reflect.DeepEqual(cleared, []int{1}) {
		t.Errorf("wanted one lines-cleared event with count 1, got %v", cleared)
	}

	s.score = 500
	s.gameOver()
	if !reflect.DeepEqual(over, []int{500}) {
		t.Errorf("wanted a game-over event with the final score, got %v", over)
	}
}

package engine

import (
	"sync"
	"time"
)

// MockTicker is a mock implementation of the ticker interface.
type MockTicker struct {
	ch          chan time.Time
	stop, reset bool
	mu          sync.Mutex
}

func NewMockTicker() *MockTicker          { return &MockTicker{ch: make(chan time.Time)} }
func (m *MockTicker) C() <-chan time.Time { return m.ch }
func (m *MockTicker) Tick()               { m.ch <- time.Now() }
func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}
func (m *MockTicker) Reset(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset = true
}
func (m *MockTicker) IsReset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset
}
func (m *MockTicker) IsStop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}

// NewTestGame wraps a prepared session in a Game driven by a manual
// ticker.
func NewTestGame(s *Session) (*Game, *MockTicker) {
	ticker := NewMockTicker()
	return &Game{
		UpdateCh:   make(chan *Snapshot),
		GameOverCh: make(chan int),
		actionCh:   make(chan Action),
		doneCh:     make(chan bool, 1),
		session:    s,
		ticker:     ticker,
	}, ticker
}

// NewTestSession returns a playing session whose active and lookahead
// pieces are both the given kind, so tests are deterministic.
func NewTestSession(k Kind) *Session {
	s := NewSession()
	s.state = Playing
	s.bag = newBag()
	s.dropInterval = intervalFor(s.level)
	s.next = k
	s.spawnNext()
	s.next = k
	return s
}

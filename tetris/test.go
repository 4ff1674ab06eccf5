package tetris

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockTicker is a mock implementation of the Ticker interface.
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

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	now time.Time
	mu  sync.Mutex
}

func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Unix(0, 0)}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward. Together with a MockTicker tick it
// feeds an exact elapsed time into the game loop.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewTestGame creates a game around a prepared state, with a manual
// ticker and clock.
func NewTestGame(t *Tetris) (*Game, *MockTicker, *ManualClock) {
	ticker := NewMockTicker()
	clock := NewManualClock()
	return &Game{
		updateCh: make(chan *Tetris),
		actionCh: make(chan Action),
		doneCh:   make(chan bool, 1),
		tetris:   t,
		ticker:   ticker,
		clock:    clock,
		logger:   slog.New(slog.DiscardHandler),
		cfg:      t.cfg,
		id:       uuid.New(),
		last:     clock.Now(),
	}, ticker, clock
}

// NewTestTetris creates a game state with the given shape falling and a
// deterministic upcoming queue of the same shape.
func NewTestTetris(shape Shape) *Tetris {
	t := newTetris(DefaultConfig())
	for range 7 {
		t.Next = append(t.Next, shape)
	}
	t.setTetromino("")
	t.spawnDue = false
	t.spawnTimer = 0
	t.Tetromino.GhostY = t.Tetromino.Y + t.dropDownDelta()
	return t
}

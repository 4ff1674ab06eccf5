package tetris

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	MoveLeft    Action = "left"      // Moves the Tetromino one step to the left.
	MoveRight   Action = "right"     // Moves the Tetromino one step to the right.
	MoveDown    Action = "down"      // Moves the Tetromino one step down, scored as a soft drop.
	DropDown    Action = "drop"      // Drops the Tetromino down the stack and locks it.
	RotateRight Action = "rotatecw"  // Rotates the Tetromino clockwise.
	RotateLeft  Action = "rotateccw" // Rotates the Tetromino counter-clockwise.
	Hold        Action = "hold"      // Swaps the Tetromino with the hold slot.

	// pause is internal, see TogglePause.
	pause Action = "pause"
)

// frameInterval paces the game loop. The wall time elapsed between
// frames feeds the fall, lock and spawn timers.
const frameInterval = 25 * time.Millisecond

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

// Clock abstracts the wall clock so tests control elapsed game time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Options configures a Game. Zero value fields fall back to defaults.
type Options struct {
	Config *Config
	Ticker Ticker
	Clock  Clock
	Logger *slog.Logger
}

// Game runs one Tetris on its own goroutine. Movements go in through
// Action, fresh state snapshots come out through GetUpdate.
type Game struct {
	updateCh chan *Tetris
	actionCh chan Action
	doneCh   chan bool
	tetris   *Tetris
	ticker   Ticker
	clock    Clock
	logger   *slog.Logger
	cfg      Config
	id       uuid.UUID
	last     time.Time
}

func NewGame() *Game {
	g, _ := NewConfigurableGame(&Options{}) // defaults never fail validation
	return g
}

func NewConfigurableGame(o *Options) (*Game, error) {
	cfg := DefaultConfig()
	if o.Config != nil {
		cfg = *o.Config
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	ticker := o.Ticker
	if ticker == nil {
		ticker = newWrappedTicker(frameInterval)
	}
	clock := o.Clock
	if clock == nil {
		clock = systemClock{}
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Game{
		updateCh: make(chan *Tetris),
		actionCh: make(chan Action),
		doneCh:   make(chan bool, 1),
		tetris:   newTetris(cfg),
		ticker:   ticker,
		clock:    clock,
		logger:   logger,
		cfg:      cfg,
	}, nil
}

// Start begins a new game and emits its first snapshot. Starting again
// after a game over plays a fresh game. The caller must already be
// consuming GetUpdate.
func (g *Game) Start() {
	g.tetris = newTetris(g.cfg)
	g.id = uuid.New()
	g.logger.Debug("game started", slog.String("session", g.id.String()))
	g.updateCh <- g.Read()
	g.last = g.clock.Now()
	go g.listen()
}

func (g *Game) Stop() {
	g.ticker.Stop()
	g.doneCh <- true
}

func (g *Game) Action(a Action) {
	g.actionCh <- a
}

// TogglePause suspends or resumes the game. While paused the timers
// hold still and movements are ignored.
func (g *Game) TogglePause() {
	g.actionCh <- pause
}

// GetUpdate returns the channel carrying a snapshot after every
// accepted movement and every frame that changed the state.
func (g *Game) GetUpdate() <-chan *Tetris {
	return g.updateCh
}

// Read returns a copy of the current Tetris state that is safe to read
// concurrently. The copy carries the ghost position and trims the
// upcoming queue to the preview size.
func (g *Game) Read() *Tetris {
	g.tetris.mu.RLock()
	defer g.tetris.mu.RUnlock()
	stack := make(Stack, len(g.tetris.Stack))
	for i := range g.tetris.Stack {
		stack[i] = make([]Shape, len(g.tetris.Stack[i]))
		copy(stack[i], g.tetris.Stack[i])
	}
	preview := min(g.cfg.PreviewCount, len(g.tetris.Next))
	next := make([]Shape, preview)
	copy(next, g.tetris.Next[:preview])
	tetromino := g.tetris.Tetromino.copy()
	if tetromino != nil {
		tetromino.GhostY = tetromino.Y + g.tetris.dropDownDelta()
	}
	return &Tetris{
		Stack:      stack,
		Tetromino:  tetromino,
		Next:       next,
		HoldShape:  g.tetris.HoldShape,
		Level:      g.tetris.Level,
		Score:      g.tetris.Score,
		LinesClear: g.tetris.LinesClear,
		Combo:      g.tetris.Combo,
		Spin:       g.tetris.Spin,
		Paused:     g.tetris.Paused,
		GameOver:   g.tetris.GameOver,
		Session:    g.id,
	}
}

func (g *Game) listen() {
	g.ticker.Reset(frameInterval)
	defer g.ticker.Stop()
	for {
		select {
		case <-g.ticker.C():
			if over := g.drainActions(); over {
				return
			}
			now := g.clock.Now()
			elapsed := now.Sub(g.last)
			g.last = now
			g.tetris.mu.Lock()
			changed := g.tetris.advanceTime(elapsed)
			over := g.tetris.GameOver
			score := g.tetris.Score
			g.tetris.mu.Unlock()
			if changed {
				g.updateCh <- g.Read()
			}
			if over {
				g.logger.Debug("game over",
					slog.String("session", g.id.String()), slog.Int("score", score))
				return
			}
		case a := <-g.actionCh:
			if over := g.apply(a); over {
				return
			}
		case <-g.doneCh:
			return
		}
	}
}

// drainActions applies queued movements before the time step so inputs
// always win a race against the same frame's tick.
func (g *Game) drainActions() bool {
	for {
		select {
		case a := <-g.actionCh:
			if over := g.apply(a); over {
				return true
			}
		default:
			return false
		}
	}
}

func (g *Game) apply(a Action) bool {
	g.tetris.mu.Lock()
	if a == pause {
		g.tetris.togglePause()
	} else {
		g.tetris.action(a)
	}
	over := g.tetris.GameOver
	score := g.tetris.Score
	g.tetris.mu.Unlock()
	g.updateCh <- g.Read()
	if over {
		g.logger.Debug("game over",
			slog.String("session", g.id.String()), slog.Int("score", score))
	}
	return over
}

// Package terminal draws the game in a raw terminal and turns key
// presses into game actions.
package terminal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/eiannone/keyboard"

	"blockfall/tetris"
)

type tetrisGame interface {
	Start()
	GetUpdate() <-chan *tetris.Tetris
	Action(tetris.Action)
	TogglePause()
}

type renderer interface {
	frame(*tetris.Tetris)
	lobby(lobbyMessage)
	reset()
}

type Terminal struct {
	tetris tetrisGame
	render renderer
	logger *slog.Logger
	kbCh   <-chan keyboard.KeyEvent
	lobby  atomic.Bool
}

type Options struct {
	Writer  io.Writer
	Logger  *slog.Logger
	NoGhost bool
}

func New(o *Options) (*Terminal, error) {
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	w := io.Writer(os.Stdout)
	if o.Writer != nil {
		w = o.Writer
	}
	l := o.Logger
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	return &Terminal{
		tetris: tetris.NewGame(),
		render: newRender(w, l, o.NoGhost),
		logger: l,
		kbCh:   kb,
	}, nil
}

// Start draws the lobby and blocks until the player quits.
func (t *Terminal) Start() {
	t.lobby.Store(true)
	t.render.frame(nil)
	t.render.lobby(defaultLobby())
	var wg sync.WaitGroup
	wg.Add(1)
	go t.listenKB(&wg)
	wg.Wait()
}

func (t *Terminal) listenKB(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		event, ok := <-t.kbCh
		if !ok {
			t.logger.Error("keyboard events channel closed unexpectedly")
			return
		}
		if event.Err != nil {
			t.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
			return
		}
		if event.Key == keyboard.KeyCtrlC {
			return
		}
		if t.lobby.Load() {
			switch event.Rune {
			case 'p':
				t.lobby.Store(false)
				t.render.reset()
				go t.listenTetris()
			case 'q':
				return
			}
			continue
		}
		switch {
		case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
			t.tetris.Action(tetris.MoveDown)
		case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
			t.tetris.Action(tetris.MoveLeft)
		case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
			t.tetris.Action(tetris.MoveRight)
		case event.Key == keyboard.KeyArrowUp || event.Rune == 'e':
			t.tetris.Action(tetris.RotateRight)
		case event.Rune == 'q':
			t.tetris.Action(tetris.RotateLeft)
		case event.Key == keyboard.KeySpace:
			t.tetris.Action(tetris.DropDown)
		case event.Rune == 'c':
			t.tetris.Action(tetris.Hold)
		case event.Key == keyboard.KeyEsc:
			t.tetris.TogglePause()
		}
	}
}

func (t *Terminal) listenTetris() {
	go t.tetris.Start()
	for u := range t.tetris.GetUpdate() {
		t.render.frame(u)
		if u.GameOver {
			t.lobby.Store(true)
			t.render.lobby(gameOver())
			return
		}
	}
}

package terminal

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/template"

	"blockfall/tetris"
)

const (
	// ASCII colors.
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"

	resetPos = "\033[H" // Reset cursor position to 0,0
)

//go:embed "layout.tmpl"
var layout string

var colorMap = map[tetris.Shape]string{
	tetris.I: Cyan,
	tetris.J: Blue,
	tetris.L: Orange,
	tetris.O: Yellow,
	tetris.S: Green,
	tetris.Z: Red,
	tetris.T: Magenta,
}

type templateData struct {
	Local   *tetris.Tetris
	NoGhost bool
}

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	*templateData
}

func newRender(w io.Writer, l *slog.Logger, noGhost bool) *render {
	return &render{
		writer:       w,
		logger:       l,
		template:     loadTemplate(),
		templateData: &templateData{NoGhost: noGhost},
	}
}

// frame draws a full game frame from a snapshot. A nil snapshot draws
// the empty playfield.
func (r *render) frame(t *tetris.Tetris) {
	r.templateData.Local = t
	fmt.Fprint(r.writer, resetPos)
	if err := r.template.Execute(r.writer, r.templateData); err != nil {
		r.logger.Error("unable to execute template", slog.String("error", err.Error()))
	}
	if t != nil && t.Paused {
		fmt.Fprint(r.writer, "\033[11;13H+--------------------+")
		fmt.Fprint(r.writer, "\033[12;13H|       Paused       |")
		fmt.Fprint(r.writer, "\033[13;13H+--------------------+")
	}
}

type lobbyMessage [5]string

func defaultLobby() lobbyMessage {
	return lobbyMessage{
		"+--------------------------------------+",
		"|         Welcome to Blockfall         |",
		"|                                      |",
		"|          (p)lay      (q)uit          |",
		"+--------------------------------------+",
	}
}

func gameOver() lobbyMessage {
	m := defaultLobby()
	m[1] = "|             Game Over :)             |"
	return m
}

// lobby draws a message box on top of the playfield. The next full
// frame paints over it.
func (r *render) lobby(m lobbyMessage) {
	for i, line := range m {
		fmt.Fprintf(r.writer, "\033[%d;4H%s", 10+i, line)
	}
}

func (r *render) reset() {
	fmt.Fprint(r.writer, "\033[2J\033[H")
}

func loadTemplate() *template.Template {
	funcMap := template.FuncMap{
		"stack":    stack,
		"leftCol":  leftCol,
		"rightCol": rightCol,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", "\r\n")
	l = strings.ReplaceAll(l, "Terminal Blockfall", "\033[1mTerminal Blockfall\033[0m")
	return template.Must(template.New("layout").Funcs(funcMap).Parse(l))
}

// stack renders the visible rows of the playfield, two characters per
// cell. The falling tetromino is already part of the stack, so only the
// ghost needs an extra pass, and it never covers an occupied cell.
func stack(t *templateData) [20][10]string {
	rendered := [20][10]string{}
	for y := range 20 {
		for x := range 10 {
			rendered[y][x] = "  "
		}
	}
	if t == nil || t.Local == nil || len(t.Local.Stack) < 20 {
		return rendered
	}

	hidden := len(t.Local.Stack) - 20
	for y := range 20 {
		for x := range 10 {
			c, ok := colorMap[t.Local.Stack[hidden+y][x]]
			if ok {
				rendered[y][x] = fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", c)
			}
		}
	}

	if t.Local.Tetromino != nil && !t.NoGhost {
		for iy, row := range t.Local.Tetromino.Grid {
			for ix, v := range row {
				if !v {
					continue
				}
				gy := t.Local.Tetromino.GhostY + iy - hidden
				if gy < 0 || gy >= 20 {
					continue
				}
				if gx := t.Local.Tetromino.X + ix; rendered[gy][gx] == "  " {
					rendered[gy][gx] = "[]"
				}
			}
		}
	}
	return rendered
}

// leftCol renders the hold box and the counters, padded to fourteen
// characters per line so the playfield border stays in place.
func leftCol(t *templateData) [20]string {
	var rendered [20]string
	for i := range rendered {
		rendered[i] = strings.Repeat(" ", 14)
	}
	rendered[0] = "   HOLD       "
	rendered[4] = "   SCORE      "
	rendered[7] = "   LEVEL      "
	rendered[10] = "   LINES      "
	if t == nil || t.Local == nil {
		return rendered
	}

	hold := miniGrid(t.Local.HoldShape)
	rendered[1] = "   " + hold[0] + "   "
	rendered[2] = "   " + hold[1] + "   "
	rendered[5] = fmt.Sprintf("   %-11d", t.Local.Score)
	rendered[8] = fmt.Sprintf("   %-11d", t.Local.Level)
	rendered[11] = fmt.Sprintf("   %-11d", t.Local.LinesClear)
	if t.Local.Combo > 1 {
		rendered[13] = fmt.Sprintf("   COMBO x%-4d", t.Local.Combo)
	}
	switch t.Local.Spin {
	case tetris.FullSpin:
		rendered[14] = "   T-SPIN     "
	case tetris.MiniSpin:
		rendered[14] = "   MINI T-SPIN"
	}
	return rendered
}

// rightCol renders the upcoming queue, padded to ten characters per
// line.
func rightCol(t *templateData) [20]string {
	var rendered [20]string
	for i := range rendered {
		rendered[i] = strings.Repeat(" ", 10)
	}
	rendered[0] = "  NEXT    "
	if t == nil || t.Local == nil {
		return rendered
	}

	for i, s := range t.Local.Next {
		if i >= 3 {
			break
		}
		piece := miniGrid(s)
		rendered[1+i*3] = "  " + piece[0]
		rendered[2+i*3] = "  " + piece[1]
	}
	return rendered
}

// miniGrid renders the top two rows of a shape's spawn grid, which hold
// every cell of every shape, four cells wide.
func miniGrid(s tetris.Shape) [2]string {
	rendered := [2]string{"        ", "        "}
	grid := tetris.ShapeGrid(s)
	if grid == nil {
		return rendered
	}
	for i := range 2 {
		row := []string{"  ", "  ", "  ", "  "}
		for iv, v := range grid[i] {
			if v {
				row[iv] = fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", colorMap[s])
			}
		}
		rendered[i] = strings.Join(row, "")
	}
	return rendered
}

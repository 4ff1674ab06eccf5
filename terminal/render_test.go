package terminal

import (
	"log/slog"
	"reflect"
	"strings"
	"testing"

	approvals "github.com/approvals/go-approval-tests"

	"blockfall/tetris"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		do   func(*render)
	}{
		{
			name: "frame with no data renders the empty playfield",
			do:   func(r *render) { r.frame(nil) },
		},
		{
			name: "frame with a game renders the stack",
			do:   func(r *render) { r.frame(tetris.NewTestTetris(tetris.T)) },
		},
		{
			name: "frame with the ghost disabled",
			do: func(r *render) {
				r.NoGhost = true
				r.frame(tetris.NewTestTetris(tetris.J))
			},
		},
		{
			name: "paused frame shows the banner",
			do: func(r *render) {
				tts := tetris.NewTestTetris(tetris.T)
				tts.Paused = true
				r.frame(tts)
			},
		},
		{
			name: "default lobby message",
			do:   func(r *render) { r.lobby(defaultLobby()) },
		},
		{
			name: "game over lobby message",
			do:   func(r *render) { r.lobby(gameOver()) },
		},
	}
	tmpl := loadTemplate()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := &strings.Builder{}
			r := &render{
				writer:       w,
				logger:       slog.Default(),
				template:     tmpl,
				templateData: &templateData{},
			}
			tt.do(r)
			approvals.VerifyString(t, w.String())
		})
	}
}

func TestStack(t *testing.T) {
	td := &templateData{
		Local: tetris.NewTestTetris(tetris.J),
	}
	want := [20][10]string{}
	for y := range want {
		for x := range want[y] {
			want[y][x] = "  "
		}
	}
	blueCell := "\x1b[7m\x1b[34m[]\x1b[0m"
	want[0][3] = blueCell
	want[1][3] = blueCell
	want[1][4] = blueCell
	want[1][5] = blueCell
	want[18][3] = "[]"
	want[19][3] = "[]"
	want[19][4] = "[]"
	want[19][5] = "[]"
	got := stack(td)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("want %v, got %v", want, got)
	}

	t.Run("stack with the ghost disabled", func(t *testing.T) {
		want := want
		want[18][3] = "  "
		want[19][3] = "  "
		want[19][4] = "  "
		want[19][5] = "  "
		got := stack(&templateData{Local: td.Local, NoGhost: true})
		if !reflect.DeepEqual(got, want) {
			t.Errorf("want %v, got %v", want, got)
		}
	})

	t.Run("stack with nil data returns empty spaces", func(t *testing.T) {
		want := [20][10]string{}
		for y := range 20 {
			for x := range 10 {
				want[y][x] = "  "
			}
		}
		got := stack(nil)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("want %v, got %v", want, got)
		}
	})
}

func TestLeftCol(t *testing.T) {
	blank := strings.Repeat(" ", 14)
	want := [20]string{}
	for i := range want {
		want[i] = blank
	}
	want[0] = "   HOLD       "
	want[4] = "   SCORE      "
	want[5] = "   0          "
	want[7] = "   LEVEL      "
	want[8] = "   1          "
	want[10] = "   LINES      "
	want[11] = "   0          "
	got := leftCol(&templateData{Local: tetris.NewTestTetris(tetris.J)})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("want %v, got %v", want, got)
	}

	t.Run("counters, hold, combo and spin", func(t *testing.T) {
		magentaCell := "\x1b[7m\x1b[35m[]\x1b[0m"
		want := want
		want[1] = "     " + magentaCell + "       "
		want[2] = "   " + magentaCell + magentaCell + magentaCell + "     "
		want[5] = "   12345      "
		want[8] = "   5          "
		want[11] = "   42         "
		want[13] = "   COMBO x3   "
		want[14] = "   T-SPIN     "
		got := leftCol(&templateData{Local: &tetris.Tetris{
			HoldShape:  tetris.T,
			Score:      12345,
			Level:      5,
			LinesClear: 42,
			Combo:      3,
			Spin:       tetris.FullSpin,
		}})
		if !reflect.DeepEqual(got, want) {
			t.Errorf("want %v, got %v", want, got)
		}
	})

	t.Run("leftCol with nil data renders the headers only", func(t *testing.T) {
		want := want
		want[5] = blank
		want[8] = blank
		want[11] = blank
		got := leftCol(nil)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("want %v, got %v", want, got)
		}
	})
}

func TestRightCol(t *testing.T) {
	blank := strings.Repeat(" ", 10)
	want := [20]string{}
	for i := range want {
		want[i] = blank
	}
	want[0] = "  NEXT    "
	blueCell := "\x1b[7m\x1b[34m[]\x1b[0m"
	row0 := "  " + blueCell + "      "
	row1 := "  " + blueCell + blueCell + blueCell + "  "
	want[1], want[2] = row0, row1
	want[4], want[5] = row0, row1
	want[7], want[8] = row0, row1
	got := rightCol(&templateData{Local: tetris.NewTestTetris(tetris.J)})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("want %v, got %v", want, got)
	}

	t.Run("rightCol with nil data renders the header only", func(t *testing.T) {
		want := [20]string{}
		for i := range want {
			want[i] = blank
		}
		want[0] = "  NEXT    "
		got := rightCol(nil)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("want %v, got %v", want, got)
		}
	})
}

func TestMiniGrid(t *testing.T) {
	tests := []struct {
		shape tetris.Shape
		want  [2]string
	}{
		{tetris.J, [2]string{"\x1b[7m\x1b[34m[]\x1b[0m      ", "\x1b[7m\x1b[34m[]\x1b[0m\x1b[7m\x1b[34m[]\x1b[0m\x1b[7m\x1b[34m[]\x1b[0m  "}},
		{tetris.O, [2]string{"  \x1b[7m\x1b[33m[]\x1b[0m\x1b[7m\x1b[33m[]\x1b[0m  ", "  \x1b[7m\x1b[33m[]\x1b[0m\x1b[7m\x1b[33m[]\x1b[0m  "}},
		{tetris.I, [2]string{"        ", "\x1b[7m\x1b[36m[]\x1b[0m\x1b[7m\x1b[36m[]\x1b[0m\x1b[7m\x1b[36m[]\x1b[0m\x1b[7m\x1b[36m[]\x1b[0m"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.shape), func(t *testing.T) {
			got := miniGrid(tt.shape)
			if !reflect.DeepEqual(tt.want, got) {
				t.Errorf("want %v, got %v", tt.want, got)
			}
		})
	}

	t.Run("unknown shape renders empty spaces", func(t *testing.T) {
		want := [2]string{"        ", "        "}
		got := miniGrid("")
		if !reflect.DeepEqual(got, want) {
			t.Errorf("want %v, got %v", want, got)
		}
	})
}

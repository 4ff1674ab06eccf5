package tetris

type Shape string

const (
	I Shape = "I"
	J Shape = "J"
	L Shape = "L"
	O Shape = "O"
	S Shape = "S"
	T Shape = "T"
	Z Shape = "Z"
)

// Every tetromino spawns with its bounding box at the same position, the
// top row just above the visible field. https://tetris.wiki/Spawn_location
const (
	spawnX = 3
	spawnY = 19
)

// noKick marks a rotation that succeeded without a wall kick.
const noKick = -1

// RotationResult reports the outcome of a rotation attempt. Kick is the
// index of the wall kick that made the rotation fit, or noKick.
type RotationResult struct {
	Success  bool
	From, To int
	Kick     int
}

type Tetromino struct {
	Grid     [][]bool
	X        int
	Y        int
	Rotation int
	Shape    Shape

	// GhostY is the row where the tetromino would rest after dropping
	// straight down. It is filled in on Read() snapshots and not
	// maintained while the game runs.
	GhostY int

	placed bool
}

var shapeMap = map[Shape]func() *Tetromino{
	I: newI,
	J: newJ,
	L: newL,
	O: newO,
	S: newS,
	T: newT,
	Z: newZ,
}

// ShapeGrid returns the spawn orientation grid of a shape, for callers
// that draw a piece outside the stack, like the hold box and the
// upcoming queue. Unknown shapes return nil.
func ShapeGrid(s Shape) [][]bool {
	newShape, ok := shapeMap[s]
	if !ok {
		return nil
	}
	return newShape().Grid
}

/*
.	Spawn Location			.	Shape

.	0 1 2 3 4 5 6 7 8 9		.	0 1 2 3

19	X X X X X X X X X X		0	X X X X

20	X X X O O O O X X X		1	O O O O

21	X X X X X X X X X X		2	X X X X

22	X X X X X X X X X X		3	X X X X
*/
func newI() *Tetromino {
	return &Tetromino{
		Grid: [][]bool{
			{false, false, false, false},
			{true, true, true, true},
			{false, false, false, false},
			{false, false, false, false},
		},
		X:     spawnX,
		Y:     spawnY,
		Shape: I,
	}
}

/*
.	Spawn Location			.	Shape

.	0 1 2 3 4 5 6 7 8 9		.	0 1 2

19	X X X O X X X X X X		0	O X X

20	X X X O O O X X X X		1	O O O

21	X X X X X X X X X X		2	X X X
*/
func newJ() *Tetromino {
	return &Tetromino{
		Grid: [][]bool{
			{true, false, false},
			{true, true, true},
			{false, false, false},
		},
		X:     spawnX,
		Y:     spawnY,
		Shape: J,
	}
}

/*
.	Spawn Location			.	Shape

.	0 1 2 3 4 5 6 7 8 9		.	0 1 2

19	X X X X X O X X X X		0	X X O

20	X X X O O O X X X X		1	O O O

21	X X X X X X X X X X		2	X X X
*/
func newL() *Tetromino {
	return &Tetromino{
		Grid: [][]bool{
			{false, false, true},
			{true, true, true},
			{false, false, false},
		},
		X:     spawnX,
		Y:     spawnY,
		Shape: L,
	}
}

/*
.	Spawn Location			.	Shape

.	0 1 2 3 4 5 6 7 8 9		.	0 1 2 3

19	X X X X O O X X X X		0	X O O X

20	X X X X O O X X X X		1	X O O X

21	X X X X X X X X X X		2	X X X X
*/
func newO() *Tetromino {
	return &Tetromino{
		Grid: [][]bool{
			{false, true, true, false},
			{false, true, true, false},
			{false, false, false, false},
		},
		X:     spawnX,
		Y:     spawnY,
		Shape: O,
	}
}

/*
.	Spawn Location			.	Shape

.	0 1 2 3 4 5 6 7 8 9		.	0 1 2

19	X X X X O O X X X X		0	X O O

20	X X X O O X X X X X		1	O O X

21	X X X X X X X X X X		2	X X X
*/
func newS() *Tetromino {
	return &Tetromino{
		Grid: [][]bool{
			{false, true, true},
			{true, true, false},
			{false, false, false},
		},
		X:     spawnX,
		Y:     spawnY,
		Shape: S,
	}
}

/*
.	Spawn Location			.	Shape

.	0 1 2 3 4 5 6 7 8 9		.	0 1 2

19	X X X X O X X X X X		0	X O X

20	X X X O O O X X X X		1	O O O

21	X X X X X X X X X X		2	X X X
*/
func newT() *Tetromino {
	return &Tetromino{
		Grid: [][]bool{
			{false, true, false},
			{true, true, true},
			{false, false, false},
		},
		X:     spawnX,
		Y:     spawnY,
		Shape: T,
	}
}

/*
.	Spawn Location			.	Shape

.	0 1 2 3 4 5 6 7 8 9		.	0 1 2

19	X X X O O X X X X X		0	O O X

20	X X X X O O X X X X		1	X O O

21	X X X X X X X X X X		2	X X X
*/
func newZ() *Tetromino {
	return &Tetromino{
		Grid: [][]bool{
			{true, true, false},
			{false, true, true},
			{false, false, false},
		},
		X:     spawnX,
		Y:     spawnY,
		Shape: Z,
	}
}

// Wall kick offsets tried in order when a plain rotation collides, keyed
// by the from and to rotation states. The values follow the Super
// Rotation System with the y axis growing downwards.
// https://tetris.wiki/Super_Rotation_System
var jlstzKicks = map[int]map[int][][2]int{
	0: {
		1: {{-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
		3: {{1, 0}, {1, -1}, {0, 2}, {1, 2}},
	},
	1: {
		0: {{1, 0}, {1, 1}, {0, -2}, {1, -2}},
		2: {{1, 0}, {1, 1}, {0, -2}, {1, -2}},
	},
	2: {
		1: {{-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
		3: {{1, 0}, {1, -1}, {0, 2}, {1, 2}},
	},
	3: {
		2: {{-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
		0: {{-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
	},
}

var iKicks = map[int]map[int][][2]int{
	0: {
		1: {{-2, 0}, {1, 0}, {-2, 1}, {1, -2}},
		3: {{-1, 0}, {2, 0}, {-1, -2}, {2, 1}},
	},
	1: {
		0: {{2, 0}, {-1, 0}, {2, -1}, {-1, 2}},
		2: {{-1, 0}, {2, 0}, {-1, -2}, {2, 1}},
	},
	2: {
		1: {{1, 0}, {-2, 0}, {1, 2}, {-2, -1}},
		3: {{2, 0}, {-1, 0}, {2, -1}, {-1, 2}},
	},
	3: {
		2: {{-2, 0}, {1, 0}, {-2, 1}, {1, -2}},
		0: {{1, 0}, {-2, 0}, {1, 2}, {-2, -1}},
	},
}

// kicksFor returns the kick offsets for a rotation transition. The O
// shape never gets here, it has a single rotation state.
func kicksFor(shape Shape, from, to int) [][2]int {
	if shape == I {
		return iKicks[from][to]
	}
	return jlstzKicks[from][to]
}

// pointingCorners are the two corners of the T's bounding box on the
// side the T points to, per rotation state. Used for T-Spin detection.
var pointingCorners = map[int][][2]int{
	0: {{0, 0}, {2, 0}},
	1: {{2, 0}, {2, 2}},
	2: {{2, 2}, {0, 2}},
	3: {{0, 2}, {0, 0}},
}

// rotateGrid turns a square mask 90 degrees clockwise.
func rotateGrid(g [][]bool) [][]bool {
	rotated := make([][]bool, len(g))
	for i := range g {
		rotated[i] = make([]bool, len(g[i]))
	}
	for iy, row := range g {
		col := len(row) - iy - 1
		for ix, c := range row {
			rotated[ix][col] = c
		}
	}
	return rotated
}

// canMove reports whether the tetromino fits at its position offset by
// (dx, dy). Cells the tetromino currently occupies on the stack don't
// count as collisions, so the check works without removing the tetromino
// first and never mutates anything.
func (t *Tetromino) canMove(s Stack, dx, dy int) bool {
	for iy, row := range t.Grid {
		for ix, c := range row {
			if !c {
				continue
			}
			x := t.X + ix + dx
			y := t.Y + iy + dy
			if x < 0 || x >= len(s[0]) || y < 0 || y >= len(s) {
				return false
			}
			if s[y][x] != "" && !t.occupies(x, y) {
				return false
			}
		}
	}
	return true
}

// occupies reports whether (x, y) is one of the tetromino's own cells on
// the stack.
func (t *Tetromino) occupies(x, y int) bool {
	if !t.placed {
		return false
	}
	ix, iy := x-t.X, y-t.Y
	if iy < 0 || iy >= len(t.Grid) || ix < 0 || ix >= len(t.Grid[iy]) {
		return false
	}
	return t.Grid[iy][ix]
}

// place writes the tetromino's cells into the stack. Cells outside the
// stack are skipped. Idempotent.
func (t *Tetromino) place(s Stack) {
	if t.placed {
		return
	}
	for iy, row := range t.Grid {
		for ix, c := range row {
			if !c {
				continue
			}
			x, y := t.X+ix, t.Y+iy
			if x >= 0 && x < len(s[0]) && y >= 0 && y < len(s) {
				s[y][x] = t.Shape
			}
		}
	}
	t.placed = true
}

// remove clears the tetromino's cells from the stack. Idempotent.
func (t *Tetromino) remove(s Stack) {
	if !t.placed {
		return
	}
	for iy, row := range t.Grid {
		for ix, c := range row {
			if !c {
				continue
			}
			x, y := t.X+ix, t.Y+iy
			if x >= 0 && x < len(s[0]) && y >= 0 && y < len(s) {
				s[y][x] = ""
			}
		}
	}
	t.placed = false
}

// move relocates the tetromino by (dx, dy) if the target position is
// legal and reports whether it moved.
func (t *Tetromino) move(s Stack, dx, dy int) bool {
	if !t.canMove(s, dx, dy) {
		return false
	}
	t.forceMove(s, dx, dy)
	return true
}

// forceMove relocates the tetromino without a legality check. Gravity
// steps and committed wall kicks are already known to be legal.
func (t *Tetromino) forceMove(s Stack, dx, dy int) {
	wasPlaced := t.placed
	t.remove(s)
	t.X += dx
	t.Y += dy
	if wasPlaced {
		t.place(s)
	}
}

// rotate turns the tetromino one step clockwise or counter-clockwise,
// trying the wall kicks for the transition when the plain rotation does
// not fit. On failure the tetromino and the stack are left untouched.
func (t *Tetromino) rotate(s Stack, a Action) RotationResult {
	if t.Shape == O {
		// the O shape has a single rotation state.
		return RotationResult{Success: true, From: t.Rotation, To: t.Rotation, Kick: noKick}
	}
	steps := 1
	if a == RotateLeft {
		steps = 3
	}
	from := t.Rotation
	wasPlaced := t.placed
	t.remove(s)
	for range steps {
		t.Grid = rotateGrid(t.Grid)
	}
	t.Rotation = (t.Rotation + steps) % 4

	if t.canMove(s, 0, 0) {
		if wasPlaced {
			t.place(s)
		}
		return RotationResult{Success: true, From: from, To: t.Rotation, Kick: noKick}
	}
	for i, k := range kicksFor(t.Shape, from, t.Rotation) {
		if t.canMove(s, k[0], k[1]) {
			t.X += k[0]
			t.Y += k[1]
			if wasPlaced {
				t.place(s)
			}
			return RotationResult{Success: true, From: from, To: t.Rotation, Kick: i}
		}
	}

	// no fit, undo the rotation
	for range 4 - steps {
		t.Grid = rotateGrid(t.Grid)
	}
	t.Rotation = from
	if wasPlaced {
		t.place(s)
	}
	return RotationResult{Success: false, Kick: noKick}
}

// dropDelta returns how many rows the tetromino can fall before it
// rests, without moving it.
func (t *Tetromino) dropDelta(s Stack) int {
	var delta int
	for t.canMove(s, 0, delta+1) {
		delta++
	}
	return delta
}

// hardDrop sends the tetromino straight down to its resting row and
// returns the number of rows it fell.
func (t *Tetromino) hardDrop(s Stack) int {
	rows := t.dropDelta(s)
	if rows > 0 {
		t.forceMove(s, 0, rows)
	}
	return rows
}

func (t *Tetromino) copy() *Tetromino {
	if t == nil {
		return nil
	}
	grid := make([][]bool, len(t.Grid))
	for i := range t.Grid {
		grid[i] = make([]bool, len(t.Grid[i]))
		copy(grid[i], t.Grid[i])
	}
	c := *t
	c.Grid = grid
	return &c
}

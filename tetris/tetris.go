// Package tetris contains the logic of the game
// based on https://tetris.wiki/Tetris_Guideline
package tetris

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config holds the tunable parameters of a game. Start from
// DefaultConfig, the zero value is not playable.
type Config struct {
	// Columns and Rows size the stack. The top Rows-VisibleRows rows
	// are hidden and give tetrominoes room to spawn and lock above the
	// visible field.
	Columns     int
	Rows        int
	VisibleRows int

	// LockDelay is how long a tetromino may rest on the stack before
	// it locks. Moving or rotating it restarts the delay.
	LockDelay time.Duration

	// SpawnDelay is the pause between a lock and the next spawn.
	SpawnDelay time.Duration

	// PreviewCount is how many upcoming shapes a Read snapshot shows.
	PreviewCount int

	// BaseFallInterval is the gravity interval at level one. Higher
	// levels derive theirs from the marathon curve, see setTime.
	BaseFallInterval time.Duration

	// LineScores maps lines cleared at once to the adjusted line count
	// driving scoring and leveling. Missing entries count zero.
	LineScores map[int]int

	// LineGoalMultiplier times the level is the adjusted line count
	// needed to reach the next level.
	LineGoalMultiplier int

	// LineClearBase and ComboBonus are the score units for clearing
	// lines and for keeping a combo going.
	LineClearBase int
	ComboBonus    int
}

func DefaultConfig() Config {
	return Config{
		Columns:            10,
		Rows:               40,
		VisibleRows:        20,
		LockDelay:          500 * time.Millisecond,
		SpawnDelay:         200 * time.Millisecond,
		PreviewCount:       3,
		BaseFallInterval:   time.Second,
		LineScores:         map[int]int{1: 1, 2: 3, 3: 5, 4: 8},
		LineGoalMultiplier: 5,
		LineClearBase:      100,
		ComboBonus:         50,
	}
}

func (c Config) validate() error {
	// the spawn position is fixed, the stack must reach past it
	if c.Columns < 7 {
		return fmt.Errorf("requires at least 7 columns, got %d", c.Columns)
	}
	if c.Rows < 24 {
		return fmt.Errorf("requires at least 24 rows, got %d", c.Rows)
	}
	if c.VisibleRows < 1 || c.VisibleRows > c.Rows {
		return fmt.Errorf("visible rows %d out of range for %d rows", c.VisibleRows, c.Rows)
	}
	if c.LockDelay <= 0 || c.SpawnDelay < 0 || c.BaseFallInterval <= 0 {
		return fmt.Errorf("delays must be positive")
	}
	if c.PreviewCount < 0 || c.PreviewCount > 7 {
		return fmt.Errorf("preview count %d out of range", c.PreviewCount)
	}
	if c.LineGoalMultiplier < 1 {
		return fmt.Errorf("line goal multiplier %d out of range", c.LineGoalMultiplier)
	}
	return nil
}

// Spin classifies the T-Spin a lock scored, if any.
type Spin string

const (
	NoSpin   Spin = ""
	MiniSpin Spin = "mini"
	FullSpin Spin = "full"
)

// Stack is the playfield. Rows run top to bottom, a cell holds the
// Shape occupying it or the empty string. The falling tetromino's cells
// are part of the Stack while it falls.
type Stack [][]Shape

func newStack(rows, columns int) Stack {
	s := make(Stack, rows)
	for i := range s {
		s[i] = make([]Shape, columns)
	}
	return s
}

// clearLines removes every complete row, adds fresh rows at the top to
// keep the stack size and returns how many rows were removed.
func (s Stack) clearLines() int {
	columns := len(s[0])
	keep := make([][]Shape, 0, len(s))
	for _, row := range s {
		if slices.Contains(row, "") {
			keep = append(keep, row)
		}
	}
	cleared := len(s) - len(keep)
	for i := range cleared {
		s[i] = make([]Shape, columns)
	}
	copy(s[cleared:], keep)
	return cleared
}

// moveEntry records one accepted movement for T-Spin detection. Only
// the two most recent movements matter.
type moveEntry struct {
	action   Action
	from, to int
	kick     int
}

// Tetris holds the state of one game. All mutation runs on the Game
// goroutine, Read hands out copies that are safe to keep.
type Tetris struct {
	Stack     Stack
	Tetromino *Tetromino // nil between a lock and the next spawn
	Next      []Shape    // upcoming shapes, index 0 spawns next
	HoldShape Shape      // empty until the first hold

	Level      int
	Score      int
	LinesClear int
	Combo      int
	Spin       Spin // T-Spin scored by the last lock
	Paused     bool
	GameOver   bool
	Session    uuid.UUID // set on snapshots, identifies the game run

	cfg          Config
	bag          *bag
	fallInterval time.Duration
	fallTimer    time.Duration
	lockTimer    time.Duration
	spawnTimer   time.Duration
	lineCount    int
	lockStarted  bool
	gravityDue   bool
	spawnDue     bool
	held         bool
	moveLog      [2]moveEntry
	moveLen      int
	mu           sync.RWMutex
}

func newTetris(cfg Config) *Tetris {
	return &Tetris{
		Stack:        newStack(cfg.Rows, cfg.Columns),
		Level:        1,
		Combo:        1,
		cfg:          cfg,
		bag:          newBag(),
		fallInterval: cfg.BaseFallInterval,
		// the first tetromino spawns on the first tick
		spawnTimer: cfg.SpawnDelay,
		spawnDue:   true,
	}
}

// action applies a player movement. Rejected movements, like walking
// into a wall, change nothing at all.
func (t *Tetris) action(a Action) {
	if t.Paused || t.GameOver || t.Tetromino == nil {
		return
	}
	switch a {
	case MoveLeft:
		if t.Tetromino.move(t.Stack, -1, 0) {
			t.lockTimer = 0
			t.logMove(moveEntry{action: a})
		}
	case MoveRight:
		if t.Tetromino.move(t.Stack, 1, 0) {
			t.lockTimer = 0
			t.logMove(moveEntry{action: a})
		}
	case RotateRight, RotateLeft:
		if r := t.Tetromino.rotate(t.Stack, a); r.Success {
			t.lockTimer = 0
			t.logMove(moveEntry{action: a, from: r.From, to: r.To, kick: r.Kick})
		}
	case MoveDown:
		t.softDrop()
	case DropDown:
		t.hardDrop()
	case Hold:
		t.hold()
	}
}

func (t *Tetris) softDrop() {
	if !t.Tetromino.move(t.Stack, 0, 1) {
		return
	}
	t.Score++
	t.gravityDue = false
	t.logMove(moveEntry{action: MoveDown})
}

// hardDrop sends the tetromino to its resting row and locks it there.
// A drop over zero rows still locks but is not logged, so a T-Spin set
// up by the last rotation survives.
func (t *Tetris) hardDrop() {
	rows := t.Tetromino.hardDrop(t.Stack)
	t.Score += 2 * rows
	if rows > 0 {
		t.logMove(moveEntry{action: DropDown})
	}
	t.lock()
}

// hold swaps the falling tetromino with the hold slot, or stores it and
// spawns the next one when the slot is empty. Once per lock.
func (t *Tetris) hold() {
	if t.held {
		return
	}
	shape := t.Tetromino.Shape
	t.Tetromino.remove(t.Stack)
	swapped := t.HoldShape
	t.HoldShape = shape
	t.setTetromino(swapped)
	t.held = true
	if t.Tetromino == nil {
		t.GameOver = true
	}
}

// setTetromino spawns a tetromino at the spawn position, drawing from
// the upcoming queue when no shape is given. The new tetromino
// immediately falls one row when it can. A tetromino that does not fit
// leaves Tetromino nil, that game is lost.
func (t *Tetris) setTetromino(shape Shape) {
	if shape == "" {
		for len(t.Next) < 7 {
			t.Next = append(t.Next, t.bag.draw())
		}
		shape = t.Next[0]
		t.Next = t.Next[1:]
	}
	tet := shapeMap[shape]()
	if !tet.canMove(t.Stack, 0, 0) {
		t.Tetromino = nil
		return
	}
	tet.place(t.Stack)
	tet.move(t.Stack, 0, 1)
	t.Tetromino = tet
	t.fallTimer = 0
	t.lockTimer = 0
	t.gravityDue = false
	t.lockStarted = false
	t.moveLen = 0
}

// advanceTime moves the game clock forward by elapsed. It drives the
// spawn delay, gravity and the lock delay, and reports whether the
// observable state changed.
func (t *Tetris) advanceTime(elapsed time.Duration) bool {
	if t.Paused || t.GameOver {
		return false
	}
	var changed bool
	if t.spawnDue && t.spawnTimer >= t.cfg.SpawnDelay {
		t.setTetromino("")
		t.spawnDue = false
		t.spawnTimer = 0
		t.held = false
		changed = true
		if t.Tetromino == nil {
			t.GameOver = true
			return true
		}
	}
	if t.spawnDue {
		t.spawnTimer += elapsed
	}
	if t.Tetromino == nil {
		return changed
	}
	if !t.gravityDue {
		t.fallTimer += elapsed
	}
	if t.lockStarted {
		t.lockTimer += elapsed
	}
	if t.fallTimer >= t.fallInterval {
		t.gravityDue = true
		t.fallTimer %= t.fallInterval
	}
	if t.Tetromino.canMove(t.Stack, 0, 1) {
		t.lockStarted = false
		t.lockTimer = 0
		if t.gravityDue {
			t.Tetromino.forceMove(t.Stack, 0, 1)
			changed = true
		}
		t.gravityDue = false
	} else {
		t.lockStarted = true
	}
	if t.lockTimer >= t.cfg.LockDelay {
		t.Tetromino.move(t.Stack, 0, 1)
		t.lock()
		changed = true
	}
	return changed
}

// lock settles the tetromino where it stands: classify the T-Spin,
// clear lines, score, level up and hand over to the spawn delay.
func (t *Tetris) lock() {
	t.Spin = t.tSpin()
	lines := t.Stack.clearLines()
	if lines > 0 {
		// scoring reads the level before the clear raises it
		t.Score += t.cfg.LineClearBase*t.cfg.LineScores[lines]*t.Level +
			t.cfg.ComboBonus*(t.Combo-1)*t.Level
		t.setLevel(lines)
		t.Combo++
	} else {
		t.Combo = 1
	}
	t.LinesClear += lines
	t.lockTimer = 0
	t.lockStarted = false
	t.Tetromino = nil
	t.spawnDue = true
}

// setLevel adds the adjusted lines for a clear and advances the level
// each time the accumulated count reaches the goal for the current
// level.
func (t *Tetris) setLevel(lines int) {
	t.lineCount += t.cfg.LineScores[lines]
	for t.lineCount >= t.Level*t.cfg.LineGoalMultiplier {
		t.lineCount -= t.Level * t.cfg.LineGoalMultiplier
		t.Level++
	}
	t.fallInterval = t.setTime()
}

// setTime returns the gravity interval for the current level, based on
// https://tetris.wiki/Marathon
//
// Time = (0.8-((Level-1)*0.007))^(Level-1)
func (t *Tetris) setTime() time.Duration {
	level := t.Level
	switch {
	case level < 1:
		level = 1
	case level > 20:
		level = 20
	}
	seconds := math.Pow(0.8-float64(level-1)*0.007, float64(level-1))
	return time.Duration(seconds * float64(t.cfg.BaseFallInterval))
}

func (t *Tetris) togglePause() {
	if t.GameOver {
		return
	}
	t.Paused = !t.Paused
}

// logMove pushes a movement onto the two slot log. Gravity, the spawn
// step and holds are never logged.
func (t *Tetris) logMove(e moveEntry) {
	t.moveLog[0] = t.moveLog[1]
	t.moveLog[1] = e
	if t.moveLen < 2 {
		t.moveLen++
	}
}

// tSpin classifies the tetromino about to lock using the 3-corner rule:
// the last movement must be a rotation and at least three of the four
// corners around the T's center must be occupied, where walls and floor
// count as occupied. Both corners on the pointing side make it a full
// spin, otherwise it is a mini unless the last two movements form a TST
// twist. https://tetris.wiki/T-Spin
func (t *Tetris) tSpin() Spin {
	if t.Tetromino.Shape != T || t.moveLen == 0 {
		return NoSpin
	}
	last := t.moveLog[1]
	if last.action != RotateRight && last.action != RotateLeft {
		return NoSpin
	}
	var occupied [][2]int
	for _, c := range [][2]int{{0, 0}, {2, 0}, {0, 2}, {2, 2}} {
		x := t.Tetromino.X + c[0]
		y := t.Tetromino.Y + c[1]
		if x < 0 || x >= t.cfg.Columns || y < 0 || y >= t.cfg.Rows || t.Stack[y][x] != "" {
			occupied = append(occupied, c)
		}
	}
	if len(occupied) < 3 {
		return NoSpin
	}
	full := true
	for _, c := range pointingCorners[t.Tetromino.Rotation] {
		if !slices.Contains(occupied, c) {
			full = false
		}
	}
	if full || t.isTST() {
		return FullSpin
	}
	return MiniSpin
}

// isTST reports whether the last two movements are the TST twist: two
// rotations in the same direction whose wall kicks send the T spinning
// under an overhang. Clockwise that is 3 to 0 on the second kick
// followed by 0 to 1 on the fourth, counter-clockwise the mirrored
// pair.
func (t *Tetris) isTST() bool {
	if t.moveLen < 2 {
		return false
	}
	first, second := t.moveLog[0], t.moveLog[1]
	if first.action != second.action {
		return false
	}
	switch second.action {
	case RotateRight:
		return first.from == 3 && first.to == 0 && first.kick == 1 &&
			second.from == 0 && second.to == 1 && second.kick == 3
	case RotateLeft:
		return first.from == 1 && first.to == 0 && first.kick == 1 &&
			second.from == 0 && second.to == 3 && second.kick == 3
	}
	return false
}

// dropDownDelta returns how many rows the falling tetromino has left
// before it rests. The ghost piece renders that far below it.
func (t *Tetris) dropDownDelta() int {
	if t.Tetromino == nil {
		return 0
	}
	return t.Tetromino.dropDelta(t.Stack)
}

package world

import (
	"time"

	"github.com/cory-johannsen/brawler/internal/sim/geom"
)

// HeadlessGrid is an in-memory rectangular grid with unit-square cells and
// an optional blocked-cell set. It backs the simserver binary and tests.
type HeadlessGrid struct {
	Cols     int
	Rows     int
	CellSize float64
	blocked  map[geom.Cell]bool
}

// NewHeadlessGrid creates a fully traversable cols x rows grid.
//
// Precondition: cols > 0, rows > 0, cellSize > 0.
func NewHeadlessGrid(cols, rows int, cellSize float64) *HeadlessGrid {
	return &HeadlessGrid{
		Cols:     cols,
		Rows:     rows,
		CellSize: cellSize,
		blocked:  make(map[geom.Cell]bool),
	}
}

// Block marks a cell as non-traversable.
func (g *HeadlessGrid) Block(cell geom.Cell) { g.blocked[cell] = true }

// CellFromPosition returns the cell containing pos.
//
// Postcondition: Returns (cell, true) iff pos lies inside the grid bounds.
func (g *HeadlessGrid) CellFromPosition(pos geom.Vec2) (geom.Cell, bool) {
	if pos.X < 0 || pos.Y < 0 {
		return geom.Cell{}, false
	}
	c := geom.Cell{Col: int(pos.X / g.CellSize), Row: int(pos.Y / g.CellSize)}
	if c.Col >= g.Cols || c.Row >= g.Rows {
		return geom.Cell{}, false
	}
	return c, true
}

// CellAtDistance returns the cell distance columns from from, same row.
//
// Postcondition: Returns (cell, true) iff the resulting column is in bounds.
func (g *HeadlessGrid) CellAtDistance(from geom.Cell, distance int) (geom.Cell, bool) {
	c := geom.Cell{Col: from.Col + distance, Row: from.Row}
	if c.Col < 0 || c.Col >= g.Cols || c.Row < 0 || c.Row >= g.Rows {
		return geom.Cell{}, false
	}
	return c, true
}

// Traversable reports whether the cell is in bounds and not blocked.
func (g *HeadlessGrid) Traversable(cell geom.Cell) bool {
	if cell.Col < 0 || cell.Col >= g.Cols || cell.Row < 0 || cell.Row >= g.Rows {
		return false
	}
	return !g.blocked[cell]
}

// PositionForCell returns the world position of the cell center.
func (g *HeadlessGrid) PositionForCell(cell geom.Cell) geom.Vec2 {
	return geom.Vec2{
		X: (float64(cell.Col) + 0.5) * g.CellSize,
		Y: (float64(cell.Row) + 0.5) * g.CellSize,
	}
}

// FixedCamera is a Visibility implementation with an axis-aligned view
// rectangle. Move relocates the view for scrolling tests.
type FixedCamera struct {
	Min geom.Vec2
	Max geom.Vec2

	grid Grid
}

// NewFixedCamera creates a camera viewing [min, max] over grid.
//
// Precondition: grid must be non-nil; min.X <= max.X and min.Y <= max.Y.
func NewFixedCamera(min, max geom.Vec2, grid Grid) *FixedCamera {
	return &FixedCamera{Min: min, Max: max, grid: grid}
}

// PositionViewable reports whether pos lies inside the view rectangle.
func (c *FixedCamera) PositionViewable(pos geom.Vec2) bool {
	return pos.X >= c.Min.X && pos.X <= c.Max.X && pos.Y >= c.Min.Y && pos.Y <= c.Max.Y
}

// CellViewable reports whether the cell's center is inside the view rectangle.
func (c *FixedCamera) CellViewable(cell geom.Cell) bool {
	return c.PositionViewable(c.grid.PositionForCell(cell))
}

// Move translates the view rectangle by delta.
func (c *FixedCamera) Move(delta geom.Vec2) {
	c.Min = c.Min.Add(delta)
	c.Max = c.Max.Add(delta)
}

// PlayedSequence records one Animator.PlaySequence call.
type PlayedSequence struct {
	CharacterID string
	Sequences   []string
	Chosen      int
}

// RecordingAnimator is a test/headless Animator that records every play and
// always chooses index 0.
type RecordingAnimator struct {
	Played  []PlayedSequence
	Stopped []string
}

// PlaySequence records the call and returns 0.
func (a *RecordingAnimator) PlaySequence(characterID string, sequences []string) int {
	a.Played = append(a.Played, PlayedSequence{CharacterID: characterID, Sequences: sequences, Chosen: 0})
	return 0
}

// Stop records the character whose playback was halted.
func (a *RecordingAnimator) Stop(characterID string) {
	a.Stopped = append(a.Stopped, characterID)
}

// MoveCommand records one Mover call.
type MoveCommand struct {
	CharacterID string
	Kind        string // "move_to", "set_velocity", "stop"
	Pos         geom.Vec2
	Velocity    geom.Vec2
	Duration    time.Duration
}

// RecordingMover is a test/headless Mover that records every command.
type RecordingMover struct {
	Commands []MoveCommand
}

// MoveTo records a move_to command.
func (m *RecordingMover) MoveTo(characterID string, pos geom.Vec2, duration time.Duration, facing geom.Vec2) {
	m.Commands = append(m.Commands, MoveCommand{CharacterID: characterID, Kind: "move_to", Pos: pos, Duration: duration})
}

// SetVelocity records a set_velocity command.
func (m *RecordingMover) SetVelocity(characterID string, v geom.Vec2, duration time.Duration) {
	m.Commands = append(m.Commands, MoveCommand{CharacterID: characterID, Kind: "set_velocity", Velocity: v, Duration: duration})
}

// Stop records a stop command.
func (m *RecordingMover) Stop(characterID string) {
	m.Commands = append(m.Commands, MoveCommand{CharacterID: characterID, Kind: "stop"})
}

// NullAudio discards all sounds.
type NullAudio struct{}

// PlaySound does nothing.
func (NullAudio) PlaySound(characterID, name string) {}

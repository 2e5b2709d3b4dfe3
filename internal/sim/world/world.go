// Package world declares the boundary contracts between the simulation core
// and its out-of-scope collaborators: animation playback, physics-driven
// movement, audio, camera visibility, and the level grid. The core only ever
// issues commands and queries through these interfaces; completion events
// travel the other way via the host calling back into character control.
package world

import (
	"time"

	"github.com/cory-johannsen/brawler/internal/sim/geom"
)

// Animator plays skeletal animation sequences for a character.
type Animator interface {
	// PlaySequence starts one of the named alternative sequences and returns
	// the chosen index. The host signals completion and hit-box timeline
	// events back into the owning CharacterControl.
	PlaySequence(characterID string, sequences []string) int
	// Stop halts any sequence currently playing for the character.
	Stop(characterID string)
}

// Mover issues movement commands to the physics collaborator.
type Mover interface {
	// MoveTo moves the character toward pos over duration, facing the given
	// direction. A zero duration means "at the character's own speed".
	MoveTo(characterID string, pos geom.Vec2, duration time.Duration, facing geom.Vec2)
	// SetVelocity applies a velocity for the given duration.
	SetVelocity(characterID string, v geom.Vec2, duration time.Duration)
	// Stop cancels any in-flight movement for the character.
	Stop(characterID string)
}

// Audio plays one-shot sounds attached to a character.
type Audio interface {
	PlaySound(characterID, name string)
}

// Visibility answers camera-frustum queries, used by the despawn and
// spawn-placement policies.
type Visibility interface {
	PositionViewable(pos geom.Vec2) bool
	CellViewable(cell geom.Cell) bool
}

// Grid exposes read-only navigation queries against the level grid.
type Grid interface {
	// CellFromPosition returns the cell containing pos, or false if pos is
	// outside the level.
	CellFromPosition(pos geom.Vec2) (geom.Cell, bool)
	// CellAtDistance returns the cell distance columns ahead of from
	// (negative distance means behind), or false if out of bounds.
	CellAtDistance(from geom.Cell, distance int) (geom.Cell, bool)
	// Traversable reports whether characters can occupy the cell.
	Traversable(cell geom.Cell) bool
	// PositionForCell returns the world position of the cell's center.
	PositionForCell(cell geom.Cell) geom.Vec2
}

// Package action provides the declarative combat-move model: animation
// sequence alternatives, timed forces, hit-box activation windows,
// cancellation flags, and combo links. Definitions are immutable templates
// loaded from YAML; characters perform per-instance clones so runtime
// target/position binding never leaks across characters.
package action

import (
	"fmt"
	"time"

	"github.com/cory-johannsen/brawler/internal/sim/geom"
)

// DefaultFPS is the animation frame rate assumed when a template does not
// declare one. Frame-based force timings are converted to seconds with it.
const DefaultFPS = 30.0

// ForceType distinguishes how a force moves its character.
type ForceType string

const (
	// ForceVelocity applies a velocity for the force's duration.
	ForceVelocity ForceType = "velocity"
	// ForcePosition moves the character to the bound target position.
	ForcePosition ForceType = "position"
)

// TimingMode distinguishes how a force's start time is expressed.
type TimingMode string

const (
	// TimingFrames starts the force at an animation frame offset.
	TimingFrames TimingMode = "frames"
	// TimingAwait starts the force once a named animation finishes.
	TimingAwait TimingMode = "await"
)

// ActivationMode distinguishes how a hit box opens and closes.
type ActivationMode string

const (
	// ActivationTimeline opens/closes on animation timeline events raised by
	// the animation collaborator.
	ActivationTimeline ActivationMode = "timeline"
	// ActivationForced opens/closes at fixed frame offsets.
	ActivationForced ActivationMode = "forced"
)

// Timing locates a force's start on the action timeline.
type Timing struct {
	Mode TimingMode `yaml:"mode"`
	// Frame is the start frame when Mode is "frames".
	Frame float64 `yaml:"frame"`
	// Await is the animation name to wait for when Mode is "await".
	Await string `yaml:"await"`
}

// Force is one timed displacement or velocity applied during an action.
type Force struct {
	Type  ForceType `yaml:"type"`
	Start Timing    `yaml:"start"`
	// DurationSeconds is how long the force stays applied.
	DurationSeconds float64 `yaml:"duration_seconds"`
	// Speed is the movement speed in world units per second.
	Speed float64 `yaml:"speed"`
	// OnComplete is an optional event hook name raised when the force ends.
	OnComplete string `yaml:"on_complete"`
}

// Duration returns the force's duration as a time.Duration.
func (f Force) Duration() time.Duration {
	return time.Duration(f.DurationSeconds * float64(time.Second))
}

// HitBox is one damage window anchored to a skeleton bone.
type HitBox struct {
	// Anchor is the bone the box follows.
	Anchor     string         `yaml:"anchor"`
	Activation ActivationMode `yaml:"activation"`
	// OpenFrame/CloseFrame bound the window when Activation is "forced".
	OpenFrame  float64 `yaml:"open_frame"`
	CloseFrame float64 `yaml:"close_frame"`
	// BaseDamage is the flat damage contribution of a connected hit.
	BaseDamage float64 `yaml:"base_damage"`
	// KnocksDown marks hits that force a knock-down reaction.
	KnocksDown bool `yaml:"knocks_down"`
}

// InputBinding maps a classified touch gesture onto an action.
type InputBinding struct {
	// Gesture is "tap", "swipe", or "hold".
	Gesture string `yaml:"gesture"`
	// Region is the classified touch target: "empty", "self", or "enemy".
	Region string `yaml:"region"`
	// SwipeDirection restricts swipe bindings: "left", "right", "up",
	// "down", or empty for any direction.
	SwipeDirection string `yaml:"swipe_direction"`
}

// Action is one combat move. Loaded instances are shared immutable
// templates; call Clone before binding a target at play time.
type Action struct {
	Name string `yaml:"name"`
	// Sequences are the alternative animation sequence names; one is chosen
	// at random when the action plays.
	Sequences []string `yaml:"sequences"`
	// FPS converts frame-based timings to seconds. Zero means DefaultFPS.
	FPS      float64  `yaml:"fps"`
	HitBoxes []HitBox `yaml:"hit_boxes"`
	Forces   []Force  `yaml:"forces"`
	// Cancelable allows another action to replace this one mid-flight.
	Cancelable bool `yaml:"cancelable"`
	// OverrideCancelable lets this action interrupt a non-cancelable one.
	OverrideCancelable bool `yaml:"override_cancelable"`
	// Links are follow-up action names admitted as combo continuations.
	Links []string `yaml:"links"`
	// StartSounds are alternative one-shot sounds; one is chosen at random.
	StartSounds []string `yaml:"start_sounds"`
	// Binding is the optional touch binding for player characters.
	Binding *InputBinding `yaml:"binding"`

	// Runtime binding, set on clones only.
	TargetID       string    `yaml:"-"`
	TargetPosition geom.Vec2 `yaml:"-"`
	HasTarget      bool      `yaml:"-"`
}

// FrameSeconds converts a frame offset on this action to seconds.
func (a *Action) FrameSeconds(frame float64) time.Duration {
	fps := a.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Duration(frame / fps * float64(time.Second))
}

// Clone returns a runtime copy of the template with its own slices, ready
// for target binding.
//
// Postcondition: Mutating the clone never affects the template.
func (a *Action) Clone() *Action {
	cp := *a
	cp.Sequences = append([]string(nil), a.Sequences...)
	cp.HitBoxes = append([]HitBox(nil), a.HitBoxes...)
	cp.Forces = append([]Force(nil), a.Forces...)
	cp.Links = append([]string(nil), a.Links...)
	cp.StartSounds = append([]string(nil), a.StartSounds...)
	if a.Binding != nil {
		b := *a.Binding
		cp.Binding = &b
	}
	return &cp
}

// Validate checks the template's authoring invariants.
//
// Precondition: a must not be nil.
// Postcondition: Returns nil iff the template is well-formed; returns an
// error naming the first violation otherwise.
func (a *Action) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("action: name must not be empty")
	}
	if len(a.Sequences) == 0 {
		return fmt.Errorf("action %q: at least one animation sequence is required", a.Name)
	}
	if a.FPS < 0 {
		return fmt.Errorf("action %q: fps must not be negative", a.Name)
	}
	for i, hb := range a.HitBoxes {
		if hb.Anchor == "" {
			return fmt.Errorf("action %q: hit box %d: anchor must not be empty", a.Name, i)
		}
		switch hb.Activation {
		case ActivationTimeline:
		case ActivationForced:
			if hb.CloseFrame < hb.OpenFrame {
				return fmt.Errorf("action %q: hit box %d: close_frame must not precede open_frame", a.Name, i)
			}
		default:
			return fmt.Errorf("action %q: hit box %d: unknown activation %q", a.Name, i, hb.Activation)
		}
		if hb.BaseDamage < 0 {
			return fmt.Errorf("action %q: hit box %d: base_damage must not be negative", a.Name, i)
		}
	}
	for i, f := range a.Forces {
		switch f.Type {
		case ForceVelocity, ForcePosition:
		default:
			return fmt.Errorf("action %q: force %d: unknown type %q", a.Name, i, f.Type)
		}
		switch f.Start.Mode {
		case TimingFrames:
			if f.Start.Frame < 0 {
				return fmt.Errorf("action %q: force %d: start frame must not be negative", a.Name, i)
			}
		case TimingAwait:
			if f.Start.Await == "" {
				return fmt.Errorf("action %q: force %d: await animation name must not be empty", a.Name, i)
			}
		default:
			return fmt.Errorf("action %q: force %d: unknown timing mode %q", a.Name, i, f.Start.Mode)
		}
		if f.DurationSeconds < 0 {
			return fmt.Errorf("action %q: force %d: duration_seconds must not be negative", a.Name, i)
		}
	}
	if a.Binding != nil {
		switch a.Binding.Gesture {
		case "tap", "swipe", "hold":
		default:
			return fmt.Errorf("action %q: binding: unknown gesture %q", a.Name, a.Binding.Gesture)
		}
		switch a.Binding.Region {
		case "empty", "self", "enemy":
		default:
			return fmt.Errorf("action %q: binding: unknown region %q", a.Name, a.Binding.Region)
		}
	}
	return nil
}

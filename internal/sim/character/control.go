package character

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/brawler/internal/sim/action"
	"github.com/cory-johannsen/brawler/internal/sim/event"
	"github.com/cory-johannsen/brawler/internal/sim/geom"
)

// forceState is the countdown bookkeeping for one pending or active force.
// Timed waits are stored as remaining-time fields advanced by Update, never
// as detached timers, so cancelling the owning action cancels them all.
type forceState struct {
	force  action.Force
	owner  *action.Action
	// delay counts down to the force start for frame-timed forces.
	delay time.Duration
	// awaiting names the animation whose completion starts await-timed
	// forces; empty once started.
	awaiting string
	active   bool
	// remaining counts down the active duration.
	remaining time.Duration
	// spent marks a force that has run to completion so it never restarts.
	spent bool
}

// hitBoxState is the countdown bookkeeping for one hit box window.
type hitBoxState struct {
	open bool
	// openIn/closeIn drive forced-frame windows; timeline windows are
	// toggled by the animation collaborator instead.
	openIn  time.Duration
	closeIn time.Duration
	forced  bool
}

// TouchInfo is one classified touch event delivered by the input
// collaborator.
type TouchInfo struct {
	// Gesture is "tap", "swipe", or "hold".
	Gesture string
	// Pressed is the character under the touch, or nil for empty space.
	Pressed *Character
	// SwipeDirection is "left", "right", "up", or "down" for swipes.
	SwipeDirection string
	Position       geom.Vec2
}

// Control is the action-execution state machine: at most one action in
// flight, at most one queued behind it.
//
// Invariant: queued is only promoted when the in-flight action completes
// naturally; cancellation discards it.
type Control struct {
	owner *Character

	actions map[string]*action.Action

	current *action.Action
	queued  *action.Action

	sequenceIndex int

	forces   []*forceState
	hitBoxes []*hitBoxState

	actionEvents event.Feed[string]

	logger *zap.Logger
}

func newControl(owner *Character, actions map[string]*action.Action, logger *zap.Logger) *Control {
	set := make(map[string]*action.Action, len(actions))
	for name, a := range actions {
		set[name] = a
	}
	return &Control{
		owner:   owner,
		actions: set,
		logger:  logger,
	}
}

// CurrentAction returns the in-flight action, or nil when idle.
func (c *Control) CurrentAction() *action.Action { return c.current }

// QueuedAction returns the action waiting for promotion, or nil.
func (c *Control) QueuedAction() *action.Action { return c.queued }

// Action returns the named template from the character's action set.
func (c *Control) Action(name string) (*action.Action, bool) {
	a, ok := c.actions[name]
	return a, ok
}

// OnActionEvent subscribes fn to named action events (force on-complete
// hooks).
func (c *Control) OnActionEvent(fn func(string)) event.Subscription {
	return c.actionEvents.Subscribe(fn)
}

// OffActionEvent detaches an action-event subscriber.
func (c *Control) OffActionEvent(sub event.Subscription) {
	c.actionEvents.Unsubscribe(sub)
}

// PerformAction attempts to start tmpl against target (which may be nil for
// untargeted moves). Admission requires an idle control, a cancelable
// in-flight action, an overriding new action, or a declared combo link from
// the in-flight action. Otherwise the action is queued, replacing any
// previously queued one, and promoted only on natural completion.
//
// Precondition: tmpl must be a validated template; a dead owner makes this
// a no-op.
// Postcondition: Returns true iff the action was admitted immediately.
func (c *Control) PerformAction(tmpl *action.Action, target *Character, targetPos geom.Vec2) bool {
	if tmpl == nil || c.owner.Stats.IsDead() {
		return false
	}

	bound := tmpl.Clone()
	bound.TargetPosition = targetPos
	if target != nil {
		bound.TargetID = target.ID
		bound.HasTarget = true
	}

	if !c.admits(tmpl) {
		c.queued = bound
		return false
	}

	if c.current != nil {
		c.teardownCurrent(false)
	}
	c.start(bound)
	return true
}

// admits reports whether tmpl may start immediately.
func (c *Control) admits(tmpl *action.Action) bool {
	if c.current == nil {
		return true
	}
	if c.current.Cancelable || tmpl.OverrideCancelable {
		return true
	}
	for _, link := range c.current.Links {
		if link == tmpl.Name {
			return true
		}
	}
	return false
}

func (c *Control) start(bound *action.Action) {
	c.sequenceIndex = c.owner.animator.PlaySequence(c.owner.ID, bound.Sequences)

	c.forces = c.forces[:0]
	for _, f := range bound.Forces {
		fs := &forceState{force: f, owner: bound}
		switch f.Start.Mode {
		case action.TimingFrames:
			fs.delay = bound.FrameSeconds(f.Start.Frame)
		case action.TimingAwait:
			fs.awaiting = f.Start.Await
		}
		c.forces = append(c.forces, fs)
	}

	c.hitBoxes = c.hitBoxes[:0]
	for _, hb := range bound.HitBoxes {
		hs := &hitBoxState{}
		if hb.Activation == action.ActivationForced {
			hs.forced = true
			hs.openIn = bound.FrameSeconds(hb.OpenFrame)
			hs.closeIn = bound.FrameSeconds(hb.CloseFrame)
		}
		c.hitBoxes = append(c.hitBoxes, hs)
	}

	if n := len(bound.StartSounds); n > 0 {
		c.owner.audio.PlaySound(c.owner.ID, bound.StartSounds[c.owner.sampler.Pick(n)])
	}

	c.current = bound
	c.logger.Debug("action started",
		zap.String("character", c.owner.Name),
		zap.String("action", bound.Name),
		zap.Int("sequence", c.sequenceIndex),
	)
}

// Update advances force and hit-box countdowns by dt.
func (c *Control) Update(dt time.Duration) {
	if c.current == nil {
		return
	}

	for _, fs := range c.forces {
		if fs.active {
			fs.remaining -= dt
			if fs.remaining <= 0 {
				c.endForce(fs)
			}
			continue
		}
		if fs.spent || fs.awaiting != "" {
			continue
		}
		fs.delay -= dt
		if fs.delay <= 0 {
			c.applyForce(fs)
		}
	}

	for _, hs := range c.hitBoxes {
		if !hs.forced {
			continue
		}
		if !hs.open {
			hs.openIn -= dt
			if hs.openIn <= 0 && hs.closeIn > 0 {
				hs.open = true
			}
		}
		if hs.open {
			hs.closeIn -= dt
			if hs.closeIn <= 0 {
				hs.open = false
				hs.forced = false // window spent
			}
		}
	}
}

func (c *Control) applyForce(fs *forceState) {
	fs.active = true
	fs.remaining = fs.force.Duration()

	dir := fs.owner.TargetPosition.Sub(c.owner.Position).Normalized()
	switch fs.force.Type {
	case action.ForceVelocity:
		c.owner.mover.SetVelocity(c.owner.ID, dir.Scale(fs.force.Speed), fs.force.Duration())
	case action.ForcePosition:
		c.owner.mover.MoveTo(c.owner.ID, fs.owner.TargetPosition, fs.force.Duration(), dir)
	}

	if fs.remaining <= 0 {
		c.endForce(fs)
	}
}

func (c *Control) endForce(fs *forceState) {
	fs.active = false
	fs.spent = true
	fs.remaining = 0
	c.owner.mover.Stop(c.owner.ID)
	if fs.force.OnComplete != "" {
		c.actionEvents.Publish(fs.force.OnComplete)
	}
}

// OnAnimationComplete signals natural completion of the in-flight action's
// animation: hit boxes close, the action clears, and the queued action, if
// any, is promoted.
func (c *Control) OnAnimationComplete() {
	if c.current == nil {
		return
	}
	c.teardownCurrent(false)
	if next := c.queued; next != nil {
		c.queued = nil
		c.start(next)
	}
}

// OnMoveTargetReached signals that the movement collaborator delivered the
// character to a position force's destination before the countdown elapsed.
// The force ends now instead of running out its duration.
func (c *Control) OnMoveTargetReached() {
	for _, fs := range c.forces {
		if fs.active && fs.force.Type == action.ForcePosition {
			c.endForce(fs)
		}
	}
}

// OnAnimationEvent starts any await-timed forces waiting on the named
// animation.
func (c *Control) OnAnimationEvent(name string) {
	for _, fs := range c.forces {
		if !fs.active && fs.awaiting == name {
			fs.awaiting = ""
			c.applyForce(fs)
		}
	}
}

// OnHitBoxWindow toggles a timeline-driven hit box window. An index outside
// the current action's hit boxes is an authoring mistake: logged and
// ignored.
func (c *Control) OnHitBoxWindow(index int, open bool) {
	if c.current == nil {
		return
	}
	if index < 0 || index >= len(c.hitBoxes) {
		c.logger.Error("hit box index out of range",
			zap.String("character", c.owner.Name),
			zap.String("action", c.current.Name),
			zap.Int("index", index),
		)
		return
	}
	c.hitBoxes[index].open = open
}

// HitBoxActive reports whether the in-flight action's hit box at index is
// currently open.
func (c *Control) HitBoxActive(index int) bool {
	if index < 0 || index >= len(c.hitBoxes) {
		return false
	}
	return c.hitBoxes[index].open
}

// ActiveHitBoxes returns the currently open hit boxes of the in-flight
// action. The host uses this to deliver connected hits.
func (c *Control) ActiveHitBoxes() []action.HitBox {
	if c.current == nil {
		return nil
	}
	var open []action.HitBox
	for i, hs := range c.hitBoxes {
		if hs.open {
			open = append(open, c.current.HitBoxes[i])
		}
	}
	return open
}

// CancelCurrentAction aborts the in-flight action: animation stopped, hit
// boxes closed, pending forces discarded, and the queued action dropped.
// Idle controls are unaffected.
//
// Postcondition: CurrentAction() == nil and QueuedAction() == nil.
func (c *Control) CancelCurrentAction() {
	if c.current != nil {
		c.teardownCurrent(true)
	}
	c.queued = nil
}

// teardownCurrent clears the in-flight action and all of its scheduled side
// effects. When cancelled (as opposed to replaced or completed) the
// animation collaborator is told to stop playback too.
func (c *Control) teardownCurrent(cancelled bool) {
	if cancelled {
		c.owner.animator.Stop(c.owner.ID)
	}
	for _, fs := range c.forces {
		if fs.active {
			c.owner.mover.Stop(c.owner.ID)
			break
		}
	}
	c.forces = c.forces[:0]
	c.hitBoxes = c.hitBoxes[:0]
	c.current = nil
}

// OnTouch classifies the touched region (empty space, self, or enemy) and
// performs the first bound action matching the gesture. Unbound touches are
// soft failures.
//
// Postcondition: Returns true iff a bound action was admitted or queued.
func (c *Control) OnTouch(touch TouchInfo) bool {
	region := "empty"
	switch {
	case touch.Pressed == nil:
	case touch.Pressed == c.owner:
		region = "self"
	default:
		region = "enemy"
	}

	tmpl := c.boundAction(touch.Gesture, region, touch.SwipeDirection)
	if tmpl == nil {
		return false
	}

	target := touch.Pressed
	pos := touch.Position
	if target != nil {
		pos = target.Position
	}
	c.PerformAction(tmpl, target, pos)
	return true
}

func (c *Control) boundAction(gesture, region, swipeDir string) *action.Action {
	var names []string
	for name := range c.actions {
		names = append(names, name)
	}
	// Stable resolution order regardless of map iteration.
	sort.Strings(names)
	for _, name := range names {
		a := c.actions[name]
		b := a.Binding
		if b == nil || b.Gesture != gesture || b.Region != region {
			continue
		}
		if b.Gesture == "swipe" && b.SwipeDirection != "" && b.SwipeDirection != swipeDir {
			continue
		}
		return a
	}
	return nil
}

package bappa

// Parent holds the parent Entity of the entity it is attached to.
// Hierarchy is modeled as components containing Entity values, never as
// owning references, so a despawned parent leaves children with a
// stale-but-safe handle rather than a dangling pointer (spec.md §9.3,
// "Cyclic references (parent/child entities)").
type Parent struct {
	Entity Entity
}

// Children holds the ordered list of an entity's direct children. A
// maintenance system is responsible for keeping Parent/Children pairs
// consistent; World itself does not enforce the relationship.
type Children struct {
	Entities []Entity
}

// Name is an optional, human-readable label for diagnostics and
// editor/tooling display; it has no effect on archetype identity beyond
// the usual component-set rules.
type Name struct {
	Value string
}

// InputState is the engine's input resource: a thin destination for the
// host's event pump to push key/button/axis state into across the FFI
// boundary (spec.md §6.1, "Input subsystem — thin pass-through from
// host's event pump into the engine's input resource"). The core never
// reads a platform event queue itself; the host does, and writes here.
type InputState struct {
	keys   map[uint32]bool
	justOn map[uint32]bool
}

// NewInputState returns an empty InputState.
func NewInputState() InputState {
	return InputState{keys: make(map[uint32]bool), justOn: make(map[uint32]bool)}
}

// SetKey records the host-reported pressed state for keyCode.
func (s *InputState) SetKey(keyCode uint32, pressed bool) {
	if s.keys == nil {
		s.keys = make(map[uint32]bool)
	}
	if pressed && !s.keys[keyCode] {
		if s.justOn == nil {
			s.justOn = make(map[uint32]bool)
		}
		s.justOn[keyCode] = true
	}
	s.keys[keyCode] = pressed
}

// Pressed reports whether keyCode is currently held down.
func (s *InputState) Pressed(keyCode uint32) bool {
	return s.keys[keyCode]
}

// JustPressed reports whether keyCode transitioned to pressed since the
// last ClearJustPressed call.
func (s *InputState) JustPressed(keyCode uint32) bool {
	return s.justOn[keyCode]
}

// ClearJustPressed resets the just-pressed edge tracking. No system calls
// it; the host triggers it through package ffi's
// bappa_input_clear_just_pressed.
func (s *InputState) ClearJustPressed() {
	for k := range s.justOn {
		delete(s.justOn, k)
	}
}

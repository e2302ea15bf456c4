// Package components defines ECS components for the simulation.
package components

import "github.com/jakecoffman/cp"

// Body links an entity to its rigid body in the physics space.
// The body owns the authoritative position; nothing else caches it.
type Body struct {
	Body   *cp.Body
	Shapes []*cp.Shape
	Static bool
}

// Constraint links an entity to a constraint in the physics space.
type Constraint struct {
	Constraint *cp.Constraint
	Kind       ConstraintKind
}

// ConstraintKind identifies the constraint flavor.
type ConstraintKind uint8

const (
	ConstraintPin ConstraintKind = iota
	ConstraintRotaryLimit
)

// Owner tags an entity with the ragdoll (or other structure) that created it.
// Zero means the entity belongs to the arena itself, e.g. the ground.
type Owner struct {
	ID uint32
}

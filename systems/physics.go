// Package systems contains ECS systems for the simulation.
package systems

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ragdoll/components"
	"github.com/pthm-cable/ragdoll/config"
)

// Errors returned by the physics arena.
var (
	ErrInvalidBody       = errors.New("invalid body parameters")
	ErrInvalidShape      = errors.New("invalid shape parameters")
	ErrInvalidConstraint = errors.New("invalid constraint parameters")
	ErrUnknownEntity     = errors.New("entity has no body")
)

// Bounds represents the simulation bounds.
type Bounds struct {
	Width, Height float64
}

// Center returns the middle of the bounds.
func (b Bounds) Center() cp.Vector {
	return cp.Vector{X: b.Width / 2, Y: b.Height / 2}
}

// ShapeKind selects the collision geometry attached by AddShape.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeBox
)

// ShapeSpec describes a collision shape.
// Group is the collision-filter group: shapes sharing a non-zero group never
// collide with each other. Group 0 collides with everything.
type ShapeSpec struct {
	Kind          ShapeKind
	Radius        float64 // circle
	Width, Height float64 // box
	Group         uint
	Friction      float64
	Elasticity    float64
	Density       float64 // informational; explicit body mass takes precedence
}

// PhysicsSystem owns every rigid body and constraint of a simulation run.
// Bodies and constraints are ECS entities; callers hold ecs.Entity handles
// and never keep references to engine objects.
type PhysicsSystem struct {
	world  *ecs.World
	space  *cp.Space
	bounds Bounds
	dt     float64
	steps  int
	nextID uint32

	bodyMapper       *ecs.Map2[components.Body, components.Owner]
	constraintMapper *ecs.Map2[components.Constraint, components.Owner]
	bodyMap          *ecs.Map[components.Body]
	constraintMap    *ecs.Map[components.Constraint]
	bodyFilter       *ecs.Filter1[components.Body]
	ownerFilter      *ecs.Filter1[components.Owner]
}

// NewPhysicsSystem creates a new physics system with gravity and solver
// settings taken from params.
func NewPhysicsSystem(w *ecs.World, bounds Bounds, params config.PhysicsConfig) *PhysicsSystem {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: params.GravityX, Y: params.GravityY})
	if params.Iterations > 0 {
		space.Iterations = uint(params.Iterations)
	}

	dt := 1.0 / 60.0
	if params.TickRate > 0 {
		dt = 1.0 / float64(params.TickRate)
	}

	return &PhysicsSystem{
		world:            w,
		space:            space,
		bounds:           bounds,
		dt:               dt,
		bodyMapper:       ecs.NewMap2[components.Body, components.Owner](w),
		constraintMapper: ecs.NewMap2[components.Constraint, components.Owner](w),
		bodyMap:          ecs.NewMap[components.Body](w),
		constraintMap:    ecs.NewMap[components.Constraint](w),
		bodyFilter:       ecs.NewFilter1[components.Body](w),
		ownerFilter:      ecs.NewFilter1[components.Owner](w),
	}
}

// World returns the ECS world holding the arena's entities.
func (s *PhysicsSystem) World() *ecs.World { return s.world }

// Bounds returns the arena bounds.
func (s *PhysicsSystem) Bounds() Bounds { return s.bounds }

// Center returns the arena center, the point ragdolls are scored against.
func (s *PhysicsSystem) Center() cp.Vector { return s.bounds.Center() }

// DT returns the fixed step used by Update.
func (s *PhysicsSystem) DT() float64 { return s.dt }

// Iterations returns the solver iterations per step.
func (s *PhysicsSystem) Iterations() uint { return s.space.Iterations }

// Steps returns how many times the world has been advanced.
func (s *PhysicsSystem) Steps() int { return s.steps }

// NextOwnerID allocates an owner ID for a new structure in this arena.
// IDs start at 1; 0 is reserved for arena-level bodies.
func (s *PhysicsSystem) NextOwnerID() uint32 {
	s.nextID++
	return s.nextID
}

// CreateStaticBody adds an immovable body at pos.
func (s *PhysicsSystem) CreateStaticBody(owner uint32, pos cp.Vector) (ecs.Entity, error) {
	if !finiteVec(pos) {
		return ecs.Entity{}, fmt.Errorf("static body at %v: %w", pos, ErrInvalidBody)
	}
	body := cp.NewStaticBody()
	body.SetPosition(pos)
	s.space.AddBody(body)

	return s.bodyMapper.NewEntity(
		&components.Body{Body: body, Static: true},
		&components.Owner{ID: owner},
	), nil
}

// CreateDynamicBody adds a body with the given mass and moment of inertia at pos.
func (s *PhysicsSystem) CreateDynamicBody(owner uint32, mass, moment float64, pos cp.Vector) (ecs.Entity, error) {
	if !positiveFinite(mass) || !positiveFinite(moment) {
		return ecs.Entity{}, fmt.Errorf("mass %v, moment %v: %w", mass, moment, ErrInvalidBody)
	}
	if !finiteVec(pos) {
		return ecs.Entity{}, fmt.Errorf("dynamic body at %v: %w", pos, ErrInvalidBody)
	}
	body := cp.NewBody(mass, moment)
	body.SetPosition(pos)
	s.space.AddBody(body)

	return s.bodyMapper.NewEntity(
		&components.Body{Body: body},
		&components.Owner{ID: owner},
	), nil
}

// AddShape attaches a collision shape to the body entity e.
func (s *PhysicsSystem) AddShape(e ecs.Entity, spec ShapeSpec) error {
	b, err := s.body(e)
	if err != nil {
		return err
	}
	if spec.Friction < 0 || spec.Elasticity < 0 || spec.Density < 0 {
		return fmt.Errorf("negative material %+v: %w", spec, ErrInvalidShape)
	}

	var shape *cp.Shape
	switch spec.Kind {
	case ShapeCircle:
		if !positiveFinite(spec.Radius) {
			return fmt.Errorf("circle radius %v: %w", spec.Radius, ErrInvalidShape)
		}
		shape = cp.NewCircle(b.Body, spec.Radius, cp.Vector{})
	case ShapeBox:
		if !positiveFinite(spec.Width) || !positiveFinite(spec.Height) {
			return fmt.Errorf("box %vx%v: %w", spec.Width, spec.Height, ErrInvalidShape)
		}
		shape = cp.NewBox(b.Body, spec.Width, spec.Height, 0)
	default:
		return fmt.Errorf("shape kind %d: %w", spec.Kind, ErrInvalidShape)
	}

	shape.SetElasticity(spec.Elasticity)
	shape.SetFriction(spec.Friction)
	shape.SetFilter(cp.NewShapeFilter(spec.Group, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES))
	s.space.AddShape(shape)

	b.Shapes = append(b.Shapes, shape)
	return nil
}

// AddPinConstraint keeps the anchor points of a and b at the distance they
// have when the constraint is created.
func (s *PhysicsSystem) AddPinConstraint(owner uint32, a, b ecs.Entity, anchorA, anchorB cp.Vector) (ecs.Entity, error) {
	ba, bb, err := s.bodyPair(a, b)
	if err != nil {
		return ecs.Entity{}, err
	}
	c := s.space.AddConstraint(cp.NewPinJoint(ba, bb, anchorA, anchorB))
	return s.constraintMapper.NewEntity(
		&components.Constraint{Constraint: c, Kind: components.ConstraintPin},
		&components.Owner{ID: owner},
	), nil
}

// AddRotaryLimitConstraint clamps the relative rotation of b to a within [min, max].
func (s *PhysicsSystem) AddRotaryLimitConstraint(owner uint32, a, b ecs.Entity, min, max float64) (ecs.Entity, error) {
	if math.IsNaN(min) || math.IsNaN(max) || min > max {
		return ecs.Entity{}, fmt.Errorf("rotation limit [%v, %v]: %w", min, max, ErrInvalidConstraint)
	}
	ba, bb, err := s.bodyPair(a, b)
	if err != nil {
		return ecs.Entity{}, err
	}
	c := s.space.AddConstraint(cp.NewRotaryLimitJoint(ba, bb, min, max))
	return s.constraintMapper.NewEntity(
		&components.Constraint{Constraint: c, Kind: components.ConstraintRotaryLimit},
		&components.Owner{ID: owner},
	), nil
}

// ApplyForceAtWorldPoint adds a world-space force to e for the next step only.
func (s *PhysicsSystem) ApplyForceAtWorldPoint(e ecs.Entity, force, point cp.Vector) error {
	b, err := s.body(e)
	if err != nil {
		return err
	}
	b.Body.ApplyForceAtWorldPoint(force, point)
	return nil
}

// Position returns the world position of body entity e.
// e must be a live body entity.
func (s *PhysicsSystem) Position(e ecs.Entity) cp.Vector {
	return s.bodyMap.Get(e).Body.Position()
}

// Velocity returns the linear velocity of body entity e.
func (s *PhysicsSystem) Velocity(e ecs.Entity) cp.Vector {
	return s.bodyMap.Get(e).Body.Velocity()
}

// SetPosition teleports dynamic body entity e, keeping its velocity.
func (s *PhysicsSystem) SetPosition(e ecs.Entity, pos cp.Vector) error {
	b, err := s.body(e)
	if err != nil {
		return err
	}
	if b.Static || !finiteVec(pos) {
		return fmt.Errorf("moving body to %v: %w", pos, ErrInvalidBody)
	}
	b.Body.SetPosition(pos)
	return nil
}

// Update advances the world by one fixed step.
func (s *PhysicsSystem) Update() {
	s.Step(s.dt)
}

// Step advances the world by dt seconds.
func (s *PhysicsSystem) Step(dt float64) {
	s.space.Step(dt)
	s.steps++
}

// KineticEnergy sums the translational kinetic energy of all dynamic bodies.
func (s *PhysicsSystem) KineticEnergy() float64 {
	var total float64
	query := s.bodyFilter.Query()
	for query.Next() {
		b := query.Get()
		if b.Static {
			continue
		}
		v := b.Body.Velocity()
		total += 0.5 * b.Body.Mass() * v.Dot(v)
	}
	return total
}

// RemoveEntity removes e and its engine objects from the world.
// Constraints attached to a body must be removed before the body.
func (s *PhysicsSystem) RemoveEntity(e ecs.Entity) {
	if !s.world.Alive(e) {
		return
	}
	if s.constraintMap.Has(e) {
		s.space.RemoveConstraint(s.constraintMap.Get(e).Constraint)
	}
	if s.bodyMap.Has(e) {
		b := s.bodyMap.Get(e)
		for _, shape := range b.Shapes {
			s.space.RemoveShape(shape)
		}
		s.space.RemoveBody(b.Body)
	}
	s.world.RemoveEntity(e)
}

// RemoveOwner removes every entity created for owner.
func (s *PhysicsSystem) RemoveOwner(owner uint32) int {
	var constraints, bodies []ecs.Entity

	query := s.ownerFilter.Query()
	for query.Next() {
		if query.Get().ID != owner {
			continue
		}
		e := query.Entity()
		if s.constraintMap.Has(e) {
			constraints = append(constraints, e)
		} else {
			bodies = append(bodies, e)
		}
	}

	for _, e := range constraints {
		s.RemoveEntity(e)
	}
	for _, e := range bodies {
		s.RemoveEntity(e)
	}
	return len(constraints) + len(bodies)
}

// body resolves e to its Body component.
func (s *PhysicsSystem) body(e ecs.Entity) (*components.Body, error) {
	if !s.world.Alive(e) || !s.bodyMap.Has(e) {
		return nil, fmt.Errorf("entity %v: %w", e, ErrUnknownEntity)
	}
	return s.bodyMap.Get(e), nil
}

func (s *PhysicsSystem) bodyPair(a, b ecs.Entity) (*cp.Body, *cp.Body, error) {
	if a == b {
		return nil, nil, fmt.Errorf("constraint between %v and itself: %w", a, ErrInvalidConstraint)
	}
	ba, err := s.body(a)
	if err != nil {
		return nil, nil, err
	}
	bb, err := s.body(b)
	if err != nil {
		return nil, nil, err
	}
	return ba.Body, bb.Body, nil
}

func positiveFinite(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}

func finiteVec(v cp.Vector) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

package ragdoll

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ragdoll/components"
	"github.com/pthm-cable/ragdoll/systems"
)

// DefaultStrength is the actuation force cap of a bone.
const DefaultStrength = 10000.0

// Bone links a proximal and a distal joint with a pin and a rotation limit.
// It is also the actuation unit: Move pushes the distal joint along the bone.
type Bone struct {
	Name     components.BoneName
	Proximal Joint
	Distal   Joint
	MinRot   float64
	MaxRot   float64
	Strength float64

	Pin   ecs.Entity
	Limit ecs.Entity

	sys       *systems.PhysicsSystem
	lastForce cp.Vector
}

// NewBone pins a to b at zero anchor offsets and limits b's rotation
// relative to a to [minRot, maxRot].
func NewBone(sys *systems.PhysicsSystem, owner uint32, name components.BoneName, a, b Joint,
	minRot, maxRot, strength float64) (*Bone, error) {
	pin, err := sys.AddPinConstraint(owner, a.Entity, b.Entity, cp.Vector{}, cp.Vector{})
	if err != nil {
		return nil, fmt.Errorf("bone %s pin: %w", name, err)
	}
	limit, err := sys.AddRotaryLimitConstraint(owner, a.Entity, b.Entity, minRot, maxRot)
	if err != nil {
		sys.RemoveEntity(pin)
		return nil, fmt.Errorf("bone %s limit: %w", name, err)
	}

	return &Bone{
		Name:     name,
		Proximal: a,
		Distal:   b,
		MinRot:   minRot,
		MaxRot:   maxRot,
		Strength: strength,
		Pin:      pin,
		Limit:    limit,
		sys:      sys,
	}, nil
}

// Move applies force along the proximal-to-distal direction at the distal
// joint for the current tick. The magnitude is clamped to [-Strength, Strength].
// Coincident joints and NaN input produce no force. Returns the applied force.
func (b *Bone) Move(force float64) cp.Vector {
	b.lastForce = cp.Vector{}
	if math.IsNaN(force) {
		return b.lastForce
	}
	force = math.Max(math.Min(force, b.Strength), -b.Strength)

	pa := b.Proximal.Position()
	pb := b.Distal.Position()
	d := pb.Sub(pa)
	length := d.Length()
	if length == 0 {
		return b.lastForce
	}

	applied := d.Mult(force / length)
	if err := b.sys.ApplyForceAtWorldPoint(b.Distal.Entity, applied, pb); err != nil {
		return b.lastForce
	}
	b.lastForce = applied
	return applied
}

// LastForce returns the force applied by the most recent Move.
func (b *Bone) LastForce() cp.Vector {
	return b.lastForce
}

// clearForce marks the bone as unactuated for the current tick.
func (b *Bone) clearForce() {
	b.lastForce = cp.Vector{}
}

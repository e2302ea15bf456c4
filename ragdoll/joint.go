// Package ragdoll implements the articulated humanoid: joints, bones and the
// sense/act/score contract consumed by the evaluation loop.
package ragdoll

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ragdoll/components"
	"github.com/pthm-cable/ragdoll/config"
	"github.com/pthm-cable/ragdoll/systems"
)

// Joint is a point-mass landmark of the skeleton. It is a handle into the
// physics arena plus static metadata; the position lives in the engine.
type Joint struct {
	Entity ecs.Entity
	Name   components.JointName
	Mass   float64
	Radius float64
	Group  uint

	sys *systems.PhysicsSystem
}

// NewJoint creates a dynamic disc at pos with a circle shape in the given
// collision group. Joints sharing a group never collide with each other.
func NewJoint(sys *systems.PhysicsSystem, owner uint32, name components.JointName, pos cp.Vector,
	mass, radius float64, group uint, mat config.MaterialConfig) (Joint, error) {
	moment := cp.MomentForCircle(mass, 0, radius, cp.Vector{})
	e, err := sys.CreateDynamicBody(owner, mass, moment, pos)
	if err != nil {
		return Joint{}, fmt.Errorf("joint %s: %w", name, err)
	}

	err = sys.AddShape(e, systems.ShapeSpec{
		Kind:       systems.ShapeCircle,
		Radius:     radius,
		Group:      group,
		Friction:   mat.Friction,
		Elasticity: mat.Elasticity,
		Density:    mat.Density,
	})
	if err != nil {
		sys.RemoveEntity(e)
		return Joint{}, fmt.Errorf("joint %s: %w", name, err)
	}

	return Joint{
		Entity: e,
		Name:   name,
		Mass:   mass,
		Radius: radius,
		Group:  group,
		sys:    sys,
	}, nil
}

// Position returns the joint's current world position.
func (j Joint) Position() cp.Vector {
	return j.sys.Position(j.Entity)
}

// Velocity returns the joint's current linear velocity.
func (j Joint) Velocity() cp.Vector {
	return j.sys.Velocity(j.Entity)
}

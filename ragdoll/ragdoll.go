package ragdoll

import (
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/pthm-cable/ragdoll/components"
	"github.com/pthm-cable/ragdoll/config"
	"github.com/pthm-cable/ragdoll/systems"
)

// Actuation maps a controller output in [-1, 1] onto [-Strength, Strength].
const (
	actMin = -1.0
	actMax = 1.0
)

// poseWeight scales the summed pose deviation before averaging over joints.
const poseWeight = 5.0

// Params configures the construction of a ragdoll.
type Params struct {
	JointRadius float64
	Group       uint
	Material    config.MaterialConfig
	Strength    float64
}

// DefaultParams returns the stock humanoid parameters.
func DefaultParams() Params {
	return Params{
		JointRadius: 6,
		Group:       1,
		Material:    config.MaterialConfig{Elasticity: 0.5, Friction: 0.4, Density: 1},
		Strength:    DefaultStrength,
	}
}

// ParamsFromConfig reads the ragdoll section of cfg.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		JointRadius: cfg.Ragdoll.JointRadius,
		Group:       cfg.Ragdoll.Group,
		Material:    cfg.Ragdoll.Material,
		Strength:    cfg.Ragdoll.Strength,
	}
}

// Ragdoll is an 11-joint, 10-bone humanoid living in a physics arena.
type Ragdoll struct {
	ID uint32

	sys    *systems.PhysicsSystem
	spawn  cp.Vector
	joints [components.NumJoints]Joint
	bones  [components.NumBones]*Bone
	start  [components.NumJoints]cp.Vector

	mismatchWarned bool
}

// New builds a ragdoll whose hip is at (x, y). On error every body and
// constraint created so far is removed from the arena.
func New(sys *systems.PhysicsSystem, x, y float64, p Params) (*Ragdoll, error) {
	r := &Ragdoll{
		ID:    sys.NextOwnerID(),
		sys:   sys,
		spawn: cp.Vector{X: x, Y: y},
	}

	for i, spec := range components.Joints {
		name := components.JointName(i)
		offset := cp.Vector{X: spec.OffsetX, Y: spec.OffsetY}
		j, err := NewJoint(sys, r.ID, name, r.spawn.Add(offset), spec.Mass, p.JointRadius, p.Group, p.Material)
		if err != nil {
			sys.RemoveOwner(r.ID)
			return nil, fmt.Errorf("ragdoll %d: %w", r.ID, err)
		}
		r.joints[i] = j
		r.start[i] = offset
	}

	for i, spec := range components.Bones {
		b, err := NewBone(sys, r.ID, components.BoneName(i),
			r.joints[spec.Proximal], r.joints[spec.Distal],
			spec.MinRot, spec.MaxRot, p.Strength)
		if err != nil {
			sys.RemoveOwner(r.ID)
			return nil, fmt.Errorf("ragdoll %d: %w", r.ID, err)
		}
		r.bones[i] = b
	}

	return r, nil
}

// Spawn returns the hip position the ragdoll was built at.
func (r *Ragdoll) Spawn() cp.Vector { return r.spawn }

// Hip returns the current hip position.
func (r *Ragdoll) Hip() cp.Vector {
	return r.joints[components.Hip].Position()
}

// Joint returns the named joint.
func (r *Ragdoll) Joint(name components.JointName) Joint {
	return r.joints[name]
}

// Bone returns the named bone.
func (r *Ragdoll) Bone(name components.BoneName) *Bone {
	return r.bones[name]
}

// StartOffset returns the joint's offset from the hip at construction.
func (r *Ragdoll) StartOffset(name components.JointName) cp.Vector {
	return r.start[name]
}

// Sense returns the hip-relative position of every joint, flattened as
// x0, y0, x1, y1, ... in joint order.
func (r *Ragdoll) Sense() []float64 {
	return r.SenseInto(make([]float64, 0, components.NumSensors))
}

// SenseInto appends the sensor vector to dst and returns it.
func (r *Ragdoll) SenseInto(dst []float64) []float64 {
	hip := r.Hip()
	for i := range r.joints {
		rel := r.joints[i].Position().Sub(hip)
		dst = append(dst, rel.X, rel.Y)
	}
	return dst
}

// Act maps each controller output from [-1, 1] to [-Strength, Strength] and
// moves the corresponding bone. Bones without an output (short vector) or
// with a NaN output stay unactuated this tick; extra outputs are ignored.
// It reports whether forces had the expected length.
func (r *Ragdoll) Act(forces []float64) bool {
	for i, b := range r.bones {
		if i >= len(forces) {
			b.clearForce()
			continue
		}
		b.Move(LinearConv(forces[i], actMin, actMax, -b.Strength, b.Strength))
	}
	return len(forces) == components.NumActuators
}

// MarkMismatchWarned records that a length mismatch has been reported and
// returns whether it had already been reported before.
func (r *Ragdoll) MarkMismatchWarned() bool {
	warned := r.mismatchWarned
	r.mismatchWarned = true
	return warned
}

// Score rates the current posture. Higher is better; 0 is a ragdoll at rest
// pose with its hip on the arena center.
func (r *Ragdoll) Score() float64 {
	hip := r.Hip()

	var pose float64
	for i := range r.joints {
		rel := r.joints[i].Position().Sub(hip)
		pose -= rel.Distance(r.start[i])
	}
	pose *= poseWeight / float64(components.NumJoints)

	return pose - hip.Distance(r.sys.Center())
}

// Destroy removes the ragdoll's bodies and constraints from the arena.
func (r *Ragdoll) Destroy() {
	r.sys.RemoveOwner(r.ID)
}

// LinearConv linearly maps point from [pointMin, pointMax] to
// [transformMin, transformMax]. Out-of-range points extrapolate.
func LinearConv(point, pointMin, pointMax, transformMin, transformMax float64) float64 {
	return (point-pointMin)/(pointMax-pointMin)*(transformMax-transformMin) + transformMin
}

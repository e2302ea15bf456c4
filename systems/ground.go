package systems

import (
	"github.com/jakecoffman/cp"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ragdoll/config"
)

// AddGround creates the static floor spanning the arena width. The box is
// centered below y=0 so its top surface sits at g.Lift. It is outside every
// ragdoll collision group, so every joint collides with it.
func (s *PhysicsSystem) AddGround(g config.GroundConfig) (ecs.Entity, error) {
	pos := cp.Vector{X: s.bounds.Width / 2, Y: -g.Height/2 + g.Lift}
	e, err := s.CreateStaticBody(0, pos)
	if err != nil {
		return ecs.Entity{}, err
	}
	err = s.AddShape(e, ShapeSpec{
		Kind:       ShapeBox,
		Width:      s.bounds.Width,
		Height:     g.Height,
		Friction:   g.Friction,
		Elasticity: g.Elasticity,
	})
	if err != nil {
		s.RemoveEntity(e)
		return ecs.Entity{}, err
	}
	return e, nil
}

// GroundTop returns the y coordinate of the floor surface.
func GroundTop(g config.GroundConfig) float64 {
	return g.Lift
}

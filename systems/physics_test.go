package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ragdoll/config"
)

func newTestSystem(gravityY float64) *PhysicsSystem {
	return NewPhysicsSystem(ecs.NewWorld(), Bounds{Width: 800, Height: 600}, config.PhysicsConfig{
		TickRate:   60,
		GravityY:   gravityY,
		Iterations: 10,
	})
}

func addBall(t *testing.T, s *PhysicsSystem, owner uint32, pos cp.Vector, group uint) ecs.Entity {
	t.Helper()
	e, err := s.CreateDynamicBody(owner, 1, cp.MomentForCircle(1, 0, 6, cp.Vector{}), pos)
	if err != nil {
		t.Fatalf("CreateDynamicBody: %v", err)
	}
	if err := s.AddShape(e, ShapeSpec{Kind: ShapeCircle, Radius: 6, Group: group, Friction: 0.4, Elasticity: 0.5}); err != nil {
		t.Fatalf("AddShape: %v", err)
	}
	return e
}

func TestCenter(t *testing.T) {
	s := newTestSystem(0)
	c := s.Center()
	if c.X != 400 || c.Y != 300 {
		t.Errorf("Center() = %v, want (400, 300)", c)
	}
	if math.Abs(s.DT()-1.0/60.0) > 1e-12 {
		t.Errorf("DT() = %v, want 1/60", s.DT())
	}
}

func TestSolverIterations(t *testing.T) {
	tests := []struct {
		name       string
		iterations int
		want       uint
	}{
		{"configured", 25, 25},
		{"unset keeps engine default", 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewPhysicsSystem(ecs.NewWorld(), Bounds{Width: 800, Height: 600}, config.PhysicsConfig{
				TickRate:   60,
				Iterations: tt.iterations,
			})
			if got := s.Iterations(); got != tt.want {
				t.Errorf("Iterations() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCreateDynamicBodyRejectsInvalid(t *testing.T) {
	s := newTestSystem(0)
	tests := []struct {
		name         string
		mass, moment float64
		pos          cp.Vector
	}{
		{"zero mass", 0, 1, cp.Vector{}},
		{"negative mass", -1, 1, cp.Vector{}},
		{"nan moment", 1, math.NaN(), cp.Vector{}},
		{"infinite mass", math.Inf(1), 1, cp.Vector{}},
		{"nan position", 1, 1, cp.Vector{X: math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateDynamicBody(1, tt.mass, tt.moment, tt.pos)
			if !errors.Is(err, ErrInvalidBody) {
				t.Errorf("got %v, want ErrInvalidBody", err)
			}
		})
	}
}

func TestAddShapeErrors(t *testing.T) {
	s := newTestSystem(0)
	e := addBall(t, s, 1, cp.Vector{X: 10, Y: 10}, 1)

	if err := s.AddShape(e, ShapeSpec{Kind: ShapeCircle, Radius: 0}); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("zero radius: got %v, want ErrInvalidShape", err)
	}
	if err := s.AddShape(e, ShapeSpec{Kind: ShapeBox, Width: 10}); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("flat box: got %v, want ErrInvalidShape", err)
	}
	if err := s.AddShape(e, ShapeSpec{Kind: ShapeCircle, Radius: 1, Friction: -1}); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("negative friction: got %v, want ErrInvalidShape", err)
	}

	s.RemoveEntity(e)
	if err := s.AddShape(e, ShapeSpec{Kind: ShapeCircle, Radius: 1}); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("removed entity: got %v, want ErrUnknownEntity", err)
	}
}

func TestConstraintErrors(t *testing.T) {
	s := newTestSystem(0)
	a := addBall(t, s, 1, cp.Vector{X: 0, Y: 0}, 1)
	b := addBall(t, s, 1, cp.Vector{X: 20, Y: 0}, 1)

	if _, err := s.AddPinConstraint(1, a, a, cp.Vector{}, cp.Vector{}); !errors.Is(err, ErrInvalidConstraint) {
		t.Errorf("self pin: got %v, want ErrInvalidConstraint", err)
	}
	if _, err := s.AddRotaryLimitConstraint(1, a, b, 1, -1); !errors.Is(err, ErrInvalidConstraint) {
		t.Errorf("inverted limit: got %v, want ErrInvalidConstraint", err)
	}
}

func TestGravityPullsBodiesDown(t *testing.T) {
	s := newTestSystem(-981)
	e := addBall(t, s, 1, cp.Vector{X: 400, Y: 300}, 1)

	for i := 0; i < 30; i++ {
		s.Update()
	}

	if y := s.Position(e).Y; y >= 300 {
		t.Errorf("body did not fall: y = %v", y)
	}
	if s.Steps() != 30 {
		t.Errorf("Steps() = %d, want 30", s.Steps())
	}
	if s.KineticEnergy() <= 0 {
		t.Error("falling body should have kinetic energy")
	}
}

func TestForceLastsOneStep(t *testing.T) {
	s := newTestSystem(0)
	e := addBall(t, s, 1, cp.Vector{X: 100, Y: 100}, 1)

	if err := s.ApplyForceAtWorldPoint(e, cp.Vector{X: 60, Y: 0}, s.Position(e)); err != nil {
		t.Fatal(err)
	}
	s.Update()

	// v = F/m * dt for a unit mass
	want := 60.0 / 60.0
	if vx := s.Velocity(e).X; math.Abs(vx-want) > 1e-6 {
		t.Errorf("vx after one step = %v, want %v", vx, want)
	}

	s.Update()
	if vx := s.Velocity(e).X; math.Abs(vx-want) > 1e-6 {
		t.Errorf("force leaked into the next step: vx = %v, want %v", vx, want)
	}
}

func TestSameGroupDoesNotCollide(t *testing.T) {
	s := newTestSystem(0)
	a := addBall(t, s, 1, cp.Vector{X: 100, Y: 100}, 1)
	b := addBall(t, s, 1, cp.Vector{X: 104, Y: 100}, 1)

	for i := 0; i < 30; i++ {
		s.Update()
	}

	if d := s.Position(a).Distance(s.Position(b)); math.Abs(d-4) > 1e-9 {
		t.Errorf("overlapping same-group shapes moved apart: distance = %v, want 4", d)
	}
}

func TestDifferentGroupsCollide(t *testing.T) {
	s := newTestSystem(0)
	a := addBall(t, s, 1, cp.Vector{X: 100, Y: 100}, 1)
	b := addBall(t, s, 2, cp.Vector{X: 104, Y: 100}, 2)

	for i := 0; i < 30; i++ {
		s.Update()
	}

	if d := s.Position(a).Distance(s.Position(b)); d <= 4 {
		t.Errorf("overlapping shapes in different groups were not separated: distance = %v", d)
	}
}

func TestGroundStopsFallingBody(t *testing.T) {
	s := newTestSystem(-981)
	ground := config.GroundConfig{Height: 50, Lift: 5, Friction: 0.8}
	if _, err := s.AddGround(ground); err != nil {
		t.Fatalf("AddGround: %v", err)
	}
	e := addBall(t, s, 1, cp.Vector{X: 400, Y: 60}, 1)

	for i := 0; i < 300; i++ {
		s.Update()
	}

	y := s.Position(e).Y
	top := GroundTop(ground)
	if y < top+6-1 {
		t.Errorf("body sank into the ground: y = %v, surface at %v", y, top)
	}
	if y > top+6+1 {
		t.Errorf("body did not come to rest on the ground: y = %v", y)
	}
}

func TestPinKeepsDistance(t *testing.T) {
	s := newTestSystem(0)
	a := addBall(t, s, 1, cp.Vector{X: 100, Y: 100}, 1)
	b := addBall(t, s, 1, cp.Vector{X: 150, Y: 100}, 1)
	if _, err := s.AddPinConstraint(1, a, b, cp.Vector{}, cp.Vector{}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 60; i++ {
		if err := s.ApplyForceAtWorldPoint(b, cp.Vector{X: 0, Y: 500}, s.Position(b)); err != nil {
			t.Fatal(err)
		}
		s.Update()
	}

	if d := s.Position(a).Distance(s.Position(b)); math.Abs(d-50) > 2 {
		t.Errorf("pinned distance = %v, want 50", d)
	}
}

func TestRemoveOwner(t *testing.T) {
	s := newTestSystem(0)
	a := addBall(t, s, 7, cp.Vector{X: 0, Y: 0}, 1)
	b := addBall(t, s, 7, cp.Vector{X: 20, Y: 0}, 1)
	if _, err := s.AddPinConstraint(7, a, b, cp.Vector{}, cp.Vector{}); err != nil {
		t.Fatal(err)
	}
	other := addBall(t, s, 8, cp.Vector{X: 50, Y: 0}, 1)

	if n := s.RemoveOwner(7); n != 3 {
		t.Errorf("RemoveOwner removed %d entities, want 3", n)
	}
	if s.World().Alive(a) || s.World().Alive(b) {
		t.Error("owner 7 bodies still alive")
	}
	if !s.World().Alive(other) {
		t.Error("owner 8 body was removed")
	}

	// The space keeps stepping without the removed bodies
	s.Update()
}

func TestSetPositionRejectsStatic(t *testing.T) {
	s := newTestSystem(0)
	e, err := s.CreateStaticBody(0, cp.Vector{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetPosition(e, cp.Vector{X: 1}); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("got %v, want ErrInvalidBody", err)
	}
}

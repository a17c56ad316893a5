// Package config decodes declarative YAML presets into world.Settings
// and world.BodySettings, letting a host application author a starting
// simulation instead of constructing it purely in Go. Grounded on the
// teacher's own gopkg.in/yaml.v2 dependency, which g3n-engine's go.mod
// pulls in but (per the pack survey) never exercises with committed
// source — this is the first SPEC_FULL.md component able to use it.
package config

import (
	"fmt"
	"os"

	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/broadphase"
	"github.com/ironvale/physics3d/ccd"
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
	"github.com/ironvale/physics3d/solver"
	"github.com/ironvale/physics3d/world"
	"gopkg.in/yaml.v2"
)

// WorldPreset is the root document a world.yaml file decodes into: the
// layer registry, collision-enable table, solver/CCD tunables and the
// set of bodies to create once the world exists.
type WorldPreset struct {
	Gravity []float32 `yaml:"gravity"`

	BroadphaseLayers []uint8           `yaml:"broadphaseLayers"`
	ObjectLayers     []ObjectLayerSpec `yaml:"objectLayers"`
	CollisionPairs   [][2]uint8        `yaml:"collisionPairs"`

	Solver SolverPreset `yaml:"solver"`
	CCD    CCDPreset    `yaml:"ccd"`

	Bodies []BodyPreset `yaml:"bodies"`
}

// ObjectLayerSpec maps one object layer onto a broadphase bucket, per
// broadphase.LayerInterface.MapObjectToBroadphase.
type ObjectLayerSpec struct {
	Object     uint16 `yaml:"object"`
	Broadphase uint8  `yaml:"broadphase"`
}

// SolverPreset mirrors solver.Settings.
type SolverPreset struct {
	VelocityIterations int     `yaml:"velocityIterations"`
	PositionIterations int     `yaml:"positionIterations"`
	Baumgarte          float32 `yaml:"baumgarte"`
}

// CCDPreset mirrors ccd.Settings.
type CCDPreset struct {
	LinearCastThreshold float32 `yaml:"linearCastThreshold"`
}

// ShapePreset names one of the primitive shape constructors and the
// parameters it needs; Build resolves it into a concrete shape.Shape.
// Compound/convex-hull/triangle-mesh shapes are intentionally left out
// of the preset format — they carry enough per-vertex data that a host
// wanting one is expected to call shape.NewConvexHull/NewTriangleMesh
// and a BodySettings.MassOverride directly rather than flattening it
// into YAML.
type ShapePreset struct {
	Kind string `yaml:"kind"`

	HalfExtents  []float32 `yaml:"halfExtents,omitempty"`
	ConvexRadius float32   `yaml:"convexRadius,omitempty"`

	Radius float32 `yaml:"radius,omitempty"`

	HalfHeight float32 `yaml:"halfHeight,omitempty"`
	EdgeRadius float32 `yaml:"edgeRadius,omitempty"`

	Normal      []float32 `yaml:"normal,omitempty"`
	Constant    float32   `yaml:"constant,omitempty"`
	HalfExtent  float32   `yaml:"halfExtent,omitempty"`
}

// Build resolves a ShapePreset into a shape.Shape, per the teacher's
// convention that every shape constructor reports (T, error) rather
// than panicking on a malformed preset.
func (p ShapePreset) Build() (shape.Shape, error) {
	switch p.Kind {
	case "box":
		return shape.NewBox(vec3(p.HalfExtents), p.ConvexRadius)
	case "sphere":
		return shape.NewSphere(p.Radius)
	case "capsule":
		return shape.NewCapsule(p.HalfHeight, p.Radius)
	case "cylinder":
		if p.EdgeRadius > 0 {
			return shape.NewCylinderWithEdgeRadius(p.HalfHeight, p.Radius, p.EdgeRadius)
		}
		return shape.NewCylinder(p.HalfHeight, p.Radius)
	case "plane":
		return shape.NewPlane(vec3(p.Normal), p.Constant, p.HalfExtent)
	case "":
		return shape.NewEmpty(), nil
	default:
		return nil, fmt.Errorf("config: unknown shape kind %q", p.Kind)
	}
}

// BodyPreset mirrors world.BodySettings with YAML-friendly field names
// and a nested ShapePreset instead of a live shape.Shape.
type BodyPreset struct {
	Shape       ShapePreset `yaml:"shape"`
	ObjectLayer uint16      `yaml:"objectLayer"`
	MotionType  string      `yaml:"motionType"`

	Position    []float32 `yaml:"position,omitempty"`
	Orientation []float32 `yaml:"orientation,omitempty"`

	GravityFactor      float32 `yaml:"gravityFactor,omitempty"`
	LinearDamping      float32 `yaml:"linearDamping,omitempty"`
	AngularDamping     float32 `yaml:"angularDamping,omitempty"`
	MaxLinearVelocity  float32 `yaml:"maxLinearVelocity,omitempty"`
	MaxAngularVelocity float32 `yaml:"maxAngularVelocity,omitempty"`

	Friction    float32 `yaml:"friction,omitempty"`
	Restitution float32 `yaml:"restitution,omitempty"`

	CollisionGroup uint32 `yaml:"collisionGroup,omitempty"`
	CollisionMask  uint32 `yaml:"collisionMask,omitempty"`

	AllowSleeping bool `yaml:"allowSleeping"`
	IsSensor      bool `yaml:"isSensor,omitempty"`

	Density float32 `yaml:"density,omitempty"`
}

var motionTypes = map[string]body.MotionType{
	"static":    body.Static,
	"kinematic": body.Kinematic,
	"dynamic":   body.Dynamic,
}

// Build resolves a BodyPreset into world.BodySettings, defaulting
// Orientation to identity and AllowedDOFs/material fields the same way
// world.DefaultBodySettings does when the preset leaves them zero.
func (p BodyPreset) Build() (world.BodySettings, error) {
	mt, ok := motionTypes[p.MotionType]
	if !ok {
		return world.BodySettings{}, fmt.Errorf("config: unknown motion type %q", p.MotionType)
	}
	s, err := p.Shape.Build()
	if err != nil {
		return world.BodySettings{}, fmt.Errorf("config: body shape: %w", err)
	}

	settings := world.DefaultBodySettings(s)
	settings.ObjectLayer = broadphase.ObjectLayer(p.ObjectLayer)
	settings.MotionType = mt
	if len(p.Position) == 3 {
		settings.Position = vec3(p.Position)
	}
	if len(p.Orientation) == 4 {
		settings.Orientation = math3.Quat{W: p.Orientation[0], V: math3.Vec3{p.Orientation[1], p.Orientation[2], p.Orientation[3]}}
	}
	if p.GravityFactor != 0 {
		settings.GravityFactor = p.GravityFactor
	}
	if p.LinearDamping != 0 {
		settings.LinearDamping = p.LinearDamping
	}
	if p.AngularDamping != 0 {
		settings.AngularDamping = p.AngularDamping
	}
	if p.MaxLinearVelocity != 0 {
		settings.MaxLinearVelocity = p.MaxLinearVelocity
	}
	if p.MaxAngularVelocity != 0 {
		settings.MaxAngularVelocity = p.MaxAngularVelocity
	}
	if p.Friction != 0 {
		settings.Friction = p.Friction
	}
	settings.Restitution = p.Restitution
	if p.CollisionGroup != 0 {
		settings.CollisionGroup = p.CollisionGroup
	}
	if p.CollisionMask != 0 {
		settings.CollisionMask = p.CollisionMask
	}
	settings.AllowSleeping = p.AllowSleeping
	settings.IsSensor = p.IsSensor
	if p.Density != 0 {
		settings.Density = p.Density
	}
	return settings, nil
}

// Settings resolves the layer registry, solver/CCD tunables and gravity
// into a *world.Settings the caller can pass to world.CreateWorld.
func (p WorldPreset) Settings() (*world.Settings, error) {
	s := world.NewSettings()
	if len(p.Gravity) == 3 {
		s.Gravity = vec3(p.Gravity)
	}
	for _, bp := range p.BroadphaseLayers {
		s.AddBroadphaseLayer(broadphase.BroadphaseLayer(bp))
	}
	for _, ol := range p.ObjectLayers {
		s.AddObjectLayer(broadphase.ObjectLayer(ol.Object), broadphase.BroadphaseLayer(ol.Broadphase))
	}
	for _, pair := range p.CollisionPairs {
		s.EnableCollision(broadphase.BroadphaseLayer(pair[0]), broadphase.BroadphaseLayer(pair[1]))
	}
	if p.Solver.VelocityIterations > 0 || p.Solver.PositionIterations > 0 {
		s.Solver = solver.Settings{
			VelocityIterations: p.Solver.VelocityIterations,
			PositionIterations: p.Solver.PositionIterations,
			Baumgarte:          p.Solver.Baumgarte,
		}
	}
	if p.CCD.LinearCastThreshold > 0 {
		s.CCD = ccd.Settings{LinearCastThreshold: p.CCD.LinearCastThreshold}
	}
	return s, nil
}

// Build constructs a *world.World from this preset and creates every
// body it lists, in document order.
func (p WorldPreset) Build() (*world.World, error) {
	settings, err := p.Settings()
	if err != nil {
		return nil, err
	}
	w := world.CreateWorld(settings)
	for i, bp := range p.Bodies {
		bs, err := bp.Build()
		if err != nil {
			return nil, fmt.Errorf("config: body[%d]: %w", i, err)
		}
		if _, err := w.CreateBody(bs); err != nil {
			return nil, fmt.Errorf("config: body[%d]: %w", i, err)
		}
	}
	return w, nil
}

// Load reads and decodes a WorldPreset from a YAML file at path.
func Load(path string) (WorldPreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WorldPreset{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var preset WorldPreset
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return WorldPreset{}, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return preset, nil
}

func vec3(v []float32) math3.Vec3 {
	if len(v) != 3 {
		return math3.Zero3
	}
	return math3.Vec3{v[0], v[1], v[2]}
}

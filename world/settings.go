package world

import (
	"fmt"

	"github.com/ironvale/physics3d/broadphase"
	"github.com/ironvale/physics3d/ccd"
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/solver"
)

// Settings is the builder spec.md §6 calls createWorldSettings: a
// gravity vector, the CCD sub-record, and the layer registry, all
// snapshotted into a World at CreateWorld time.
type Settings struct {
	Gravity math3.Vec3

	CCD    ccd.Settings
	Solver solver.Settings

	Layers *broadphase.LayerInterface
}

// NewSettings returns spec.md §6's documented defaults: gravity
// [0,-9.81,0], a 0.05 linear-cast threshold, and an empty layer
// registry the caller must populate with AddBroadphaseLayer/
// AddObjectLayer before CreateWorld.
func NewSettings() *Settings {
	return &Settings{
		Gravity: math3.Vec3{0, -9.81, 0},
		CCD:     ccd.DefaultSettings(),
		Solver:  solver.DefaultSettings(),
		Layers:  broadphase.NewLayerInterface(),
	}
}

// AddBroadphaseLayer registers a new broadphase bucket.
func (s *Settings) AddBroadphaseLayer(layer broadphase.BroadphaseLayer) {
	s.Layers.AddBroadphaseLayer(layer)
}

// AddObjectLayer maps an object layer onto a broadphase bucket.
func (s *Settings) AddObjectLayer(object broadphase.ObjectLayer, bp broadphase.BroadphaseLayer) {
	s.Layers.MapObjectToBroadphase(object, bp)
}

// EnableCollision records a symmetric allow bit between two broadphase
// layers, per spec.md §6.
func (s *Settings) EnableCollision(a, b broadphase.BroadphaseLayer) {
	s.Layers.EnableBroadphasePair(a, b, true)
}

// ConfigError reports a spec.md §7 "configuration error": a programming
// mistake the engine rejects at the boundary instead of silently
// corrupting the world.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("world: configuration error: %s", e.Reason) }

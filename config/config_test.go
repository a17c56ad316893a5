package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

const sampleYAML = `
gravity: [0, -9.81, 0]
broadphaseLayers: [0, 1]
objectLayers:
  - {object: 0, broadphase: 0}
  - {object: 1, broadphase: 1}
collisionPairs:
  - [0, 1]
  - [1, 1]
solver:
  velocityIterations: 8
  positionIterations: 3
  baumgarte: 0.2
bodies:
  - shape: {kind: box, halfExtents: [10, 0.5, 10]}
    objectLayer: 0
    motionType: static
    position: [0, 0, 0]
  - shape: {kind: sphere, radius: 0.5}
    objectLayer: 1
    motionType: dynamic
    position: [0, 3, 0]
    density: 1
    allowSleeping: true
`

func TestLoadPresetFromYAML(t *testing.T) {
	var preset WorldPreset
	require.NoError(t, yaml.Unmarshal([]byte(sampleYAML), &preset))

	assert.Equal(t, []float32{0, -9.81, 0}, preset.Gravity)
	assert.Len(t, preset.Bodies, 2)
	assert.Equal(t, "box", preset.Bodies[0].Shape.Kind)
}

func TestBuildWorldFromPreset(t *testing.T) {
	var preset WorldPreset
	require.NoError(t, yaml.Unmarshal([]byte(sampleYAML), &preset))

	w, err := preset.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, w.BodyCount())
}

func TestBodyPresetRejectsUnknownMotionType(t *testing.T) {
	p := BodyPreset{Shape: ShapePreset{Kind: "sphere", Radius: 1}, MotionType: "flying"}
	_, err := p.Build()
	assert.Error(t, err)
}

func TestShapePresetRejectsUnknownKind(t *testing.T) {
	_, err := ShapePreset{Kind: "torus"}.Build()
	assert.Error(t, err)
}

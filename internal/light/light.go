package light

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Kind identifies the kind of light source. The values are shared with the
// shaders.
type Kind int32

const (
	Directional Kind = iota
	Point
	Spot
)

func (k Kind) String() string {
	switch k {
	case Directional:
		return "directional"
	case Point:
		return "point"
	case Spot:
		return "spot"
	default:
		return fmt.Sprintf("Kind(%d)", int32(k))
	}
}

// MaxLights is the size of the light array declared in the main shader.
const MaxLights = 32

// Light is a plain light description. Fields that do not apply to a kind are
// ignored by the shader.
type Light struct {
	Kind        Kind
	Color       mgl32.Vec3
	Intensity   float32
	Direction   mgl32.Vec3
	Position    mgl32.Vec3
	Range       float32
	SpotFalloff float32
}

func NewDirectional(direction, color mgl32.Vec3, intensity float32) Light {
	return Light{Kind: Directional, Direction: direction, Color: color, Intensity: intensity}
}

func NewPoint(position, color mgl32.Vec3, intensity, rng float32) Light {
	return Light{Kind: Point, Position: position, Color: color, Intensity: intensity, Range: rng}
}

func NewSpot(position, direction, color mgl32.Vec3, intensity, rng, falloff float32) Light {
	return Light{
		Kind:        Spot,
		Position:    position,
		Direction:   direction,
		Color:       color,
		Intensity:   intensity,
		Range:       rng,
		SpotFalloff: falloff,
	}
}

var (
	ErrFrozen  = errors.New("light: list is frozen")
	ErrTooMany = errors.New("light: too many lights")
	ErrNoLight = errors.New("light: no such light")
)

// List is an ordered set of lights. Order is preserved all the way to the
// uploaded buffer. Once frozen, lights can no longer be added or removed but
// their fields stay editable through At.
type List struct {
	lights []Light
	frozen bool
}

func (l *List) Add(lights ...Light) error {
	if l.frozen {
		return ErrFrozen
	}
	if len(l.lights)+len(lights) > MaxLights {
		return fmt.Errorf("%w: %d + %d exceeds %d", ErrTooMany, len(l.lights), len(lights), MaxLights)
	}
	l.lights = append(l.lights, lights...)
	return nil
}

func (l *List) Remove(i int) error {
	if l.frozen {
		return ErrFrozen
	}
	if i < 0 || i >= len(l.lights) {
		return fmt.Errorf("%w: %d of %d", ErrNoLight, i, len(l.lights))
	}
	l.lights = append(l.lights[:i], l.lights[i+1:]...)
	return nil
}

func (l *List) Freeze()         { l.frozen = true }
func (l *List) Frozen() bool    { return l.frozen }
func (l *List) Len() int        { return len(l.lights) }
func (l *List) At(i int) *Light { return &l.lights[i] }

// Lights returns the backing slice. Callers must not append to it.
func (l *List) Lights() []Light { return l.lights }

// FirstDirectional returns the first directional light in list order.
func (l *List) FirstDirectional() (Light, bool) {
	for _, lt := range l.lights {
		if lt.Kind == Directional {
			return lt, true
		}
	}
	return Light{}, false
}

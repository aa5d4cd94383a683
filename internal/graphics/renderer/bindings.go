package renderer

import (
	"errors"
	"fmt"
	"slices"

	"mini-scene/internal/graphics/gpu"
)

var ErrBindingConflict = errors.New("renderer: texture bound as input and output at once")

// bindings forwards binding calls to the device and refuses any call that
// would make a texture both a render output and a shader input.
type bindings struct {
	dev    gpu.Device
	color  gpu.Target
	depth  gpu.Target
	inputs map[int]gpu.Texture
}

func newBindings(dev gpu.Device) *bindings {
	return &bindings{dev: dev, inputs: make(map[int]gpu.Texture)}
}

func (b *bindings) isOutput(tex gpu.Texture) bool {
	return (b.color != nil && tex == b.color) || (b.depth != nil && tex == b.depth)
}

func (b *bindings) bindOutputs(color, depth gpu.Target) error {
	for slot, tex := range b.inputs {
		if (color != nil && tex == color) || (depth != nil && tex == depth) {
			return fmt.Errorf("%w: output is still bound to input slot %d", ErrBindingConflict, slot)
		}
	}
	b.color, b.depth = color, depth
	b.dev.BindOutputs(color, depth)
	return nil
}

func (b *bindings) bindInput(slot int, tex gpu.Texture, s gpu.Sampler) error {
	if b.isOutput(tex) {
		return fmt.Errorf("%w: slot %d is a bound output", ErrBindingConflict, slot)
	}
	b.inputs[slot] = tex
	b.dev.BindInput(slot, tex, s)
	return nil
}

func (b *bindings) unbindInput(slot int) {
	if _, ok := b.inputs[slot]; !ok {
		return
	}
	delete(b.inputs, slot)
	b.dev.UnbindInput(slot)
}

// clearInputs unbinds every input slot in ascending order.
func (b *bindings) clearInputs() {
	slots := make([]int, 0, len(b.inputs))
	for s := range b.inputs {
		slots = append(slots, s)
	}
	slices.Sort(slots)
	for _, s := range slots {
		b.unbindInput(s)
	}
}

// forget unbinds t wherever it is bound. Call it before destroying t.
func (b *bindings) forget(t gpu.Target) {
	for slot, tex := range b.inputs {
		if tex == t {
			b.unbindInput(slot)
		}
	}
	if b.color == t {
		b.color = nil
	}
	if b.depth == t {
		b.depth = nil
	}
}

package renderer

import (
	"errors"
	"fmt"
	"slices"
)

// Resource names a render target that passes hand to each other.
type Resource string

const (
	ShadowDepth     Resource = "shadow.depth"
	SceneColor      Resource = "scene.color"
	SceneDepth      Resource = "scene.depth"
	Backbuffer      Resource = "backbuffer"
	BackbufferDepth Resource = "backbuffer.depth"
)

// Pass is one stage of a frame. Reads and Writes declare the resources it
// samples and renders into.
type Pass interface {
	Name() string
	Reads() []Resource
	Writes() []Resource
	Execute(ctx *FrameContext) error
}

var (
	ErrUnsatisfiedInput  = errors.New("renderer: pass reads a resource no earlier pass writes")
	ErrReadWriteConflict = errors.New("renderer: pass reads and writes the same resource")
)

// Pipeline is an ordered list of passes whose resource flow was checked
// when it was built.
type Pipeline struct {
	passes []Pass
}

func NewPipeline(passes ...Pass) (*Pipeline, error) {
	written := make(map[Resource]bool)
	for _, p := range passes {
		for _, r := range p.Reads() {
			if slices.Contains(p.Writes(), r) {
				return nil, fmt.Errorf("%w: %s on %q", ErrReadWriteConflict, p.Name(), r)
			}
			if !written[r] {
				return nil, fmt.Errorf("%w: %s reads %q", ErrUnsatisfiedInput, p.Name(), r)
			}
		}
		for _, r := range p.Writes() {
			written[r] = true
		}
	}
	return &Pipeline{passes: passes}, nil
}

func (p *Pipeline) Passes() []Pass { return p.passes }

func (p *Pipeline) Names() []string {
	names := make([]string, len(p.passes))
	for i, ps := range p.passes {
		names[i] = ps.Name()
	}
	return names
}

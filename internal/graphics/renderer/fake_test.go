package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"mini-scene/internal/graphics/gpu"
)

// Recording fakes for the gpu interfaces. Every call lands in a shared log
// so tests can assert on ordering.

type fakeTarget struct {
	label     string
	w, h      int
	format    gpu.Format
	destroyed bool
}

func (t *fakeTarget) Size() (int, int)   { return t.w, t.h }
func (t *fakeTarget) Format() gpu.Format { return t.format }

type fakeTexture struct{ name string }

func (t *fakeTexture) Size() (int, int) { return 256, 256 }

func label(t gpu.Texture) string {
	switch v := t.(type) {
	case nil:
		return "-"
	case *fakeTarget:
		if v == nil {
			return "-"
		}
		return v.label
	case *fakeTexture:
		return v.name
	}
	return fmt.Sprintf("%T", t)
}

// drawRecord is the device state seen by one draw call.
type drawRecord struct {
	mesh      string
	program   string
	color     string
	depth     string
	viewport  [4]int
	raster    gpu.RasterState
	depthFunc gpu.DepthFunc
	uniforms  map[string]any
}

type fakeDevice struct {
	events  []string
	draws   []drawRecord
	created []*fakeTarget

	back      *fakeTarget
	backDepth *fakeTarget

	color     gpu.Target
	depth     gpu.Target
	viewport  [4]int
	raster    gpu.RasterState
	depthFunc gpu.DepthFunc
	program   *fakeProgram
	inputs    map[int]gpu.Texture

	failTarget string
	presents   int
}

func newFakeDevice(w, h int) *fakeDevice {
	return &fakeDevice{
		back:      &fakeTarget{label: "backbuffer", w: w, h: h, format: gpu.FormatRGBA8},
		backDepth: &fakeTarget{label: "backbuffer.depth", w: w, h: h, format: gpu.FormatDepth24},
		inputs:    make(map[int]gpu.Texture),
	}
}

func (d *fakeDevice) logf(format string, args ...any) {
	d.events = append(d.events, fmt.Sprintf(format, args...))
}

func (d *fakeDevice) NewTarget(desc gpu.TargetDesc) (gpu.Target, error) {
	if desc.Label == d.failTarget {
		return nil, errors.New("out of memory")
	}
	t := &fakeTarget{label: desc.Label, w: desc.Width, h: desc.Height, format: desc.Format}
	d.created = append(d.created, t)
	d.logf("create %s %dx%d", desc.Label, desc.Width, desc.Height)
	return t, nil
}

func (d *fakeDevice) Destroy(t gpu.Target) {
	ft := t.(*fakeTarget)
	ft.destroyed = true
	d.logf("destroy %s", ft.label)
}

func (d *fakeDevice) Backbuffer() gpu.Target      { return d.back }
func (d *fakeDevice) BackbufferDepth() gpu.Target { return d.backDepth }

func (d *fakeDevice) BindOutputs(color, depth gpu.Target) {
	d.color, d.depth = color, depth
	d.logf("outputs %s %s", label(color), label(depth))
}

func (d *fakeDevice) ClearColor(t gpu.Target, c mgl32.Vec4) { d.logf("clear color %s %v", label(t), c) }
func (d *fakeDevice) ClearDepth(t gpu.Target, v float32)    { d.logf("clear depth %s %v", label(t), v) }

func (d *fakeDevice) Viewport(x, y, w, h int) {
	d.viewport = [4]int{x, y, w, h}
	d.logf("viewport %d %d %d %d", x, y, w, h)
}

func (d *fakeDevice) SetRaster(s gpu.RasterState) {
	d.raster = s
	d.logf("raster %d", s)
}

func (d *fakeDevice) SetDepthFunc(f gpu.DepthFunc) {
	d.depthFunc = f
	d.logf("depth func %d", f)
}

func (d *fakeDevice) BindInput(slot int, tex gpu.Texture, s gpu.Sampler) {
	d.inputs[slot] = tex
	d.logf("input %d %s", slot, label(tex))
}

func (d *fakeDevice) UnbindInput(slot int) {
	delete(d.inputs, slot)
	d.logf("unbind %d", slot)
}

func (d *fakeDevice) DrawFullscreen() { d.record("fullscreen") }

func (d *fakeDevice) Present() error {
	d.presents++
	d.logf("present")
	return nil
}

func (d *fakeDevice) record(mesh string) {
	rec := drawRecord{
		mesh:      mesh,
		color:     label(d.color),
		depth:     label(d.depth),
		viewport:  d.viewport,
		raster:    d.raster,
		depthFunc: d.depthFunc,
	}
	if d.program != nil {
		rec.program = d.program.name
		rec.uniforms = make(map[string]any, len(d.program.uniforms))
		for k, v := range d.program.uniforms {
			rec.uniforms[k] = v
		}
	}
	d.draws = append(d.draws, rec)
	d.logf("draw %s", mesh)
}

// drawsBy returns the draws issued with the named program.
func (d *fakeDevice) drawsBy(program string) []drawRecord {
	var out []drawRecord
	for _, r := range d.draws {
		if r.program == program {
			out = append(out, r)
		}
	}
	return out
}

func (d *fakeDevice) indexOf(event string) int {
	for i, e := range d.events {
		if e == event {
			return i
		}
	}
	return -1
}

type fakeProgram struct {
	name     string
	dev      *fakeDevice
	uniforms map[string]any
}

func newFakeProgram(dev *fakeDevice, name string) *fakeProgram {
	return &fakeProgram{name: name, dev: dev, uniforms: make(map[string]any)}
}

func (p *fakeProgram) Use() {
	p.dev.program = p
	p.dev.logf("use %s", p.name)
}

func (p *fakeProgram) SetMatrix4(name string, m mgl32.Mat4) { p.uniforms[name] = m }
func (p *fakeProgram) SetVec3(name string, v mgl32.Vec3)    { p.uniforms[name] = v }
func (p *fakeProgram) SetVec4(name string, v mgl32.Vec4)    { p.uniforms[name] = v }
func (p *fakeProgram) SetFloat(name string, v float32)      { p.uniforms[name] = v }
func (p *fakeProgram) SetInt(name string, v int32)          { p.uniforms[name] = v }
func (p *fakeProgram) SetData(name string, data []byte)     { p.uniforms[name] = data }

type fakeMesh struct {
	name string
	dev  *fakeDevice
}

func (m *fakeMesh) Draw() { m.dev.record(m.name) }

package graphics

import "fmt"

// Shader names under ShadersDir.
const (
	MainShader   = "main"
	ShadowShader = "shadow"
	SkyShader    = "sky"
	PostShader   = "post"
)

// Programs holds every shader the demo draws with.
type Programs struct {
	Main   *Shader
	Shadow *Shader
	Sky    *Shader
	Post   *Shader
}

// LoadPrograms compiles all shaders from ShadersDir.
func LoadPrograms() (*Programs, error) {
	p := &Programs{}
	for _, s := range []struct {
		name string
		dst  **Shader
	}{
		{MainShader, &p.Main},
		{ShadowShader, &p.Shadow},
		{SkyShader, &p.Sky},
		{PostShader, &p.Post},
	} {
		sh, err := NewNamedShader(s.name)
		if err != nil {
			p.Delete()
			return nil, fmt.Errorf("failed to load %s shader: %w", s.name, err)
		}
		*s.dst = sh
	}
	return p, nil
}

func (p *Programs) Delete() {
	for _, s := range []*Shader{p.Main, p.Shadow, p.Sky, p.Post} {
		if s != nil {
			s.Delete()
		}
	}
}

package graphics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// ShadersDir holds the <name>.vert / <name>.frag pairs loaded by
// LoadPrograms.
var ShadersDir = "assets/shaders"

// Shader is a linked OpenGL program. It implements gpu.Program.
type Shader struct {
	ID uint32

	locations map[string]int32
	blocks    map[string]*uniformBlock
}

// uniformBlock is the buffer behind one std140 uniform block.
type uniformBlock struct {
	buffer  uint32
	binding uint32
	size    int
}

// NewShader creates a new shader program from vertex and fragment shader source files
func NewShader(vertexPath, fragmentPath string) (*Shader, error) {
	vertexSource, err := os.ReadFile(vertexPath)
	if err != nil {
		return nil, fmt.Errorf("could not read vertex shader file: %w", err)
	}

	fragmentSource, err := os.ReadFile(fragmentPath)
	if err != nil {
		return nil, fmt.Errorf("could not read fragment shader file: %w", err)
	}

	program, err := compileProgram(string(vertexSource), string(fragmentSource))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(vertexPath), err)
	}

	return &Shader{
		ID:        program,
		locations: make(map[string]int32),
		blocks:    make(map[string]*uniformBlock),
	}, nil
}

// NewNamedShader loads name.vert and name.frag from ShadersDir.
func NewNamedShader(name string) (*Shader, error) {
	return NewShader(
		filepath.Join(ShadersDir, name+".vert"),
		filepath.Join(ShadersDir, name+".frag"),
	)
}

// Use activates the shader program
func (s *Shader) Use() {
	gl.UseProgram(s.ID)
}

// location caches uniform lookups. Unknown names resolve to -1, which GL
// ignores on upload.
func (s *Shader) location(name string) int32 {
	if loc, ok := s.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(s.ID, gl.Str(name+"\x00"))
	s.locations[name] = loc
	return loc
}

// SetInt sets an integer uniform
func (s *Shader) SetInt(name string, value int32) {
	gl.Uniform1i(s.location(name), value)
}

// SetFloat sets a float uniform
func (s *Shader) SetFloat(name string, value float32) {
	gl.Uniform1f(s.location(name), value)
}

// SetVec3 sets a vector3 uniform
func (s *Shader) SetVec3(name string, v mgl32.Vec3) {
	gl.Uniform3f(s.location(name), v[0], v[1], v[2])
}

func (s *Shader) SetVec4(name string, v mgl32.Vec4) {
	gl.Uniform4f(s.location(name), v[0], v[1], v[2], v[3])
}

// SetMatrix4 sets a 4x4 matrix uniform
func (s *Shader) SetMatrix4(name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(s.location(name), 1, false, &m[0])
}

// SetData copies raw bytes into the uniform block called name. The block
// buffer is sized to the block, so shorter data leaves the tail stale;
// counts travel in separate uniforms.
func (s *Shader) SetData(name string, data []byte) {
	b := s.block(name)
	if b == nil {
		return
	}
	gl.BindBufferBase(gl.UNIFORM_BUFFER, b.binding, b.buffer)
	if len(data) == 0 {
		return
	}
	n := min(len(data), b.size)
	gl.BindBuffer(gl.UNIFORM_BUFFER, b.buffer)
	gl.BufferSubData(gl.UNIFORM_BUFFER, 0, n, gl.Ptr(data[:n]))
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
}

func (s *Shader) block(name string) *uniformBlock {
	if b, ok := s.blocks[name]; ok {
		return b
	}
	index := gl.GetUniformBlockIndex(s.ID, gl.Str(name+"\x00"))
	if index == gl.INVALID_INDEX {
		s.blocks[name] = nil
		return nil
	}

	var size int32
	gl.GetActiveUniformBlockiv(s.ID, index, gl.UNIFORM_BLOCK_DATA_SIZE, &size)

	b := &uniformBlock{binding: uint32(len(s.blocks)), size: int(size)}
	gl.UniformBlockBinding(s.ID, index, b.binding)
	gl.GenBuffers(1, &b.buffer)
	gl.BindBuffer(gl.UNIFORM_BUFFER, b.buffer)
	gl.BufferData(gl.UNIFORM_BUFFER, b.size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)

	s.blocks[name] = b
	return b
}

// Delete frees the program and its block buffers.
func (s *Shader) Delete() {
	for _, b := range s.blocks {
		if b != nil {
			gl.DeleteBuffers(1, &b.buffer)
		}
	}
	gl.DeleteProgram(s.ID)
}

// Helper functions
func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, fmt.Errorf("failed to link program: %v", log)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		return 0, fmt.Errorf("failed to compile shader: %v", log)
	}
	return shader, nil
}

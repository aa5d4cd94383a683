package graphics

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"

	"mini-scene/internal/graphics/texdata"
)

// Texture is a sampled GL texture, either 2D or a cubemap.
type Texture struct {
	id     uint32
	target uint32
	width  int
	height int
}

func (t *Texture) Size() (int, int) { return t.width, t.height }

func (t *Texture) handle() (uint32, uint32) { return t.target, t.id }

// Delete frees the GL texture.
func (t *Texture) Delete() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

// LoadTexture loads a 2D texture from a file
func LoadTexture(path string) (*Texture, error) {
	img, err := texdata.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load texture: %w", err)
	}
	return NewTexture(img), nil
}

// NewTexture uploads img as a mipmapped 2D texture. Sampling parameters
// come from the sampler bound alongside it.
func NewTexture(img *image.RGBA) *Texture {
	t := &Texture{target: gl.TEXTURE_2D, width: img.Rect.Dx(), height: img.Rect.Dy()}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA8,
		int32(t.width),
		int32(t.height),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(img.Pix),
	)
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t
}

// LoadCubemap builds a cubemap from six face files ordered +X, -X, +Y, -Y,
// +Z, -Z.
func LoadCubemap(paths [6]string) (*Texture, error) {
	faces, err := texdata.LoadCubeFaces(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to load cubemap: %w", err)
	}
	return NewCubemap(faces), nil
}

// NewCubemap uploads six equally sized faces without mipmaps.
func NewCubemap(faces [6]*image.RGBA) *Texture {
	t := &Texture{target: gl.TEXTURE_CUBE_MAP, width: faces[0].Rect.Dx(), height: faces[0].Rect.Dy()}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, t.id)

	for i, face := range faces {
		gl.TexImage2D(
			gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i),
			0,
			gl.RGBA8,
			int32(t.width),
			int32(t.height),
			0,
			gl.RGBA,
			gl.UNSIGNED_BYTE,
			gl.Ptr(face.Pix),
		)
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAX_LEVEL, 0)

	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return t
}

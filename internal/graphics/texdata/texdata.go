// Package texdata prepares CPU-side image data for texture upload:
// decoding, conversion to RGBA, cubemap face normalization and the
// procedural stand-ins used when asset files are missing.
package texdata

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/chewxy/math32"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Cubemap face order: +X, -X, +Y, -Y, +Z, -Z.
const (
	FaceRight = iota
	FaceLeft
	FaceUp
	FaceDown
	FaceFront
	FaceBack
)

var ErrEmptyImage = errors.New("texdata: image has no pixels")

// Load decodes an image file in any registered format.
func Load(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyImage)
	}
	return ToRGBA(img), nil
}

// ToRGBA returns img as a tightly packed RGBA image with its origin at 0,0.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// Resize scales img to w x h.
func Resize(img image.Image, w, h int) *image.RGBA {
	if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
		return ToRGBA(img)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// LoadCubeFaces loads six face images and scales them all to the size of
// the first, since every cubemap face must match.
func LoadCubeFaces(paths [6]string) ([6]*image.RGBA, error) {
	var faces [6]*image.RGBA
	for i, p := range paths {
		img, err := Load(p)
		if err != nil {
			return faces, err
		}
		faces[i] = img
	}
	return NormalizeFaces(faces), nil
}

// NormalizeFaces scales every face to the size of faces[0].
func NormalizeFaces(faces [6]*image.RGBA) [6]*image.RGBA {
	w, h := faces[0].Rect.Dx(), faces[0].Rect.Dy()
	for i := 1; i < len(faces); i++ {
		faces[i] = Resize(faces[i], w, h)
	}
	return faces
}

// Solid is a 1x1 image of c.
func Solid(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, c)
	return img
}

// FlatNormal is a normal map with every texel pointing straight out.
func FlatNormal() *image.RGBA {
	return Solid(color.RGBA{128, 128, 255, 255})
}

// Checker is a size x size board of cells x cells squares.
func Checker(size, cells int, a, b color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := max(size/max(cells, 1), 1)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// Gradient colors a sky by elevation.
type Gradient struct {
	Zenith  color.RGBA
	Horizon color.RGBA
	Nadir   color.RGBA
}

// DefaultSky is a dusky pink gradient.
var DefaultSky = Gradient{
	Zenith:  color.RGBA{70, 90, 160, 255},
	Horizon: color.RGBA{235, 170, 180, 255},
	Nadir:   color.RGBA{60, 50, 70, 255},
}

// SkyFaces renders g into six size x size cubemap faces.
func SkyFaces(size int, g Gradient) [6]*image.RGBA {
	var faces [6]*image.RGBA
	for f := range faces {
		img := image.NewRGBA(image.Rect(0, 0, size, size))
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				// texel center in [-1, 1], t grows downward
				s := (float32(x)+0.5)/float32(size)*2 - 1
				t := (float32(y)+0.5)/float32(size)*2 - 1
				img.SetRGBA(x, y, g.at(faceDirY(f, s, t)))
			}
		}
		faces[f] = img
	}
	return faces
}

// faceDirY returns the normalized y component of the direction through
// texel (s, t) of face f.
func faceDirY(f int, s, t float32) float32 {
	var x, y, z float32
	switch f {
	case FaceRight:
		x, y, z = 1, -t, -s
	case FaceLeft:
		x, y, z = -1, -t, s
	case FaceUp:
		x, y, z = s, 1, t
	case FaceDown:
		x, y, z = s, -1, -t
	case FaceFront:
		x, y, z = s, -t, 1
	case FaceBack:
		x, y, z = -s, -t, -1
	}
	return y / math32.Sqrt(x*x+y*y+z*z)
}

func (g Gradient) at(y float32) color.RGBA {
	if y >= 0 {
		return lerp(g.Horizon, g.Zenith, y)
	}
	return lerp(g.Horizon, g.Nadir, -y)
}

func lerp(a, b color.RGBA, t float32) color.RGBA {
	mix := func(x, y uint8) uint8 { return uint8(float32(x) + (float32(y)-float32(x))*t + 0.5) }
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), mix(a.A, b.A)}
}

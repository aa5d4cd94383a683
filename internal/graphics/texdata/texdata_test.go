package texdata

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func writeImage(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	switch filepath.Ext(name) {
	case ".bmp":
		require.NoError(t, bmp.Encode(f, img))
	default:
		require.NoError(t, png.Encode(f, img))
	}
	return path
}

func TestLoadDecodesPNGAndBMP(t *testing.T) {
	dir := t.TempDir()
	src := Checker(8, 2, color.RGBA{255, 0, 0, 255}, color.RGBA{0, 0, 255, 255})

	for _, name := range []string{"a.png", "b.bmp"} {
		img, err := Load(writeImage(t, dir, name, src))
		require.NoError(t, err, name)
		assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds(), name)
		assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(0, 0), name)
		assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(4, 0), name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestToRGBARebasesSubImages(t *testing.T) {
	base := Checker(8, 2, color.RGBA{1, 1, 1, 255}, color.RGBA{2, 2, 2, 255})
	sub := base.SubImage(image.Rect(4, 4, 8, 8))

	got := ToRGBA(sub)
	assert.Equal(t, image.Rect(0, 0, 4, 4), got.Rect)
	assert.Equal(t, 16, got.Stride)
	assert.Equal(t, color.RGBA{1, 1, 1, 255}, got.RGBAAt(0, 0))
}

func TestNormalizeFacesMatchesFirst(t *testing.T) {
	var faces [6]*image.RGBA
	for i := range faces {
		faces[i] = image.NewRGBA(image.Rect(0, 0, 4*(i+1), 4*(i+1)))
	}
	faces = NormalizeFaces(faces)
	for i, f := range faces {
		assert.Equal(t, image.Rect(0, 0, 4, 4), f.Rect, "face %d", i)
	}
}

func TestLoadCubeFacesFailsOnMissingFace(t *testing.T) {
	dir := t.TempDir()
	var paths [6]string
	for i := range paths {
		paths[i] = writeImage(t, dir, string(rune('a'+i))+".png", Solid(color.RGBA{A: 255}))
	}
	paths[FaceDown] = filepath.Join(dir, "missing.png")

	_, err := LoadCubeFaces(paths)
	assert.Error(t, err)
}

func TestSkyFacesFollowElevation(t *testing.T) {
	g := Gradient{
		Zenith:  color.RGBA{0, 0, 255, 255},
		Horizon: color.RGBA{0, 255, 0, 255},
		Nadir:   color.RGBA{255, 0, 0, 255},
	}
	faces := SkyFaces(16, g)

	up := faces[FaceUp].RGBAAt(8, 8)
	down := faces[FaceDown].RGBAAt(8, 8)
	assert.Greater(t, up.B, uint8(240), "zenith at the center of +Y")
	assert.Greater(t, down.R, uint8(240), "nadir at the center of -Y")

	// side faces: top row is brighter blue than bottom row
	for _, f := range []int{FaceRight, FaceLeft, FaceFront, FaceBack} {
		top := faces[f].RGBAAt(8, 0)
		bottom := faces[f].RGBAAt(8, 15)
		assert.Greater(t, top.B, bottom.B, "face %d", f)
		assert.Greater(t, bottom.R, top.R, "face %d", f)
	}
}

func TestFlatNormal(t *testing.T) {
	assert.Equal(t, color.RGBA{128, 128, 255, 255}, FlatNormal().RGBAAt(0, 0))
}

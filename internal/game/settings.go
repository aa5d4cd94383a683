package game

import (
	"github.com/go-gl/mathgl/mgl32"

	"mini-scene/internal/config"
	"mini-scene/internal/graphics/renderer"
)

// shadowDepthRange is how far past the scene center the shadow volume
// reaches, as a multiple of the caster distance.
const shadowDepthRange = 3

// RendererSettings converts the render section of the configuration.
func RendererSettings(c config.RenderSettings) renderer.Settings {
	s := renderer.DefaultSettings()
	s.Background = mgl32.Vec4(c.Background)

	s.Shadows = c.Shadows
	s.ShadowMapSize = c.ShadowMapSize
	s.Shadow.Distance = c.ShadowDistance
	s.Shadow.Extent = c.ShadowExtent
	s.Shadow.Far = c.ShadowDistance * shadowDepthRange

	s.PostProcess = c.PostProcess
	s.PostScale = c.PostScale
	s.BlurRadius = int32(c.BlurRadius)
	return s
}

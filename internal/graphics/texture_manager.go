package graphics

import (
	"image"
	"sync"
)

var (
	textureCache = make(map[string]*Texture)
	cacheMutex   sync.RWMutex
)

// GetTexture returns a cached texture for the given path.
// If the texture is already loaded, it returns the cached one.
// Otherwise, it loads the texture from disk and caches it.
func GetTexture(path string) (*Texture, error) {
	cacheMutex.RLock()
	if tex, ok := textureCache[path]; ok {
		cacheMutex.RUnlock()
		return tex, nil
	}
	cacheMutex.RUnlock()

	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	// Double check locking
	if tex, ok := textureCache[path]; ok {
		return tex, nil
	}

	tex, err := LoadTexture(path)
	if err != nil {
		return nil, err
	}

	textureCache[path] = tex
	return tex, nil
}

// GetGeneratedTexture caches a procedurally generated texture under key.
// gen only runs on a miss.
func GetGeneratedTexture(key string, gen func() *image.RGBA) *Texture {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	if tex, ok := textureCache[key]; ok {
		return tex
	}
	tex := NewTexture(gen())
	textureCache[key] = tex
	return tex
}

// ReleaseTextures deletes every cached texture.
func ReleaseTextures() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	for key, tex := range textureCache {
		tex.Delete()
		delete(textureCache, key)
	}
}

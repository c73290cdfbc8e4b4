package scene

import "github.com/google/uuid"

// Texture is decoded RGBA8 pixel data.
type Texture struct {
	Width  uint32
	Height uint32
	Pixels []byte
}

// SolidTexture returns a 1x1 texture of the given color.
func SolidTexture(r, g, b, a uint8) Texture {
	return Texture{Width: 1, Height: 1, Pixels: []byte{r, g, b, a}}
}

// Material binds a base color and a specular/roughness/metallic texture at
// set 1. The GPU side keeps one descriptor set per material.
type Material struct {
	ID        uuid.UUID
	Name      string
	BaseColor Texture
	Specular  Texture
	// Index in registration order, also the draw order of material batches.
	Index uint32
}

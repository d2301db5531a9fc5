package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

// BackgroundRenderer draws the static sky and the scrolling ground.
type BackgroundRenderer struct {
	sky  rl.Texture2D
	base rl.Texture2D
}

// NewBackgroundRenderer creates a background renderer from loaded textures.
func NewBackgroundRenderer(tex *Textures) *BackgroundRenderer {
	return &BackgroundRenderer{sky: tex.Background, base: tex.Base}
}

// DrawSky renders the background image at the origin.
func (b *BackgroundRenderer) DrawSky() {
	rl.DrawTexture(b.sky, 0, 0, rl.White)
}

// DrawGround renders both ground segments at their scroll positions.
func (b *BackgroundRenderer) DrawGround(y, x1, x2 float64) {
	rl.DrawTexture(b.base, int32(x1), int32(y), rl.White)
	rl.DrawTexture(b.base, int32(x2), int32(y), rl.White)
}

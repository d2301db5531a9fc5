// Package renderer draws frames of a generation into a raylib window.
package renderer

import (
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flappy/sprites"
)

// Textures holds the GPU copies of a sprite sheet.
type Textures struct {
	Birds      [sprites.BirdFrames]rl.Texture2D
	PipeTop    rl.Texture2D
	PipeBottom rl.Texture2D
	Base       rl.Texture2D
	Background rl.Texture2D
}

// LoadTextures uploads every sprite of the sheet. The window must be open.
func LoadTextures(sheet *sprites.Sheet) *Textures {
	t := &Textures{}
	for i, img := range sheet.Birds {
		t.Birds[i] = upload(img)
	}
	t.PipeTop = upload(sheet.PipeTop)
	t.PipeBottom = upload(sheet.PipeBottom)
	t.Base = upload(sheet.Base)
	t.Background = upload(sheet.Background)
	return t
}

func upload(img image.Image) rl.Texture2D {
	cpu := rl.NewImageFromImage(img)
	tex := rl.LoadTextureFromImage(cpu)
	rl.UnloadImage(cpu)
	return tex
}

// Unload frees the GPU textures.
func (t *Textures) Unload() {
	for _, tex := range t.Birds {
		rl.UnloadTexture(tex)
	}
	rl.UnloadTexture(t.PipeTop)
	rl.UnloadTexture(t.PipeBottom)
	rl.UnloadTexture(t.Base)
	rl.UnloadTexture(t.Background)
}

// Package sprites provides the game's images and the collision masks derived from them.
// Images are either loaded from a directory of PNGs or generated.
package sprites

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
)

// BirdFrames is the number of wing animation frames.
const BirdFrames = 3

// Sheet holds every sprite the game uses, already scaled, and their masks.
type Sheet struct {
	Birds      [BirdFrames]image.Image
	PipeBottom image.Image
	PipeTop    image.Image // PipeBottom mirrored vertically
	Base       image.Image
	Background image.Image

	BirdMasks      [BirdFrames]*Mask
	PipeBottomMask *Mask
	PipeTopMask    *Mask
}

// Load builds a sheet. If dir is empty the sprites are generated, otherwise
// bird1.png..bird3.png, pipe.png, base.png and bg.png are read from dir.
// Sprites are scaled by scale; the background is stretched to bgW x bgH.
func Load(dir string, scale, bgW, bgH int) (*Sheet, error) {
	var src rawSprites
	if dir == "" {
		src = generate()
	} else {
		var err error
		src, err = readDir(dir)
		if err != nil {
			return nil, err
		}
	}

	s := &Sheet{}
	for i, img := range src.birds {
		s.Birds[i] = Scale(img, scale)
		s.BirdMasks[i] = FromImage(s.Birds[i])
	}
	s.PipeBottom = Scale(src.pipe, scale)
	s.PipeTop = flipV(s.PipeBottom)
	s.Base = Scale(src.base, scale)
	s.Background = resize(src.bg, bgW, bgH)

	s.PipeBottomMask = FromImage(s.PipeBottom)
	s.PipeTopMask = s.PipeBottomMask.FlipV()

	return s, nil
}

// BirdSize returns the bird sprite dimensions.
func (s *Sheet) BirdSize() (w, h int) {
	b := s.Birds[0].Bounds()
	return b.Dx(), b.Dy()
}

// PipeSize returns the pipe sprite dimensions (top and bottom are equal).
func (s *Sheet) PipeSize() (w, h int) {
	b := s.PipeBottom.Bounds()
	return b.Dx(), b.Dy()
}

// BaseWidth returns the width of one ground segment.
func (s *Sheet) BaseWidth() int {
	return s.Base.Bounds().Dx()
}

// Scale enlarges img by an integer factor with nearest-neighbour sampling.
func Scale(img image.Image, factor int) image.Image {
	if factor == 1 {
		return img
	}
	b := img.Bounds()
	return resize(img, b.Dx()*factor, b.Dy()*factor)
}

func resize(img image.Image, w, h int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

func flipV(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.Set(x, b.Dy()-1-y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

type rawSprites struct {
	birds [BirdFrames]image.Image
	pipe  image.Image
	base  image.Image
	bg    image.Image
}

func readDir(dir string) (rawSprites, error) {
	var raw rawSprites
	var err error
	for i := range raw.birds {
		if raw.birds[i], err = readPNG(filepath.Join(dir, fmt.Sprintf("bird%d.png", i+1))); err != nil {
			return raw, err
		}
	}
	if raw.pipe, err = readPNG(filepath.Join(dir, "pipe.png")); err != nil {
		return raw, err
	}
	if raw.base, err = readPNG(filepath.Join(dir, "base.png")); err != nil {
		return raw, err
	}
	if raw.bg, err = readPNG(filepath.Join(dir, "bg.png")); err != nil {
		return raw, err
	}
	return raw, nil
}

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sprite: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

package sprites

import (
	"image"
	"image/color"
	"image/draw"
)

// Native (unscaled) sprite sizes, matching the classic asset set.
const (
	BirdW = 34
	BirdH = 24
	PipeW = 52
	PipeH = 320
	BaseW = 336
	BaseH = 112
	BgW   = 288
	BgH   = 512
)

var (
	birdBody  = color.NRGBA{R: 250, G: 200, B: 40, A: 255}
	birdWing  = color.NRGBA{R: 245, G: 240, B: 200, A: 255}
	birdBeak  = color.NRGBA{R: 240, G: 110, B: 40, A: 255}
	birdEye   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	birdPupil = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
	pipeBody  = color.NRGBA{R: 115, G: 190, B: 45, A: 255}
	pipeShade = color.NRGBA{R: 85, G: 140, B: 30, A: 255}
	pipeEdge  = color.NRGBA{R: 45, G: 70, B: 20, A: 255}
	sandLight = color.NRGBA{R: 222, G: 216, B: 149, A: 255}
	sandDark  = color.NRGBA{R: 200, G: 190, B: 120, A: 255}
	grass     = color.NRGBA{R: 110, G: 200, B: 70, A: 255}
	skyTop    = color.NRGBA{R: 78, G: 192, B: 202, A: 255}
	skyBottom = color.NRGBA{R: 200, G: 240, B: 235, A: 255}
)

func generate() rawSprites {
	var raw rawSprites
	for i := range raw.birds {
		raw.birds[i] = genBird(i)
	}
	raw.pipe = genPipe()
	raw.base = genBase()
	raw.bg = genBackground()
	return raw
}

// genBird draws an elliptical bird. frame selects the wing position (up, mid, down).
func genBird(frame int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, BirdW, BirdH))

	fillEllipse(img, 15, 12, 14, 10, birdBody)
	fillEllipse(img, 23, 7, 4, 4, birdEye)
	fillEllipse(img, 24, 7, 1, 2, birdPupil)
	draw.Draw(img, image.Rect(26, 12, 34, 17), image.NewUniform(birdBeak), image.Point{}, draw.Src)

	wingY := []int{8, 12, 15}[frame%BirdFrames]
	fillEllipse(img, 8, wingY, 6, 3, birdWing)

	return img
}

// genPipe draws a bottom pipe: a lip at the top and a shaded shaft below.
func genPipe() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, PipeW, PipeH))

	shaft := image.Rect(2, 24, PipeW-2, PipeH)
	draw.Draw(img, shaft, image.NewUniform(pipeBody), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(PipeW-14, 24, PipeW-2, PipeH), image.NewUniform(pipeShade), image.Point{}, draw.Src)

	lip := image.Rect(0, 0, PipeW, 24)
	draw.Draw(img, lip, image.NewUniform(pipeBody), image.Point{}, draw.Src)
	strokeRect(img, lip, pipeEdge)
	strokeRect(img, shaft, pipeEdge)

	return img
}

// genBase draws the ground strip: grass on top, striped sand below.
func genBase() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, BaseW, BaseH))
	draw.Draw(img, img.Bounds(), image.NewUniform(sandLight), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, BaseW, 12), image.NewUniform(grass), image.Point{}, draw.Src)

	for x := 0; x < BaseW; x += 24 {
		for y := 12; y < BaseH; y++ {
			for dx := 0; dx < 8; dx++ {
				img.SetNRGBA((x+dx+y)%BaseW, y, sandDark)
			}
		}
	}
	return img
}

// genBackground draws a vertical sky gradient.
func genBackground() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, BgW, BgH))
	for y := 0; y < BgH; y++ {
		t := float64(y) / float64(BgH-1)
		c := color.NRGBA{
			R: lerp8(skyTop.R, skyBottom.R, t),
			G: lerp8(skyTop.G, skyBottom.G, t),
			B: lerp8(skyTop.B, skyBottom.B, t),
			A: 255,
		}
		for x := 0; x < BgW; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func fillEllipse(img *image.NRGBA, cx, cy, rx, ry int, c color.NRGBA) {
	for y := cy - ry; y <= cy+ry; y++ {
		for x := cx - rx; x <= cx+rx; x++ {
			dx := float64(x-cx) / float64(rx)
			dy := float64(y-cy) / float64(ry)
			if dx*dx+dy*dy <= 1 && image.Pt(x, y).In(img.Rect) {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

func strokeRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetNRGBA(x, r.Min.Y, c)
		img.SetNRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetNRGBA(r.Min.X, y, c)
		img.SetNRGBA(r.Max.X-1, y, c)
	}
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

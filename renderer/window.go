package renderer

import (
	"context"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flappy/game"
	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/sprites"
	"github.com/pthm-cable/flappy/telemetry"
	"github.com/pthm-cable/flappy/ui"
)

const controlsLegend = "[Tab] Controls  [Space] Pause  [Up/Down] Speed  [L] Lines  [C] Colors  [S] Species  [F] Perf"

// WindowOptions configures the window presenter.
type WindowOptions struct {
	Width, Height    int
	Title            string
	TargetFPS        int
	DrawLines        bool
	SpeciesColors    bool
	StepsPerFrame    int
	MaxStepsPerFrame int
	Seed             int64
}

// Window presents frames in a raylib window and paces the simulation
// through its controls panel.
type Window struct {
	opts WindowOptions

	tex       *Textures
	bg        *BackgroundRenderer
	particles *ParticleRenderer

	hud      *ui.HUD
	controls *ui.ControlsPanel
	overlays *ui.OverlayRegistry
	perfView *ui.PerfPanel
	species  *ui.SpeciesPanel
	perf     *telemetry.PerfCollector

	birdW, birdH float32
	pipeW, pipeH float32

	lastGen   int
	lastBirds map[int]game.BirdView
}

// OpenWindow creates the window and uploads the sprite sheet. Close must be
// called when done.
func OpenWindow(sheet *sprites.Sheet, opts WindowOptions) *Window {
	rl.InitWindow(int32(opts.Width), int32(opts.Height), opts.Title)
	rl.SetTargetFPS(int32(opts.TargetFPS))
	rl.SetExitKey(rl.KeyEscape)

	tex := LoadTextures(sheet)
	bw, bh := sheet.BirdSize()
	pw, ph := sheet.PipeSize()

	w := &Window{
		opts:      opts,
		tex:       tex,
		bg:        NewBackgroundRenderer(tex),
		particles: NewParticleRenderer(opts.Seed),
		hud:       ui.NewHUD(),
		controls:  ui.NewControlsPanel(10, 120, 220, opts.StepsPerFrame, opts.MaxStepsPerFrame),
		overlays:  ui.NewOverlayRegistry(),
		perfView:  ui.NewPerfPanel(int32(opts.Width)-230, 70, 220),
		species:   ui.NewSpeciesPanel(int32(opts.Width)-190, 210, 180),
		birdW:     float32(bw),
		birdH:     float32(bh),
		pipeW:     float32(pw),
		pipeH:     float32(ph),
		lastGen:   -1,
		lastBirds: make(map[int]game.BirdView),
	}
	w.overlays.SetEnabled(ui.OverlaySightLines, opts.DrawLines)
	w.overlays.SetEnabled(ui.OverlaySpeciesColors, opts.SpeciesColors)
	return w
}

// SetPerf attaches the step timings shown by the performance overlay.
func (w *Window) SetPerf(p *telemetry.PerfCollector) {
	w.perf = p
}

// Close releases the textures and closes the window.
func (w *Window) Close() {
	w.tex.Unload()
	rl.CloseWindow()
}

// StepsPerFrame implements game.Pacer.
func (w *Window) StepsPerFrame() int {
	return w.controls.StepsPerFrame()
}

// Present implements game.Presenter. Closing the window returns game.ErrQuit.
func (w *Window) Present(ctx context.Context, f *game.Frame) error {
	if rl.WindowShouldClose() {
		return game.ErrQuit
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	w.controls.HandleKeys()
	w.overlays.HandleKeys()
	w.spawnFeathers(f)
	w.particles.Update()

	rl.BeginDrawing()
	rl.ClearBackground(rl.SkyBlue)

	w.bg.DrawSky()
	for _, p := range f.Pipes {
		w.drawPipe(p)
	}
	w.bg.DrawGround(f.Ground.Y, f.Ground.X1, f.Ground.X2)

	for _, b := range f.Birds {
		if w.overlays.IsEnabled(ui.OverlaySightLines) && f.Active < len(f.Pipes) {
			w.drawSightLines(b, f.Pipes[f.Active])
		}
		w.drawBird(b)
	}
	w.particles.Draw()

	w.drawUI(f)
	rl.EndDrawing()
	return nil
}

func (w *Window) drawPipe(p game.PipeView) {
	x := int32(p.X)
	rl.DrawTexture(w.tex.PipeTop, x, int32(p.Top), rl.White)
	rl.DrawTexture(w.tex.PipeBottom, x, int32(p.Bottom), rl.White)

	if w.overlays.IsEnabled(ui.OverlayCollisionBoxes) {
		rl.DrawRectangleLines(x, int32(p.Top), int32(w.pipeW), int32(w.pipeH), rl.Green)
		rl.DrawRectangleLines(x, int32(p.Bottom), int32(w.pipeW), int32(w.pipeH), rl.Green)
	}
}

// drawSightLines connects the bird centre to both gap edges of the pipe it observes.
func (w *Window) drawSightLines(b game.BirdView, p game.PipeView) {
	centre := rl.Vector2{X: float32(b.X) + w.birdW/2, Y: float32(b.Y) + w.birdH/2}
	gapX := float32(p.X) + w.pipeW/2
	rl.DrawLineEx(centre, rl.Vector2{X: gapX, Y: float32(p.Height)}, 5, rl.Red)
	rl.DrawLineEx(centre, rl.Vector2{X: gapX, Y: float32(p.Bottom)}, 5, rl.Red)
}

// drawBird rotates the wing frame about its centre. Positive tilt is a
// counter-clockwise rotation on screen.
func (w *Window) drawBird(b game.BirdView) {
	tex := w.tex.Birds[b.Wing%sprites.BirdFrames]
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(tex.Width), Height: float32(tex.Height)}
	dst := rl.Rectangle{
		X:      float32(b.X) + w.birdW/2,
		Y:      float32(b.Y) + w.birdH/2,
		Width:  w.birdW,
		Height: w.birdH,
	}
	origin := rl.Vector2{X: w.birdW / 2, Y: w.birdH / 2}
	rl.DrawTexturePro(tex, src, dst, origin, float32(-b.Tilt), w.birdTint(b))

	if w.overlays.IsEnabled(ui.OverlayCollisionBoxes) {
		rl.DrawRectangleLines(int32(b.X), int32(b.Y), int32(w.birdW), int32(w.birdH), rl.Red)
	}
}

func (w *Window) birdTint(b game.BirdView) rl.Color {
	if !w.overlays.IsEnabled(ui.OverlaySpeciesColors) {
		return rl.White
	}
	return speciesColor(b.Species)
}

func speciesColor(id int) rl.Color {
	c := neural.ColorForSpecies(id)
	return rl.Color{R: c.R, G: c.G, B: c.B, A: 255}
}

// spawnFeathers bursts particles where birds disappeared since the last frame.
func (w *Window) spawnFeathers(f *game.Frame) {
	if f.Generation != w.lastGen {
		w.lastGen = f.Generation
		clear(w.lastBirds)
		w.particles.Clear()
	}

	seen := make(map[int]struct{}, len(f.Birds))
	for _, b := range f.Birds {
		seen[b.Seq] = struct{}{}
	}
	for seq, b := range w.lastBirds {
		if _, ok := seen[seq]; ok {
			continue
		}
		color := rl.Yellow
		if w.overlays.IsEnabled(ui.OverlaySpeciesColors) {
			color = speciesColor(b.Species)
		}
		w.particles.Burst(float32(b.X)+w.birdW/2, float32(b.Y)+w.birdH/2, 12, color)
		delete(w.lastBirds, seq)
	}
	for _, b := range f.Birds {
		w.lastBirds[b.Seq] = b
	}
}

func (w *Window) drawUI(f *game.Frame) {
	w.hud.Draw(ui.HUDData{
		Score:        f.Score,
		Generation:   f.Generation,
		Alive:        f.Alive,
		Tick:         f.Tick,
		Speed:        w.controls.Speed(),
		FPS:          rl.GetFPS(),
		Paused:       w.controls.Paused(),
		ScreenWidth:  int32(w.opts.Width),
		ScreenHeight: int32(w.opts.Height),
	})

	if w.overlays.IsEnabled(ui.OverlaySpeciesPanel) {
		counts := make(map[int]int)
		for _, b := range f.Birds {
			counts[b.Species]++
		}
		infos := make([]ui.SpeciesInfo, 0, len(counts))
		for id, n := range counts {
			infos = append(infos, ui.SpeciesInfo{ID: id, Alive: n, Color: speciesColor(id)})
		}
		w.species.Draw(infos)
	}
	if w.overlays.IsEnabled(ui.OverlayPerfPanel) && w.perf != nil {
		w.perfView.Draw(w.perf.Stats(), telemetry.Phases())
	}

	w.controls.Draw(w.overlays)
	w.hud.DrawControls(int32(w.opts.Height), controlsLegend)
}

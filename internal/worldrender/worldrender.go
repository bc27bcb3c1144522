// Package worldrender assembles and submits one frame's draw commands
// in the fixed order the original engine used: parallax backdrop,
// background tiles, mid-layer sprites, foreground tiles, in-front
// sprites, water overlay, screen shake, then screen flash. The HUD is
// not drawn here.
//
// The per-tick simulation and per-frame render are deliberately
// separate: this package only ever reads an immutable Snapshot, never
// live simulation state, so rendering can run on its own cadence
// without a lock held across a whole frame.
package worldrender

import (
	"duke2sim/internal/renderer"
	"duke2sim/internal/tilemap"
)

// DrawStyle mirrors the style tag an actor/sprite carries into the
// render pass.
type DrawStyle int

const (
	StyleNormal DrawStyle = iota
	StyleWhiteflash
	StyleInFront
	StyleInvisible
	StyleTranslucent
)

// SpriteDrawCmd draws one sprite frame at a position.
type SpriteDrawCmd struct {
	TextureID renderer.TextureID
	Frame     int
	X, Y      int
	Style     DrawStyle
}

// TileDrawCmd draws one tile-sized piece of debris/decoration outside
// the main tile layer.
type TileDrawCmd struct {
	TileIndex uint16
	X, Y      int
}

// WaterAreaCmd draws one water-covered screen region with a per-column
// animated distortion step.
type WaterAreaCmd struct {
	Left, Top int
	AnimStep  int
}

// CameraSnapshot is the camera state recorded at a tick boundary.
type CameraSnapshot struct {
	X, Y float64
}

// Lerp linearly interpolates between two camera positions by factor
// t in [0,1].
func (c CameraSnapshot) Lerp(to CameraSnapshot, t float64) CameraSnapshot {
	return CameraSnapshot{
		X: c.X + (to.X-c.X)*t,
		Y: c.Y + (to.Y-c.Y)*t,
	}
}

// Snapshot is the complete immutable per-tick render input: everything
// the world renderer needs to produce one frame without touching live
// simulation state.
type Snapshot struct {
	PrevCamera, CurrCamera CameraSnapshot
	Sprites                []SpriteDrawCmd
	TileDebris             []TileDrawCmd
	WaterAreas             []WaterAreaCmd
	RadarDots              []struct{ X, Y int }

	ScreenShiftPx int
	FlashColor    *renderer.ColorMod // nil means no flash queued this frame

	AutoScrollBackdrop bool
	BackdropOffsetX    int
}

// World pairs a tile map with the per-frame Renderer it draws to.
type World struct {
	Tiles           *tilemap.Map
	Renderer        renderer.Renderer
	MotionSmoothing bool
	ViewportCols    int
	ViewportRows    int
	TileSizePx      int

	BackdropTexture renderer.TextureID
	TileAtlas       renderer.TextureID
}

// animFrame returns the current animated-tile frame (0..3), halved in
// rate for SLOW_ANIMATION tiles.
func animFrame(slowTickCount uint64, slow bool) int {
	rate := slowTickCount / 16 // 140/16 Hz ~= one step per game frame group
	if slow {
		rate /= 2
	}
	return int(rate % 4)
}

// Render draws one complete frame from snap at the given
// interpolation factor (how far into the next logic tick the
// accumulator sits) and slowTickCount (for animated-tile timing).
func (w *World) Render(snap Snapshot, interpolation float64, slowTickCount uint64) {
	r := w.Renderer
	r.Clear()

	camera := snap.CurrCamera
	if w.MotionSmoothing {
		camera = snap.PrevCamera.Lerp(snap.CurrCamera, clamp01(interpolation))
	}

	w.drawBackdrop(snap, camera)
	w.drawTileLayer(camera, slowTickCount, false /* background only */)
	w.drawSprites(snap.Sprites, camera, false)
	w.drawTileLayer(camera, slowTickCount, true /* foreground only */)
	w.drawSprites(snap.Sprites, camera, true)
	w.drawWaterAreas(snap.WaterAreas, camera)
	w.applyScreenShake(snap.ScreenShiftPx)
	w.applyFlash(snap.FlashColor)

	r.SubmitBatch()
	r.SwapBuffers()
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func (w *World) drawBackdrop(snap Snapshot, camera CameraSnapshot) {
	x := -int(camera.X) / 4 // parallax factor: backdrop moves at 1/4 camera speed
	if snap.AutoScrollBackdrop {
		x += snap.BackdropOffsetX
	}
	w.Renderer.DrawTexture(w.BackdropTexture,
		renderer.Rect{W: w.ViewportCols * w.TileSizePx, H: w.ViewportRows * w.TileSizePx},
		renderer.Rect{X: x, Y: 0, W: w.ViewportCols * w.TileSizePx, H: w.ViewportRows * w.TileSizePx},
		renderer.White)
}

// drawTileLayer draws every visible tile matching foregroundOnly
// against the FOREGROUND attribute bit, advancing ANIMATED tiles
// through their 4-frame cycle.
func (w *World) drawTileLayer(camera CameraSnapshot, slowTickCount uint64, foregroundOnly bool) {
	if w.Tiles == nil {
		return
	}

	originTx := int(camera.X) / w.TileSizePx
	originTy := int(camera.Y) / w.TileSizePx

	for ty := 0; ty <= w.ViewportRows; ty++ {
		for tx := 0; tx <= w.ViewportCols; tx++ {
			wtx, wty := originTx+tx, originTy+ty
			idx := w.Tiles.TileAt(wtx, wty)
			attrs := w.Tiles.Attributes(idx)

			isForeground := attrs&tilemap.Foreground != 0
			if isForeground != foregroundOnly {
				continue
			}

			frame := 0
			if attrs&tilemap.Animated != 0 {
				frame = animFrame(slowTickCount, attrs&tilemap.SlowAnimation != 0)
			}

			screenX := wtx*w.TileSizePx - int(camera.X)
			screenY := wty*w.TileSizePx - int(camera.Y)
			w.Renderer.DrawTexture(w.TileAtlas,
				renderer.Rect{X: int(idx)*w.TileSizePx + frame*w.TileSizePx, Y: 0, W: w.TileSizePx, H: w.TileSizePx},
				renderer.Rect{X: screenX, Y: screenY, W: w.TileSizePx, H: w.TileSizePx},
				renderer.White)
		}
	}
}

func (w *World) drawSprites(sprites []SpriteDrawCmd, camera CameraSnapshot, inFrontOnly bool) {
	for _, s := range sprites {
		isInFront := s.Style == StyleInFront
		if isInFront != inFrontOnly {
			continue
		}
		if s.Style == StyleInvisible {
			continue
		}

		mod := renderer.White
		switch s.Style {
		case StyleWhiteflash:
			mod = renderer.ColorMod{R: 255, G: 255, B: 255, A: 255}
		case StyleTranslucent:
			mod = renderer.ColorMod{R: 255, G: 255, B: 255, A: 140}
		}

		w.Renderer.DrawTexture(s.TextureID,
			renderer.Rect{X: s.Frame * w.TileSizePx, Y: 0, W: w.TileSizePx, H: w.TileSizePx},
			renderer.Rect{X: s.X - int(camera.X), Y: s.Y - int(camera.Y), W: w.TileSizePx, H: w.TileSizePx},
			mod)
	}
}

func (w *World) drawWaterAreas(areas []WaterAreaCmd, camera CameraSnapshot) {
	for _, a := range areas {
		w.Renderer.DrawRectangle(
			renderer.Rect{X: a.Left - int(camera.X), Y: a.Top - int(camera.Y), W: w.TileSizePx, H: w.TileSizePx},
			renderer.ColorMod{R: 40, G: 80, B: 180, A: 120},
			true,
		)
	}
}

func (w *World) applyScreenShake(shiftPx int) {
	if shiftPx == 0 {
		return
	}
	w.Renderer.SetGlobalTranslation(shiftPx, 0)
}

func (w *World) applyFlash(color *renderer.ColorMod) {
	if color == nil {
		return
	}
	w.Renderer.DrawRectangle(
		renderer.Rect{X: 0, Y: 0, W: w.ViewportCols * w.TileSizePx, H: w.ViewportRows * w.TileSizePx},
		*color,
		true,
	)
}

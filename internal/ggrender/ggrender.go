// Package ggrender is a gg.Context-backed concrete implementation of
// internal/renderer.Renderer, good enough to golden-test the world
// renderer's output and export frames with Snapshot or SavePNG without
// a real game asset pipeline. It is not a production rendering backend:
// texture "upload" just registers an image.Image, looked up by id at
// draw time.
package ggrender

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"

	"duke2sim/internal/renderer"
)

// Backend rasterizes draw calls into an in-memory gg.Context.
type Backend struct {
	mu sync.Mutex

	width, height int
	dc            *gg.Context

	textures   map[renderer.TextureID]image.Image
	nextTexID  renderer.TextureID
	target     renderer.TextureID // 0 means the default framebuffer

	translateX, translateY int
	scale                  float64
	clip                   *renderer.Rect
}

// New creates a Backend with a default framebuffer of the given pixel
// size.
func New(width, height int) *Backend {
	return &Backend{
		width:    width,
		height:   height,
		dc:       gg.NewContext(width, height),
		textures: make(map[renderer.TextureID]image.Image),
		scale:    1,
	}
}

var _ renderer.Renderer = (*Backend)(nil)

// Clear resets the active render target to transparent black.
func (b *Backend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dc.SetColor(color.RGBA{})
	b.dc.Clear()
}

// SubmitBatch is a no-op for this backend: every draw call is applied
// immediately to the gg.Context.
func (b *Backend) SubmitBatch() {}

// SwapBuffers is a no-op: Snapshot() always reflects the latest draws.
func (b *Backend) SwapBuffers() {}

func colorModToRGBA(m renderer.ColorMod) color.RGBA {
	return color.RGBA{R: m.R, G: m.G, B: m.B, A: m.A}
}

func (b *Backend) toScreen(x, y int) (int, int) {
	return int(float64(x+b.translateX) * b.scale), int(float64(y+b.translateY) * b.scale)
}

// DrawTexture blits a region of a previously created texture to dest.
// mod is not applied; the texture is drawn untinted.
func (b *Backend) DrawTexture(id renderer.TextureID, src, dest renderer.Rect, mod renderer.ColorMod) {
	b.mu.Lock()
	defer b.mu.Unlock()

	img, ok := b.textures[id]
	if !ok {
		return
	}

	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	var piece image.Image = img
	if ok {
		piece = sub.SubImage(image.Rect(src.X, src.Y, src.X+src.W, src.Y+src.H))
	}

	x, y := b.toScreen(dest.X, dest.Y)
	b.dc.Push()
	b.dc.DrawImage(piece, x, y)
	b.dc.Pop()
	_ = mod // tinting left to the asset pipeline; this backend is test/dev-only
}

// DrawRectangle draws a filled or outlined rectangle.
func (b *Backend) DrawRectangle(dest renderer.Rect, mod renderer.ColorMod, filled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	x, y := b.toScreen(dest.X, dest.Y)
	b.dc.SetColor(colorModToRGBA(mod))
	b.dc.DrawRectangle(float64(x), float64(y), float64(dest.W)*b.scale, float64(dest.H)*b.scale)
	if filled {
		b.dc.Fill()
	} else {
		b.dc.Stroke()
	}
}

// DrawLine draws a single line segment.
func (b *Backend) DrawLine(x0, y0, x1, y1 int, mod renderer.ColorMod) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sx0, sy0 := b.toScreen(x0, y0)
	sx1, sy1 := b.toScreen(x1, y1)
	b.dc.SetColor(colorModToRGBA(mod))
	b.dc.DrawLine(float64(sx0), float64(sy0), float64(sx1), float64(sy1))
	b.dc.Stroke()
}

// SetRenderTarget records id as the active render target (0 meaning
// the default framebuffer). Draws are not redirected: every draw call
// still lands in the default framebuffer.
func (b *Backend) SetRenderTarget(id renderer.TextureID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.target = id
}

// CreateTexture registers a raw RGBA image buffer as a drawable
// texture and returns its id.
func (b *Backend) CreateTexture(pixels []byte, w, h int) (renderer.TextureID, error) {
	if len(pixels) != w*h*4 {
		return 0, fmt.Errorf("ggrender: pixel buffer length %d does not match %dx%d RGBA", len(pixels), w, h)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, pixels)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextTexID++
	id := b.nextTexID
	b.textures[id] = img
	return id, nil
}

// CreateRenderTargetTexture allocates a blank texture that can be
// selected as the active render target.
func (b *Backend) CreateRenderTargetTexture(w, h int) (renderer.TextureID, error) {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextTexID++
	id := b.nextTexID
	b.textures[id] = img
	return id, nil
}

// SetClipRect restricts subsequent draws to rect, or clears the clip
// when rect is the zero value.
func (b *Backend) SetClipRect(rect renderer.Rect) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if rect == (renderer.Rect{}) {
		b.clip = nil
		b.dc.ResetClip()
		return
	}
	b.clip = &rect
	b.dc.DrawRectangle(float64(rect.X), float64(rect.Y), float64(rect.W), float64(rect.H))
	b.dc.Clip()
}

// SetGlobalTranslation offsets every subsequent draw call, used for
// screen-shake.
func (b *Backend) SetGlobalTranslation(x, y int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.translateX, b.translateY = x, y
}

// SetGlobalScale scales every subsequent draw call.
func (b *Backend) SetGlobalScale(scale float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if scale <= 0 {
		scale = 1
	}
	b.scale = scale
}

// Snapshot returns the current contents of the default framebuffer.
func (b *Backend) Snapshot() image.Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dc.Image()
}

// SavePNG writes the current framebuffer to path as a PNG file.
func (b *Backend) SavePNG(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dc.SavePNG(path)
}

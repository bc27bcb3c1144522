// Package renderer defines the drawing surface the simulation renders
// against. The concrete implementation (pixel decoding, GPU/software
// rasterization) is an external collaborator; internal/ggrender
// provides a dev/test-only concrete adapter.
package renderer

// Rect is an axis-aligned rectangle in pixel space, used for both
// source sprite-sheet regions and destination screen regions.
type Rect struct {
	X, Y, W, H int
}

// ColorMod is an RGBA color modulation applied to a drawn texture —
// used for hit-flash tinting, the death-screen fade, and the mercy
// frame blink.
type ColorMod struct {
	R, G, B, A uint8
}

// White is the identity color modulation (no tint, fully opaque).
var White = ColorMod{R: 255, G: 255, B: 255, A: 255}

// TextureID identifies a texture previously created via CreateTexture
// or CreateRenderTargetTexture.
type TextureID int

// Renderer is the drawing surface the world renderer and HUD submit
// commands to, once per rendered frame.
type Renderer interface {
	Clear()
	SubmitBatch()
	SwapBuffers()

	DrawTexture(id TextureID, src, dest Rect, mod ColorMod)
	DrawRectangle(dest Rect, mod ColorMod, filled bool)
	DrawLine(x0, y0, x1, y1 int, mod ColorMod)

	SetRenderTarget(id TextureID)
	CreateTexture(image []byte, width, height int) (TextureID, error)
	CreateRenderTargetTexture(width, height int) (TextureID, error)

	SetClipRect(rect Rect)
	SetGlobalTranslation(x, y int)
	SetGlobalScale(scale float64)
}

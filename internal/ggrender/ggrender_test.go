package ggrender

import (
	"image/color"
	"testing"

	"duke2sim/internal/renderer"
)

func TestCreateTextureRejectsMismatchedBufferLength(t *testing.T) {
	b := New(64, 64)
	_, err := b.CreateTexture(make([]byte, 10), 4, 4)
	if err == nil {
		t.Fatal("expected an error for a pixel buffer that doesn't match w*h*4")
	}
}

func TestDrawRectangleFilledPaintsPixels(t *testing.T) {
	b := New(16, 16)
	b.Clear()
	b.DrawRectangle(renderer.Rect{X: 2, Y: 2, W: 4, H: 4}, renderer.ColorMod{R: 255, A: 255}, true)

	img := b.Snapshot()
	r, _, _, a := img.At(4, 4).RGBA()
	if a == 0 {
		t.Fatal("expected the filled rectangle to paint an opaque pixel at (4,4)")
	}
	if uint8(r>>8) != 255 {
		t.Errorf("red channel = %d, want 255", uint8(r>>8))
	}
}

func TestSetGlobalTranslationShiftsSubsequentDraws(t *testing.T) {
	b := New(32, 32)
	b.Clear()
	b.SetGlobalTranslation(10, 10)
	b.DrawRectangle(renderer.Rect{X: 0, Y: 0, W: 2, H: 2}, renderer.ColorMod{G: 255, A: 255}, true)

	img := b.Snapshot()
	_, _, _, aAtOrigin := img.At(1, 1).RGBA()
	_, _, _, aAtShifted := img.At(11, 11).RGBA()
	if aAtOrigin != 0 {
		t.Error("expected no paint at the untranslated origin")
	}
	if aAtShifted == 0 {
		t.Error("expected paint at the translated position")
	}
}

func TestCreateTextureAndDrawRoundTrips(t *testing.T) {
	b := New(8, 8)
	b.Clear()

	pixels := make([]byte, 4*4*4)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i] = 0
		pixels[i+1] = 0
		pixels[i+2] = 255
		pixels[i+3] = 255
	}
	id, err := b.CreateTexture(pixels, 4, 4)
	if err != nil {
		t.Fatalf("CreateTexture returned error: %v", err)
	}

	b.DrawTexture(id, renderer.Rect{X: 0, Y: 0, W: 4, H: 4}, renderer.Rect{X: 2, Y: 2, W: 4, H: 4}, renderer.White)

	img := b.Snapshot()
	got := color.NRGBAModel.Convert(img.At(3, 3)).(color.NRGBA)
	if got.B != 255 || got.A == 0 {
		t.Errorf("At(3,3) = %+v, want the blue texture pixel drawn through", got)
	}
}

func TestSetClipRectZeroValueClearsClip(t *testing.T) {
	b := New(16, 16)
	b.SetClipRect(renderer.Rect{X: 0, Y: 0, W: 8, H: 8})
	b.SetClipRect(renderer.Rect{}) // clear
	// Should not panic and should allow drawing outside the old clip region.
	b.Clear()
	b.DrawRectangle(renderer.Rect{X: 12, Y: 12, W: 2, H: 2}, renderer.ColorMod{R: 255, A: 255}, true)

	img := b.Snapshot()
	_, _, _, a := img.At(13, 13).RGBA()
	if a == 0 {
		t.Error("expected drawing outside the old clip region to succeed once clip is cleared")
	}
}

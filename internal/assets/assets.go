// Package assets defines the by-name resource provider the simulation
// requests game data through: level maps, tilesets, sprites, palettes,
// sound samples, music, script bundles, and the demo input stream. The
// concrete decode (original data-file formats) is an external
// collaborator; this package only fixes the request surface and the
// well-known resource names.
package assets

import (
	"io"

	"duke2sim/internal/script"
)

// Well-known resource names the core requests directly.
const (
	ScriptBundleText    = "TEXT.MNI"
	ScriptBundleOptions = "OPTIONS.MNI"
	ScriptBundleOrder   = "ORDERTXT.MNI"
	AntiPiracyImage     = "LCR.MNI"
	DemoInputStream     = "NUKEM2.MNI"
)

// LevelMapName returns the conventional file name for level n of the
// given episode.
func LevelMapName(episode, level int) string {
	// Levels are numbered continuously within the data set; episode is
	// accepted for call-site clarity even though the original's naming
	// only varies by level index.
	_ = episode
	return levelFileName(level)
}

func levelFileName(level int) string {
	const letters = "0123456789"
	if level < 0 || level >= len(letters) {
		return "L0.MNI"
	}
	return "L" + string(letters[level]) + ".MNI"
}

// Palette is a 256-entry RGB color table.
type Palette [256][3]byte

// Provider is the asset lookup surface the simulation consumes.
type Provider interface {
	// OpenMap returns the raw level map data for name (e.g. "L2.MNI").
	OpenMap(name string) (io.ReadCloser, error)

	// OpenTileset returns the raw tileset image data for name.
	OpenTileset(name string) (io.ReadCloser, error)

	// OpenSprite returns the raw sprite-sheet data for name.
	OpenSprite(name string) (io.ReadCloser, error)

	// Palette returns the named palette.
	Palette(name string) (Palette, error)

	// OpenSound returns the raw AdLib/SoundBlaster sample data for id.
	OpenSound(id string) (io.ReadCloser, error)

	// OpenMusic returns the raw IMF music data for name.
	OpenMusic(name string) (io.ReadCloser, error)

	// ScriptBundle returns the decoded script bundle for name (one of
	// the ScriptBundle* constants).
	ScriptBundle(name string) (map[string]script.Script, error)

	// DemoStream returns the raw demo input byte stream.
	DemoStream() ([]byte, error)

	// AntiPiracyImage returns the raw anti-piracy check image data.
	AntiPiracyImage() (io.ReadCloser, error)
}

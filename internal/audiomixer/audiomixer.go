// Package audiomixer defines the sound/music playback surface the
// simulation drives. The concrete decode/mix implementation is an
// external collaborator; internal/ggaudio provides a dev/test-only
// concrete adapter backed by beep/vorbis.
package audiomixer

// SoundID identifies a loaded sound effect.
type SoundID string

// AudioMixer is the sound/music playback surface consumed by gameplay
// code (weapon fire, pickups, the HUD message typewriter) and the
// script sequencer (music cues between levels).
type AudioMixer interface {
	PlaySound(id SoundID)
	StopSound(id SoundID)
	StopAllSounds()

	PlayMusic(name string)
	StopMusic()

	SetMusicVolume(volume float64)
	SetSoundVolume(volume float64)
}

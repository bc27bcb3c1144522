// Package ggaudio is a beep/vorbis-backed concrete implementation of
// internal/audiomixer.AudioMixer, streaming OGG music with an
// on-demand decoder rather than loading whole tracks into memory, for
// local dev builds and tests. It mixes raw PCM sound effects supplied
// by an asset provider with a single streamed music track.
package ggaudio

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/vorbis"

	"duke2sim/internal/assets"
	"duke2sim/internal/audiomixer"
	"duke2sim/internal/gamelog"
)

var _ audiomixer.AudioMixer = (*Mixer)(nil)

const (
	defaultSampleRate = 44100
	defaultChannels   = 2
	framesPerSecond   = 30
)

type activeSound struct {
	id       audiomixer.SoundID
	data     []int16
	position int
}

// Mixer streams a music track and mixes it with any queued sound
// effects into fixed-size PCM frames.
type Mixer struct {
	mu sync.Mutex

	assets assets.Provider

	sampleRate      int
	samplesPerFrame int

	soundCache   map[audiomixer.SoundID][]int16
	activeSounds []*activeSound

	music      *musicStream
	musicName  string
	musicVol   float64
	soundVol   float64

	mixBuffer []int32
}

// New creates a Mixer that loads sound samples on demand from
// provider.
func New(provider assets.Provider) *Mixer {
	samplesPerFrame := defaultSampleRate / framesPerSecond
	return &Mixer{
		assets:          provider,
		sampleRate:      defaultSampleRate,
		samplesPerFrame: samplesPerFrame,
		soundCache:      make(map[audiomixer.SoundID][]int16),
		musicVol:        0.35,
		soundVol:        0.6,
		mixBuffer:       make([]int32, samplesPerFrame*defaultChannels),
	}
}

// PlaySound queues a sound effect for the next frames until it's
// exhausted. Up to 8 concurrent sounds are mixed; beyond that the
// oldest is dropped, matching the teacher's bounded active-sound list.
func (m *Mixer) PlaySound(id audiomixer.SoundID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.soundCache[id]
	if !ok {
		r, err := m.assets.OpenSound(string(id))
		if err != nil {
			gamelog.Warn("ggaudio: sound %q not available: %v", id, err)
			return
		}
		defer r.Close()
		pcm, err := io.ReadAll(r)
		if err != nil {
			gamelog.Warn("ggaudio: failed reading sound %q: %v", id, err)
			return
		}
		data = bytesToInt16(pcm)
		m.soundCache[id] = data
	}

	m.activeSounds = append(m.activeSounds, &activeSound{id: id, data: data})
	if len(m.activeSounds) > 8 {
		m.activeSounds = m.activeSounds[1:]
	}
}

// StopSound removes all queued instances of a sound effect.
func (m *Mixer) StopSound(id audiomixer.SoundID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	alive := m.activeSounds[:0]
	for _, s := range m.activeSounds {
		if s.id != id {
			alive = append(alive, s)
		}
	}
	m.activeSounds = alive
}

// StopAllSounds clears every queued sound effect.
func (m *Mixer) StopAllSounds() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeSounds = m.activeSounds[:0]
}

// PlayMusic opens and streams a named music track, replacing any
// track currently playing.
func (m *Mixer) PlayMusic(name string) {
	r, err := m.assets.OpenMusic(name)
	if err != nil {
		gamelog.Warn("ggaudio: music %q not available: %v", name, err)
		return
	}

	stream, err := newMusicStream(r, m.sampleRate)
	if err != nil {
		gamelog.Warn("ggaudio: failed decoding music %q: %v", name, err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.music != nil {
		m.music.Close()
	}
	m.music = stream
	m.musicName = name
}

// StopMusic stops and releases the current music stream.
func (m *Mixer) StopMusic() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.music != nil {
		m.music.Close()
		m.music = nil
	}
	m.musicName = ""
}

// SetMusicVolume sets the music mix level in [0,1].
func (m *Mixer) SetMusicVolume(volume float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.musicVol = clamp01(volume)
}

// SetSoundVolume sets the sound-effect mix level in [0,1].
func (m *Mixer) SetSoundVolume(volume float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.soundVol = clamp01(volume)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// GenerateFrame mixes the current music and active sound effects into
// one frame of interleaved 16-bit stereo PCM, soft-limited to avoid
// clipping when multiple sources overlap.
func (m *Mixer) GenerateFrame() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.mixBuffer {
		m.mixBuffer[i] = 0
	}

	if m.music != nil {
		samples := m.music.ReadSamples(m.samplesPerFrame)
		for i := 0; i < len(m.mixBuffer) && i < len(samples); i++ {
			m.mixBuffer[i] += int32(float64(samples[i]) * m.musicVol)
		}
	}

	alive := m.activeSounds[:0]
	for _, s := range m.activeSounds {
		remaining := len(s.data) - s.position
		if remaining <= 0 {
			continue
		}
		toRead := len(m.mixBuffer)
		if toRead > remaining {
			toRead = remaining
		}
		for i := 0; i < toRead; i++ {
			m.mixBuffer[i] += int32(float64(s.data[s.position+i]) * m.soundVol)
		}
		s.position += toRead
		if s.position < len(s.data) {
			alive = append(alive, s)
		}
	}
	m.activeSounds = alive

	out := make([]byte, len(m.mixBuffer)*2)
	for i, sample := range m.mixBuffer {
		out32 := softLimit(sample)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(out32)))
	}
	return out
}

func softLimit(sample int32) int32 {
	switch {
	case sample > 30000:
		sample = 30000 + (sample-30000)/4
	case sample < -30000:
		sample = -30000 + (sample+30000)/4
	}
	if sample > 32767 {
		sample = 32767
	} else if sample < -32768 {
		sample = -32768
	}
	return sample
}

func bytesToInt16(raw []byte) []int16 {
	n := len(raw) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return out
}

// musicStream wraps a beep-decoded, resampled-to-target-rate Vorbis
// stream and loops seamlessly at end of track.
type musicStream struct {
	streamer beep.StreamSeekCloser
	resample beep.Streamer
	buf      [][2]float64
}

func newMusicStream(r io.ReadCloser, targetSampleRate int) (*musicStream, error) {
	streamer, format, err := vorbis.Decode(r)
	if err != nil {
		r.Close()
		return nil, err
	}

	var resampled beep.Streamer = streamer
	if int(format.SampleRate) != targetSampleRate {
		resampled = beep.Resample(4, format.SampleRate, beep.SampleRate(targetSampleRate), streamer)
	}

	return &musicStream{
		streamer: streamer,
		resample: resampled,
	}, nil
}

// ReadSamples returns numStereoSamples*2 interleaved int16 samples,
// seeking back to the start of the stream and continuing seamlessly
// when it runs out.
func (s *musicStream) ReadSamples(numStereoSamples int) []int16 {
	if cap(s.buf) < numStereoSamples {
		s.buf = make([][2]float64, numStereoSamples)
	}
	buf := s.buf[:numStereoSamples]

	n, ok := s.resample.Stream(buf)
	if !ok || n < numStereoSamples {
		_ = s.streamer.Seek(0)
		if n < numStereoSamples {
			s.resample.Stream(buf[n:numStereoSamples])
		}
	}

	out := make([]int16, numStereoSamples*2)
	for i := 0; i < numStereoSamples; i++ {
		out[i*2] = floatToInt16(buf[i][0])
		out[i*2+1] = floatToInt16(buf[i][1])
	}
	return out
}

func floatToInt16(sample float64) int16 {
	return int16(softLimit(int32(sample * 32767.0)))
}

// Close releases the underlying decoder and file handle.
func (s *musicStream) Close() {
	s.streamer.Close()
}

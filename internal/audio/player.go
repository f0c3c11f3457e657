package audio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// speakerLatency is how much audio the speaker buffers ahead.
const speakerLatency = 100 * time.Millisecond

type decodeFunc func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

// decoders maps lower-case file extensions to their beep decoder.
var decoders = map[string]decodeFunc{
	".wav": func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(rc) },
	".ogg": vorbis.Decode,
	".oga": vorbis.Decode,
	".mp3": mp3.Decode,
}

// ErrUnsupportedFormat is returned for sound files no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported sound format")

func decoderFor(path string) (decodeFunc, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if d, ok := decoders[ext]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Player plays feedback cues through the default audio device. Cues are
// decoded into memory once and replayed from there.
type Player struct {
	logger *slog.Logger

	mu     sync.Mutex
	volume float64
	rate   beep.SampleRate // zero until the speaker is opened
	cues   map[string]*beep.Buffer
}

// NewPlayer creates a player at full volume. The speaker is opened with the
// sample rate of the first cue decoded.
func NewPlayer(logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		logger: logger,
		volume: 1,
		cues:   make(map[string]*beep.Buffer),
	}
}

// SetVolume sets the linear playback volume, clamped to 0..1.
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = math.Max(0, math.Min(1, volume))
}

// GetVolume returns the linear playback volume.
func (p *Player) GetVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Play starts the cue at path and returns without waiting for it to end.
func (p *Player) Play(path string) error {
	if path == "" {
		return nil
	}
	cue, err := p.cue(expandPath(path))
	if err != nil {
		return err
	}

	p.mu.Lock()
	volume, rate := p.volume, p.rate
	p.mu.Unlock()
	if volume == 0 {
		return nil
	}

	var s beep.Streamer = cue.Streamer(0, cue.Len())
	if from := cue.Format().SampleRate; from != rate {
		s = beep.Resample(4, from, rate, s)
	}
	if volume < 1 {
		s = &effects.Volume{Streamer: s, Base: 2, Volume: gainExponent(volume)}
	}
	speaker.Play(s)
	return nil
}

// Preload decodes the cue at path so its first Play starts promptly.
func (p *Player) Preload(path string) error {
	if path == "" {
		return nil
	}
	_, err := p.cue(expandPath(path))
	return err
}

// cue returns the decoded sound at path, decoding it on first use.
func (p *Player) cue(path string) (*beep.Buffer, error) {
	p.mu.Lock()
	buf, ok := p.cues[path]
	p.mu.Unlock()
	if ok {
		return buf, nil
	}

	buf, err := p.decode(path)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.openSpeakerLocked(buf.Format().SampleRate); err != nil {
		return nil, err
	}
	p.cues[path] = buf
	p.logger.Debug("decoded cue", "path", path, "duration", buf.Format().SampleRate.D(buf.Len()))
	return buf, nil
}

func (p *Player) decode(path string) (*beep.Buffer, error) {
	decode, err := decoderFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cue: %w", err)
	}
	stream, format, err := decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = stream.Close() }()

	buf := beep.NewBuffer(format)
	buf.Append(stream)
	return buf, nil
}

func (p *Player) openSpeakerLocked(rate beep.SampleRate) error {
	if p.rate != 0 {
		return nil
	}
	if err := speaker.Init(rate, rate.N(speakerLatency)); err != nil {
		return fmt.Errorf("open speaker: %w", err)
	}
	p.rate = rate
	p.logger.Debug("speaker opened", "sample_rate", rate)
	return nil
}

// InvalidateCache forgets the decoded cue at path.
func (p *Player) InvalidateCache(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cues, path)
}

// ClearCache forgets every decoded cue.
func (p *Player) ClearCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.cues)
}

// Close stops playback and closes the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rate != 0 {
		speaker.Clear()
		speaker.Close()
		p.rate = 0
	}
	clear(p.cues)
}

// gainExponent returns the base 2 exponent that scales samples by volume.
func gainExponent(volume float64) float64 {
	return math.Log2(volume)
}

// expandPath expands a leading ~ to the home directory.
func expandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}

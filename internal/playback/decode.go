package playback

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// bytesPerFrame is one 16-bit little-endian stereo frame, the layout every
// decoder below produces.
const bytesPerFrame = 4

type pcmStream interface {
	io.ReadSeeker
	Length() int64
}

// decode picks a decoder from the locator's extension and resamples to
// sampleRate.
func decode(locator string, data []byte, sampleRate int) (pcmStream, error) {
	src := bytes.NewReader(data)

	switch ext := locatorExt(locator); ext {
	case ".ogg", ".oga":
		return vorbis.DecodeWithSampleRate(sampleRate, src)
	case ".mp3":
		return mp3.DecodeWithSampleRate(sampleRate, src)
	case ".wav":
		return wav.DecodeWithSampleRate(sampleRate, src)
	default:
		return nil, fmt.Errorf("unsupported audio format %q", ext)
	}
}

func locatorExt(locator string) string {
	p := locator
	if u, err := url.Parse(locator); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		p = u.Path
	}
	return strings.ToLower(path.Ext(p))
}

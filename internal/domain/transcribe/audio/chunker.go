package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"
)

const defaultSampleRate = 16000

// Stream delivers fixed-duration chunks of mono 16-bit little-endian
// PCM. Err reports a decode failure after C is closed.
type Stream struct {
	C          <-chan []byte
	SampleRate int

	errc <-chan error
}

// Err returns the decode error, if any. Call after C is drained.
func (s *Stream) Err() error {
	select {
	case err := <-s.errc:
		return err
	default:
		return nil
	}
}

// Chunk opens a media file and streams it as PCM chunks of chunkMS
// milliseconds each. MP3 input is decoded and downmixed to mono; any
// other input is assumed to already be raw 16 kHz mono PCM.
func Chunk(ctx context.Context, path string, chunkMS int) (*Stream, error) {
	if chunkMS <= 0 {
		chunkMS = 200
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}

	var (
		src        io.Reader = file
		sampleRate           = defaultSampleRate
		stereo     bool
	)
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		decoder, err := mp3.NewDecoder(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("decode mp3: %w", err)
		}
		src = decoder
		sampleRate = decoder.SampleRate()
		stereo = true // go-mp3 always emits 16-bit stereo
	}

	out := make(chan []byte)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer file.Close()

		bytesPerSample := 2
		if stereo {
			bytesPerSample = 4
		}
		readSize := sampleRate * bytesPerSample * chunkMS / 1000

		buf := make([]byte, readSize)
		for {
			n, err := io.ReadFull(src, buf)
			if n > 0 {
				chunk := buf[:n]
				if stereo {
					chunk = downmix(chunk)
				}
				sent := make([]byte, len(chunk))
				copy(sent, chunk)
				select {
				case out <- sent:
				case <-ctx.Done():
					errc <- ctx.Err()
					return
				}
			}
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return
			}
			if err != nil {
				errc <- fmt.Errorf("read audio: %w", err)
				return
			}
		}
	}()

	return &Stream{C: out, SampleRate: sampleRate, errc: errc}, nil
}

// downmix averages interleaved stereo samples into mono in place.
func downmix(stereo []byte) []byte {
	frames := len(stereo) / 4
	mono := stereo[:frames*2]
	for i := 0; i < frames; i++ {
		left := int16(uint16(stereo[i*4]) | uint16(stereo[i*4+1])<<8)
		right := int16(uint16(stereo[i*4+2]) | uint16(stereo[i*4+3])<<8)
		avg := int16((int32(left) + int32(right)) / 2)
		mono[i*2] = byte(avg)
		mono[i*2+1] = byte(avg >> 8)
	}
	return mono
}

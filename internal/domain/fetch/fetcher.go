package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"

	ytdl "github.com/kkdai/youtube/v2"
)

// Result describes a downloaded media file. Path points at a temporary
// file the caller must remove when done with it.
type Result struct {
	Path     string
	Title    string
	MimeType string
}

// Fetcher downloads the media behind a URL into destDir.
type Fetcher interface {
	Fetch(ctx context.Context, mediaURL string, destDir string) (*Result, error)
}

// IsYouTubeURL reports whether the URL points at a YouTube video.
func IsYouTubeURL(mediaURL string) bool {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return host == "youtube.com" || host == "m.youtube.com" || host == "youtu.be"
}

// YouTubeFetcher downloads the highest-bitrate audio-only track of a
// YouTube video.
type YouTubeFetcher struct {
	client ytdl.Client
}

func NewYouTubeFetcher() *YouTubeFetcher {
	return &YouTubeFetcher{}
}

func (f *YouTubeFetcher) Fetch(ctx context.Context, mediaURL string, destDir string) (*Result, error) {
	video, err := f.client.GetVideoContext(ctx, mediaURL)
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}

	format, err := selectAudioFormat(video)
	if err != nil {
		return nil, err
	}

	stream, _, err := f.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("get stream: %w", err)
	}
	defer stream.Close()

	file, err := os.CreateTemp(destDir, "media-*"+extensionFor(format.MimeType))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(file, stream); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, fmt.Errorf("download: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	return &Result{Path: file.Name(), Title: video.Title, MimeType: format.MimeType}, nil
}

// selectAudioFormat picks the audio-only format with the highest
// bitrate, preferring the default audio track when several exist.
func selectAudioFormat(video *ytdl.Video) (*ytdl.Format, error) {
	var audio []*ytdl.Format
	for i := range video.Formats {
		f := &video.Formats[i]
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		if f.AudioTrack != nil && !f.AudioTrack.AudioIsDefault {
			continue
		}
		audio = append(audio, f)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("no audio formats available for %q", video.ID)
	}
	sort.Slice(audio, func(i, j int) bool {
		return audio[i].Bitrate > audio[j].Bitrate
	})
	return audio[0], nil
}

func extensionFor(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "mp4"):
		return ".m4a"
	case strings.Contains(mimeType, "webm"):
		return ".webm"
	case strings.Contains(mimeType, "mpeg"):
		return ".mp3"
	default:
		return ".audio"
	}
}

// HTTPFetcher downloads a media file over plain HTTP. Used for direct
// links to audio files (podcast enclosures and the like).
type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: http.DefaultClient}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, mediaURL string, destDir string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, mediaURL)
	}

	mimeType := resp.Header.Get("Content-Type")
	file, err := os.CreateTemp(destDir, "media-*"+extensionFor(mimeType))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, fmt.Errorf("download: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	return &Result{Path: file.Name(), Title: titleFromURL(mediaURL), MimeType: mimeType}, nil
}

func titleFromURL(mediaURL string) string {
	u, err := url.Parse(mediaURL)
	if err != nil || u.Path == "" {
		return mediaURL
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	return parts[len(parts)-1]
}

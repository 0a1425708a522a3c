// Package extractor shells out to yt-dlp for SoundCloud metadata. The rest
// of the application treats it as an opaque call: URL in, metadata out,
// possibly failing.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

type YTDLP struct {
	binPath string
	timeout time.Duration
}

func NewYTDLP(binPath string, timeout time.Duration) *YTDLP {
	return &YTDLP{
		binPath: binPath,
		timeout: timeout,
	}
}

// Extract runs one extraction. Flat mode enumerates playlist entries without
// per-track detail; non-flat mode resolves full metadata including formats.
func (y *YTDLP) Extract(ctx context.Context, url string, flat bool) (*Playlist, error) {
	args := []string{"--dump-single-json", "--no-download"}
	if flat {
		args = append(args, "--flat-playlist")
	}
	args = append(args, url)

	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, y.binPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("extraction failed for %s: %w (%s)", url, err, lastLine(stderr.String()))
	}

	var raw map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode extractor output for %s: %w", url, err)
	}

	return playlistFromRaw(raw), nil
}

// FetchTrack resolves full metadata for a single track URL. This is the
// expensive call the hydration budget bounds.
func (y *YTDLP) FetchTrack(ctx context.Context, url string) (map[string]any, error) {
	playlist, err := y.Extract(ctx, url, false)
	if err != nil {
		return nil, err
	}
	if len(playlist.Entries) == 0 {
		return nil, fmt.Errorf("no metadata returned for %s", url)
	}
	return playlist.Entries[0], nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

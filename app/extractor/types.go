package extractor

// Playlist is the decoded result of one extraction. Entries keep their raw
// decoded shape: upstream fields vary between flat and full mode and across
// extractor versions.
type Playlist struct {
	ID          string
	Title       string
	Uploader    string
	UploaderURL string
	Description string
	WebpageURL  string
	Thumbnail   string
	Entries     []map[string]any
}

// playlistFromRaw converts the extractor's JSON document. A single-track
// result is wrapped as a one-entry playlist so callers handle one shape.
func playlistFromRaw(raw map[string]any) *Playlist {
	playlist := &Playlist{
		ID:          str(raw["id"]),
		Title:       str(raw["title"]),
		Uploader:    str(raw["uploader"]),
		UploaderURL: str(raw["uploader_url"]),
		Description: str(raw["description"]),
		WebpageURL:  str(raw["webpage_url"]),
		Thumbnail:   str(raw["thumbnail"]),
	}

	entries, ok := raw["entries"].([]any)
	if !ok {
		playlist.Entries = []map[string]any{raw}
		return playlist
	}

	playlist.Entries = make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		if m, ok := entry.(map[string]any); ok {
			playlist.Entries = append(playlist.Entries, m)
		}
	}

	return playlist
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

package feed

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/alaq/sc-podcast/app/cfg"
)

func setupTestConfig() {
	// Clear os.Args to prevent config parsing from failing
	oldArgs := os.Args
	os.Args = []string{"test"}
	defer func() { os.Args = oldArgs }()

	if os.Getenv("PORT") == "" {
		os.Setenv("PORT", "8080")
	}

	cfg.Load()
}

func TestGenerateRSS(t *testing.T) {
	setupTestConfig()
	generator := NewGenerator()

	channel := Channel{
		Title:       "Test Artist",
		Link:        "https://soundcloud.com/test-artist",
		Author:      "Test Artist",
		Description: "Tracks by Test Artist",
		Thumbnail:   "https://img.example/channel.jpg",
	}

	published := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC).Unix()
	entries := []NormalizedEntry{
		{
			ID:          "111",
			Title:       "First Track",
			Uploader:    "Test Artist",
			Duration:    245,
			Description: "First description",
			URL:         "https://soundcloud.com/test-artist/first-track",
			PublishedAt: published,
			Thumbnail:   "https://img.example/first.jpg",
		},
		{
			ID:          "222",
			Title:       "Second Track <with markup>",
			Uploader:    "Test Artist",
			Duration:    100,
			Description: "Second description",
			URL:         "https://soundcloud.com/test-artist/second-track",
			PublishedAt: published - 3600,
		},
	}

	rss, err := generator.Run(channel, "test-artist", entries)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// The output must be parseable podcast RSS
	parsed, err := gofeed.NewParser().ParseString(rss)
	if err != nil {
		t.Fatalf("Generated RSS failed to parse: %v", err)
	}

	if parsed.Title != "Test Artist" {
		t.Errorf("Expected channel title 'Test Artist', got %q", parsed.Title)
	}
	if parsed.Description != "Tracks by Test Artist" {
		t.Errorf("Expected channel description, got %q", parsed.Description)
	}
	if parsed.Language != "en-us" {
		t.Errorf("Expected default language 'en-us', got %q", parsed.Language)
	}

	if len(parsed.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(parsed.Items))
	}

	item := parsed.Items[0]
	if item.Title != "First Track" {
		t.Errorf("Expected item title 'First Track', got %q", item.Title)
	}
	if item.GUID != "111" {
		t.Errorf("Expected guid '111', got %q", item.GUID)
	}
	if item.PublishedParsed == nil || item.PublishedParsed.Unix() != published {
		t.Errorf("Expected pubDate %d, got %v", published, item.PublishedParsed)
	}

	if len(item.Enclosures) != 1 {
		t.Fatalf("Expected 1 enclosure, got %d", len(item.Enclosures))
	}
	enclosure := item.Enclosures[0]
	if enclosure.Type != "audio/mpeg" {
		t.Errorf("Expected audio/mpeg enclosure, got %q", enclosure.Type)
	}
	if !strings.Contains(enclosure.URL, "/stream/test-artist/first-track") {
		t.Errorf("Expected stream resolver enclosure, got %q", enclosure.URL)
	}

	if item.ITunesExt == nil || item.ITunesExt.Duration != "245" {
		t.Errorf("Expected itunes duration '245', got %+v", item.ITunesExt)
	}

	// Markup in titles must be escaped, not emitted raw
	if strings.Contains(rss, "<with markup>") {
		t.Error("Expected markup in title to be escaped")
	}
}

func TestGenerateRSSDefaults(t *testing.T) {
	setupTestConfig()
	generator := NewGenerator()

	rss, err := generator.Run(Channel{}, "someone", nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	parsed, err := gofeed.NewParser().ParseString(rss)
	if err != nil {
		t.Fatalf("Generated RSS failed to parse: %v", err)
	}

	if parsed.Title != "Unknown Channel" {
		t.Errorf("Expected default channel title, got %q", parsed.Title)
	}
	if parsed.Description != "SoundCloud channel podcast feed" {
		t.Errorf("Expected default description, got %q", parsed.Description)
	}
	if len(parsed.Items) != 0 {
		t.Errorf("Expected no items, got %d", len(parsed.Items))
	}
}

func TestGeneratorStreamURLEscaping(t *testing.T) {
	setupTestConfig()
	generator := NewGenerator()

	entries := []NormalizedEntry{
		{
			ID:    "333",
			Title: "Track",
			URL:   "https://soundcloud.com/artist/track with spaces",
		},
	}

	rss, err := generator.Run(Channel{Title: "A"}, "artist", entries)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(rss, "/stream/artist/track%20with%20spaces") {
		t.Error("Expected stream URL segments to be path-escaped")
	}
}

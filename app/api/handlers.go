package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alaq/sc-podcast/app/cfg"
	"github.com/alaq/sc-podcast/app/extractor"
	"github.com/alaq/sc-podcast/app/feed"
	"github.com/alaq/sc-podcast/app/kvstore"
)

const platformBaseURL = "https://soundcloud.com"

func NewHandler(ext ExtractorInterface, hydrator HydratorInterface,
	configCache *feed.ConfigCache, store kvstore.Store) *Handler {
	return &Handler{
		extractor:   ext,
		hydrator:    hydrator,
		generator:   feed.NewGenerator(),
		configCache: configCache,
		store:       store,
	}
}

// GetFeed serves any channel/playlist/track path as a podcast RSS feed.
func (h *Handler) GetFeed(c *gin.Context) {
	path := feed.CanonicalFeedPath(c.Request.URL.Path)
	if path == "" {
		c.Status(http.StatusNotFound)
		return
	}

	ctx := c.Request.Context()
	override, _ := h.configCache.GetOverride(path)

	playlist, err := h.extractor.Extract(ctx, platformBaseURL+"/"+path, true)
	if err != nil {
		slog.Error("Feed extraction failed", "feed", path, "error", err)
		c.String(http.StatusBadGateway, "failed to extract feed")
		return
	}

	entries := make([]feed.FlatEntry, 0, len(playlist.Entries))
	for _, raw := range playlist.Entries {
		entries = append(entries, feed.FlatEntryFromRaw(raw))
	}

	if override != nil && override.MaxItems > 0 && len(entries) > override.MaxItems {
		entries = entries[:override.MaxItems]
	}

	synthetic := feed.SyntheticTimestamps(path, override)
	normalized := h.hydrator.Run(ctx, path, synthetic, entries)

	channel := buildChannel(playlist, override)

	rss, err := h.generator.Run(channel, path, normalized)
	if err != nil {
		slog.Error("RSS generation failed", "feed", path, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(normalized)))
	c.Header("X-Refresh-Budget", strconv.Itoa(cfg.Get().RefreshBudget))

	c.String(http.StatusOK, rss)
}

// GetStream resolves a track path to its mp3 rendition and redirects. Flat
// feed listings carry no playable URLs, so enclosures land here.
func (h *Handler) GetStream(c *gin.Context) {
	path := feed.CanonicalFeedPath(c.Param("path"))
	if path == "" {
		c.Status(http.StatusNotFound)
		return
	}

	playlist, err := h.extractor.Extract(c.Request.Context(), platformBaseURL+"/"+path, false)
	if err != nil {
		slog.Error("Stream extraction failed", "track", path, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	if len(playlist.Entries) == 0 {
		c.Status(http.StatusNotFound)
		return
	}

	mediaURL := resolveMediaURL(playlist.Entries[0])
	if mediaURL == "" {
		slog.Error("No playable format found", "track", path)
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, mediaURL)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   cfg.Get().Version,
	}

	store := map[string]interface{}{
		"type":    h.store.Name(),
		"enabled": h.store.Enabled(),
	}
	if h.store.Enabled() {
		if err := h.store.Ping(c.Request.Context()); err != nil {
			store["status"] = "unhealthy"
			store["error"] = err.Error()
		} else {
			store["status"] = "healthy"
		}
	}
	health["store"] = store

	health["loaded_overrides"] = h.configCache.GetOverrideCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "sc-podcast",
		"version":     cfg.Get().Version,
		"description": "SoundCloud channel/playlist/track to podcast RSS bridge",
		"endpoints": map[string]string{
			"feed":   "/<channel-or-playlist-path>",
			"stream": "/stream/<track-path>",
			"health": "/health",
		},
	})
}

// buildChannel maps extractor playlist metadata onto the rendered channel,
// letting an override replace presentation fields.
func buildChannel(playlist *extractor.Playlist, override *feed.Override) feed.Channel {
	channel := feed.Channel{
		Title:       playlist.Uploader,
		Link:        playlist.UploaderURL,
		Author:      playlist.Uploader,
		Description: "",
		Thumbnail:   playlist.Thumbnail,
	}

	if channel.Title == "" {
		channel.Title = playlist.Title
	}
	if channel.Link == "" {
		channel.Link = playlist.WebpageURL
	}

	if override != nil {
		if override.Title != "" {
			channel.Title = override.Title
		}
		if override.Description != "" {
			channel.Description = override.Description
		}
		if override.Language != "" {
			channel.Language = override.Language
		}
	}

	return channel
}

// resolveMediaURL picks the playable rendition from a full track extraction,
// preferring the progressive mp3 the original service selected.
func resolveMediaURL(raw map[string]any) string {
	formats, ok := raw["formats"].([]any)
	if !ok {
		return ""
	}

	var fallback string
	for _, item := range formats {
		format, ok := item.(map[string]any)
		if !ok {
			continue
		}
		url, _ := format["url"].(string)
		if url == "" {
			continue
		}
		if id, _ := format["format_id"].(string); id == "http_mp3_128" {
			return url
		}
		if fallback == "" {
			fallback = url
		}
	}

	return fallback
}

package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/alaq/sc-podcast/app/cfg"
)

const (
	defaultChannelTitle       = "Unknown Channel"
	defaultChannelAuthor      = "Unknown Author"
	defaultChannelDescription = "SoundCloud channel podcast feed"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders a podcast RSS 2.0 document for a hydrated feed. Entries are
// fully normalized by this point, so rendering is a deterministic pure step.
func (g *Generator) Run(channel Channel, feedPath string, entries []NormalizedEntry) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", cmp.Or(channel.Title, defaultChannelTitle), 4)
	g.writeElement(&buf, "link", channel.Link, 4)
	g.writeElement(&buf, "language", cmp.Or(channel.Language, "en-us"), 4)
	g.writeElement(&buf, "itunes:author", cmp.Or(channel.Author, channel.Title, defaultChannelAuthor), 4)
	g.writeElement(&buf, "description", cmp.Or(channel.Description, defaultChannelDescription), 4)

	selfLink := fmt.Sprintf("%s/%s", g.baseURL(), feedPath)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	if channel.Thumbnail != "" {
		buf.WriteString(fmt.Sprintf("    <itunes:image href=\"%s\" />\n",
			html.EscapeString(channel.Thumbnail)))
	}

	lastBuildDate := time.Now().UTC()
	if len(entries) > 0 && entries[0].PublishedAt > 0 {
		lastBuildDate = time.Unix(entries[0].PublishedAt, 0).UTC()
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("sc-podcast/%s", cfg.Get().Version), 4)

	for _, entry := range entries {
		g.writeItem(&buf, entry)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, entry NormalizedEntry) {
	buf.WriteString("    <item>\n")

	guid := cmp.Or(entry.ID, entry.URL)
	if guid != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(guid)))
		xml.EscapeText(buf, []byte(guid))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", entry.Title, 6)
	g.writeElement(buf, "link", entry.URL, 6)
	g.writeElement(buf, "itunes:author", entry.Uploader, 6)
	g.writeElement(buf, "description", entry.Description, 6)
	g.writeElement(buf, "pubDate", time.Unix(entry.PublishedAt, 0).UTC().Format(time.RFC1123Z), 6)

	// Flat listings carry no playable format URLs, so the enclosure points
	// at this service's stream resolver, which picks the mp3 rendition at
	// download time.
	buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" type=\"audio/mpeg\" length=\"0\" />\n",
		html.EscapeString(g.streamURL(entry))))

	g.writeElement(buf, "itunes:duration", fmt.Sprintf("%d", entry.Duration), 6)

	if entry.Thumbnail != "" {
		buf.WriteString(fmt.Sprintf("      <itunes:image href=\"%s\" />\n",
			html.EscapeString(entry.Thumbnail)))
	}

	buf.WriteString("    </item>\n")
}

// streamURL routes the enclosure through the /stream resolver using the
// track's platform-relative path.
func (g *Generator) streamURL(entry NormalizedEntry) string {
	fragment := strings.TrimPrefix(entry.URL, platformBaseURL+"/")
	if fragment == entry.URL {
		// Not a platform URL; fall back to the track identifier.
		fragment = entry.ID
	}

	segments := strings.Split(strings.Trim(fragment, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}

	return fmt.Sprintf("%s/stream/%s", g.baseURL(), strings.Join(segments, "/"))
}

func (g *Generator) baseURL() string {
	if cfg.Get().BaseUrl != "" {
		return strings.TrimRight(cfg.Get().BaseUrl, "/")
	}
	return fmt.Sprintf("http://localhost:%s", cfg.Get().Port)
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

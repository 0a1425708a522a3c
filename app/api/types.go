package api

import (
	"context"

	"github.com/alaq/sc-podcast/app/extractor"
	"github.com/alaq/sc-podcast/app/feed"
	"github.com/alaq/sc-podcast/app/kvstore"
)

type ExtractorInterface interface {
	Extract(ctx context.Context, url string, flat bool) (*extractor.Playlist, error)
}

var _ ExtractorInterface = (*extractor.YTDLP)(nil)

type HydratorInterface interface {
	Run(ctx context.Context, feedPath string, synthetic bool, entries []feed.FlatEntry) []feed.NormalizedEntry
}

var _ HydratorInterface = (*feed.Hydrator)(nil)

type GeneratorInterface interface {
	Run(channel feed.Channel, feedPath string, entries []feed.NormalizedEntry) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Handler struct {
	extractor   ExtractorInterface
	hydrator    HydratorInterface
	generator   GeneratorInterface
	configCache *feed.ConfigCache
	store       kvstore.Store
}

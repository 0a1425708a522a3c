package cfg

type Cfg struct {
	// Key-value store configuration
	KVRestURL   string
	KVRestToken string
	CacheDBPath string

	// Application configuration
	Port          string
	BaseUrl       string
	RefreshBudget int
	FeedsDir      string

	// Extractor configuration
	ExtractorPath    string
	ExtractorTimeout int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

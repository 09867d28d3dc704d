package config

// DecoderConfig configures syntax tree decoding.
type DecoderConfig struct {
	MaxDepth     int      `yaml:"max_depth"`     // term nesting limit
	QueryMarkers []string `yaml:"query_markers"` // accepted directive markers
}

// BatchConfig configures concurrent compilation of several sources.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"` // 0 = unbounded
}

// WatchConfig configures the source directory watcher.
type WatchConfig struct {
	Extensions []string `yaml:"extensions"`
	Debounce   string   `yaml:"debounce"`
}

// HasExtension reports whether ext (with leading dot) is watched.
func (w WatchConfig) HasExtension(ext string) bool {
	for _, e := range w.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

package config

// MangleConfig configures evaluation of decoded knowledge bases.
type MangleConfig struct {
	FactLimit    int    `yaml:"fact_limit"`    // 0 = unlimited
	QueryTimeout string `yaml:"query_timeout"` // Go duration
}

// MetricsConfig configures the Prometheus endpoint served by long-running
// commands.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty = disabled
	Path string `yaml:"path"`
}

package config

// Config is the root aqimon configuration tree, shared by the dashboard,
// the server, and the reader.
type Config struct {
	Dashboard DashboardConfig `toml:"dashboard" yaml:"dashboard"`
	Server    ServerConfig    `toml:"server" yaml:"server"`
	Reader    ReaderConfig    `toml:"reader" yaml:"reader"`
	Store     StoreConfig     `toml:"store" yaml:"store"`
	Log       LogConfig       `toml:"log" yaml:"log"`
}

// DashboardConfig controls the terminal dashboard.
type DashboardConfig struct {
	// ServerURL is the base URL of the aqimon API the dashboard polls.
	ServerURL string `toml:"server_url" yaml:"server_url"`
	// PollInterval is the cadence of each feed's poll timer.
	PollInterval Duration `toml:"poll_interval" yaml:"poll_interval"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Listen string `toml:"listen" yaml:"listen"`
}

// ReaderConfig controls the sensor read scheduler.
type ReaderConfig struct {
	// Mode selects the sample source: "sds011" for the serial sensor or
	// "sim" for the built-in simulator.
	Mode   string `toml:"mode" yaml:"mode"`
	Device string `toml:"device" yaml:"device"`
	// PollInterval is the time between read cycles.
	PollInterval Duration `toml:"poll_interval" yaml:"poll_interval"`
	// Warmup is how long the sensor fan runs before samples are trusted.
	Warmup Duration `toml:"warmup" yaml:"warmup"`
	// Samples is the number of queries averaged into one reading.
	Samples   int      `toml:"samples" yaml:"samples"`
	SampleGap Duration `toml:"sample_gap" yaml:"sample_gap"`
}

// StoreConfig controls reading persistence.
type StoreConfig struct {
	Path string `toml:"path" yaml:"path"`
	// Retention bounds how far back readings are kept; zero disables
	// pruning.
	Retention Duration `toml:"retention" yaml:"retention"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	// File redirects log output away from stderr. The dashboard always
	// logs to a file so the TUI stays clean.
	File string `toml:"file" yaml:"file"`
}

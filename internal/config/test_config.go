package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.Server.BaseURL = "http://127.0.0.1:0"
	cfg.Server.HTTPTimeout = 5 * time.Second
	cfg.Server.UserAgent = "crate-test/1.0"
	cfg.Library.DBPath = ":memory:"
	cfg.Library.SearchIndex = ""
	cfg.Library.ScanDelay = 10 * time.Millisecond
	cfg.Library.LookupTimeout = 2 * time.Second
	cfg.Log.Level = "off"
	cfg.Log.File = ""
	return cfg
}

package config

// DefaultConfig returns the baseline configuration, pointing at a local
// reference server.
func DefaultConfig() *Config {
	return &Config{
		ServerURL:      "http://localhost:4000",
		SocketURL:      "ws://localhost:4000/ws",
		TimeoutSeconds: 30,
		Serve: ServeConfig{
			Port:   4000,
			DBPath: "diasync.db",
		},
	}
}

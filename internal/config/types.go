package config

// UserConfig is the authenticated identity injected into the
// synchronization layer. It is read-only input: diasync never mutates or
// persists the session itself beyond this file.
type UserConfig struct {
	ID        string `yaml:"id" koanf:"id"`
	Email     string `yaml:"email" koanf:"email"`
	FirstName string `yaml:"first_name" koanf:"first_name"`
	LastName  string `yaml:"last_name" koanf:"last_name"`
}

// ServeConfig holds settings for the bundled reference server.
type ServeConfig struct {
	Port   int    `yaml:"port" koanf:"port"`
	DBPath string `yaml:"db_path" koanf:"db_path"`
}

// Config is the top-level diasync configuration, corresponding to
// .diasync.yml.
type Config struct {
	ServerURL      string      `yaml:"server_url" koanf:"server_url"`
	SocketURL      string      `yaml:"socket_url" koanf:"socket_url"`
	Token          string      `yaml:"token" koanf:"token"`
	TimeoutSeconds int         `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	User           UserConfig  `yaml:"user" koanf:"user"`
	Serve          ServeConfig `yaml:"serve" koanf:"serve"`
}

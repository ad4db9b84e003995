package config

func loadTestConfig(cfg *Config) {
	cfg.DatabaseFilePath = ":memory:"
	cfg.ServerHost = "127.0.0.1"
	// Port 0 so that parallel test servers don't collide.
	cfg.ServerPort = 0
	cfg.UserConfigFilePath = ""
}

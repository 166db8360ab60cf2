package config

import "os"

type Config struct {
	Addr           string
	OriginPatterns []string
}

// FromEnv reads the process configuration. cmd/server loads .env via
// godotenv first, so a local file and real environment both work.
func FromEnv() Config {
	cfg := Config{
		Addr: ":3000",
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	if origin := os.Getenv("FRONTEND_ORIGIN"); origin != "" {
		cfg.OriginPatterns = []string{origin}
	}
	return cfg
}

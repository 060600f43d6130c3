package config

import (
	"os"
	"strings"
)

// Config holds everything the server needs beyond the database connection,
// which config/database reads from the environment itself.
type Config struct {
	Addr               string
	JWTSecret          string
	SupabaseURL        string
	SupabaseServiceKey string
	StorageBucket      string
}

func Load() Config {
	return Config{
		Addr:               getenv("ADDR", ":8080"),
		JWTSecret:          strings.TrimSpace(os.Getenv("JWT_SECRET")),
		SupabaseURL:        strings.TrimSpace(os.Getenv("SUPABASE_URL")),
		SupabaseServiceKey: strings.TrimSpace(os.Getenv("SUPABASE_SERVICE_KEY")),
		StorageBucket:      getenv("STORAGE_BUCKET", "covers"),
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

package config

import "os"

// Config holds everything the server reads from the environment.
// godotenv loads .env in main before this runs.
type Config struct {
	Port          string
	DBDSN         string
	GeminiAPIKey  string
	GeminiModel   string
	ClipDropKey   string
	CloudinaryURL string
	CORSOrigin    string
}

// Load reads the environment into a Config. Missing optional values get
// development defaults; required keys are validated by the caller.
func Load() Config {
	return Config{
		Port:          getEnv("PORT", "8080"),
		DBDSN:         os.Getenv("DB_DSN"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ClipDropKey:   os.Getenv("CLIPDROP_API_KEY"),
		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		CORSOrigin:    getEnv("CORS_ORIGIN", "http://localhost:5173"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

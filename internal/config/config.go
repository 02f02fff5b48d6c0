package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port          int
	DataPath      string
	DBPath        string
	AudioPath     string
	JWTSecret     string
	AdminUsername string
	AdminPassword string
	CORSOrigins   []string

	// Heph transcription provider
	HephBaseURL  string
	HephAPIKey   string
	HephEmail    string
	HephPassword string
	WhisperModel string

	// Ollama summarizer. Empty base URL means summarization is not configured.
	OllamaBaseURL string
	OllamaModel   string

	// Pipeline behavior
	PollInterval    time.Duration
	MaxPollAttempts int
	AutoSummarize   bool
}

func Load() *Config {
	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	dataPath := getEnv("DATA_PATH", "/data")

	// JWT secret: require explicit setting or generate random
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			log.Fatalf("Failed to generate random JWT secret: %v", err)
		}
		jwtSecret = hex.EncodeToString(b)
		log.Println("WARNING: JWT_SECRET not set, using random secret. Sessions will not survive restarts. Set JWT_SECRET env var for persistent sessions.")
	}

	// CORS origins: comma-separated list or "*" (default)
	corsOrigins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		corsOrigins = make([]string, 0, len(origins))
		for _, o := range origins {
			o = strings.TrimSpace(o)
			if o != "" {
				corsOrigins = append(corsOrigins, o)
			}
		}
	}

	pollInterval, err := time.ParseDuration(getEnv("POLL_INTERVAL", "2s"))
	if err != nil || pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	maxPollAttempts, _ := strconv.Atoi(getEnv("MAX_POLL_ATTEMPTS", "900"))
	if maxPollAttempts <= 0 {
		maxPollAttempts = 900
	}

	return &Config{
		Port:          port,
		DataPath:      dataPath,
		DBPath:        getEnv("DB_PATH", dataPath+"/voicememo.db"),
		AudioPath:     getEnv("AUDIO_PATH", dataPath+"/audio"),
		JWTSecret:     jwtSecret,
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		CORSOrigins:   corsOrigins,

		HephBaseURL:  getEnv("HEPH_BASE_URL", ""),
		HephAPIKey:   getEnv("HEPH_API_KEY", ""),
		HephEmail:    getEnv("HEPH_EMAIL", ""),
		HephPassword: getEnv("HEPH_PASSWORD", ""),
		WhisperModel: getEnv("WHISPER_MODEL", "small"),

		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", ""),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama2:7b"),

		PollInterval:    pollInterval,
		MaxPollAttempts: maxPollAttempts,
		AutoSummarize:   getEnv("AUTO_SUMMARIZE", "false") == "true",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// APIConfig agrupa la configuración del servidor HTTP.
type APIConfig struct {
	Addr      string
	DBDSN     string // vacío => repos in-memory (modo dev)
	LogLevel  string
	LogFormat string

	// Seed del usuario admin al arrancar (opcional).
	AdminUsername string
	AdminPassword string
	AdminEmail    string

	SessionTTLDays int
}

// AlarmdConfig agrupa la configuración del daemon de alarmas.
type AlarmdConfig struct {
	APIBaseURL string
	Username   string
	Password   string

	// Spec de cron para refrescar la lista de medicinas (default "@every 30s").
	RefreshSpec string

	// Archivo/dispositivo donde escribir el PCM del tono ("" => sin audio).
	AudioPath string

	LogLevel  string
	LogFormat string
}

// LoadAPI lee .env (si existe) y luego env vars.
func LoadAPI() (*APIConfig, error) {
	loadDotenv()

	cfg := &APIConfig{
		Addr:           ":" + getEnv("PORT", "8080"),
		DBDSN:          os.Getenv("DB_DSN"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		AdminUsername:  os.Getenv("ADMIN_USERNAME"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		AdminEmail:     getEnv("ADMIN_EMAIL", "admin@mediflow.local"),
		SessionTTLDays: getEnvInt("SESSION_TTL_DAYS", 7),
	}

	if cfg.SessionTTLDays <= 0 {
		return nil, fmt.Errorf("SESSION_TTL_DAYS must be positive, got %d", cfg.SessionTTLDays)
	}

	return cfg, nil
}

// LoadAlarmd lee .env (si existe) y luego env vars.
func LoadAlarmd() (*AlarmdConfig, error) {
	loadDotenv()

	cfg := &AlarmdConfig{
		APIBaseURL:  getEnv("API_BASE_URL", "http://localhost:8080"),
		Username:    os.Getenv("ALARM_USERNAME"),
		Password:    os.Getenv("ALARM_PASSWORD"),
		RefreshSpec: getEnv("REFRESH_SPEC", "@every 30s"),
		AudioPath:   os.Getenv("ALARM_AUDIO_PATH"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}

	if strings.TrimSpace(cfg.Username) == "" || strings.TrimSpace(cfg.Password) == "" {
		return nil, fmt.Errorf("ALARM_USERNAME and ALARM_PASSWORD are required")
	}

	return cfg, nil
}

func loadDotenv() {
	// Sin .env no es error: en producción todo viene por env.
	_ = godotenv.Load()
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime knob. All values were once hard-coded in the
// detection and capture code; they are loaded here once and passed into
// constructors explicitly.
type Config struct {
	ExportDirectory      string
	DatabasePath         string
	LogDirectory         string
	CameraWidth          int
	CameraHeight         int
	CameraFPS            int
	CameraProbeLimit     int
	FrameQueueSize       int
	DedupWindow          time.Duration
	ExportFlushInterval  time.Duration
	ResourcePollInterval time.Duration
	LiveViewEnabled      bool
	LiveViewPort         int
}

// Load reads an optional .env file and builds the Config from environment
// variables with defaults matching the historical behavior of the tool.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ExportDirectory:      getEnv("EXPORT_DIR", filepath.Join(".", "exports")),
		DatabasePath:         getEnv("DB_PATH", filepath.Join(".", "exports", "history.db")),
		LogDirectory:         getEnv("LOG_DIR", filepath.Join(".", "logs")),
		CameraWidth:          getEnvAsInt("CAMERA_WIDTH", 640),
		CameraHeight:         getEnvAsInt("CAMERA_HEIGHT", 480),
		CameraFPS:            getEnvAsInt("CAMERA_FPS", 30),
		CameraProbeLimit:     getEnvAsInt("CAMERA_PROBE_LIMIT", 10),
		FrameQueueSize:       getEnvAsInt("FRAME_QUEUE_SIZE", 2),
		DedupWindow:          getEnvAsDuration("DEDUP_WINDOW", 3*time.Second),
		ExportFlushInterval:  getEnvAsDuration("EXPORT_FLUSH_INTERVAL", 5*time.Second),
		ResourcePollInterval: getEnvAsDuration("RESOURCE_POLL_INTERVAL", 2*time.Second),
		LiveViewEnabled:      getEnvAsBool("LIVEVIEW_ENABLED", false),
		LiveViewPort:         getEnvAsInt("LIVEVIEW_PORT", 8090),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package bootstrap

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string
	GRPCAddr   string

	YOLOModelPath         string
	DetectorURL           string
	DetectorTimeout       time.Duration
	DetectorMinConfidence float64

	OCRBackend   string
	OCRURL       string
	OCRLanguages []string
	AWSRegion    string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	AlertDailyLimit int

	MaxUploadMB      int
	VideoCodec       string
	VideoFallbackFPS float64
	JPEGQuality      int
	TempDir          string

	LogLevel string
}

// LoadConfig reads the environment, after merging a .env file when one is
// present. Variables already set in the environment win.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerAddr: ":" + getEnv("PORT", "5003"),
		GRPCAddr:   getEnv("GRPC_ADDR", ":50051"),

		YOLOModelPath:         getEnv("YOLO_MODEL_PATH", "weights/best.pt"),
		DetectorURL:           getEnv("DETECTOR_URL", "http://localhost:8000"),
		DetectorTimeout:       getEnvDuration("DETECTOR_TIMEOUT", 60*time.Second),
		DetectorMinConfidence: getEnvFloat("DETECTOR_MIN_CONFIDENCE", 0),

		OCRBackend:   getEnv("OCR_BACKEND", "remote"),
		OCRURL:       getEnv("OCR_URL", "http://localhost:8001"),
		OCRLanguages: splitList(getEnv("OCR_LANGUAGES", "en")),
		AWSRegion:    getEnv("AWS_REGION", ""),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		AlertDailyLimit: getEnvInt("ALERT_DAILY_LIMIT", 5),

		MaxUploadMB:      getEnvInt("MAX_UPLOAD_MB", 200),
		VideoCodec:       getEnv("VIDEO_CODEC", "mpeg4"),
		VideoFallbackFPS: getEnvFloat("VIDEO_FALLBACK_FPS", 20),
		JPEGQuality:      getEnvInt("JPEG_QUALITY", 90),
		TempDir:          getEnv("TEMP_DIR", os.TempDir()),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

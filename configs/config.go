// config.go - Configuration loaded from environment variables

package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	// Server Configuration
	PORT            string
	UPLOAD_DIR      string
	ALLOWED_ORIGINS string

	// MongoDB Configuration (history + settings persistence)
	MONGO_URI     string
	MONGO_DB_NAME string

	// Notion Configuration (expense record store)
	NOTION_ENABLED bool
	NOTION_TOKEN   string
	NOTION_DB_ID   string

	// OCR Configuration
	TESSERACT_BIN string
	OCR_LANGUAGE  string

	// Image segmentation settings
	ENABLE_SEGMENTATION bool
	SEGMENT_WORK_HEIGHT int     // working height for the downscaled analysis pass
	SEGMENT_MIN_AREA    float64 // minimum region area as a fraction of the working image

	// Extraction settings
	MIN_PDF_TEXT_LEN int // below this, a PDF is assumed scanned and gets OCR'd

	// Duplicate detection tolerances
	DUP_EXACT_TOLERANCE    float64 // absolute dollar tolerance for exact amount matches
	DUP_RELATIVE_TOLERANCE float64 // relative tolerance for the similar-amount fallback
)

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	PORT = getEnv("PORT", "8080")
	UPLOAD_DIR = getEnv("UPLOAD_DIR", "uploads")
	ALLOWED_ORIGINS = getEnv("ALLOWED_ORIGINS", "*")

	MONGO_URI = getEnv("MONGO_URI", "mongodb://localhost:27017")
	MONGO_DB_NAME = getEnv("MONGO_DB_NAME", "mighty_gobbla")

	NOTION_ENABLED = getEnvBool("NOTION_ENABLED", false)
	NOTION_TOKEN = getEnv("NOTION_TOKEN", "")
	NOTION_DB_ID = getEnv("NOTION_DB_ID", "")

	TESSERACT_BIN = getEnv("TESSERACT_BIN", "tesseract")
	OCR_LANGUAGE = getEnv("OCR_LANGUAGE", "eng")

	ENABLE_SEGMENTATION = getEnvBool("ENABLE_SEGMENTATION", true)
	SEGMENT_WORK_HEIGHT = getEnvInt("SEGMENT_WORK_HEIGHT", 500)
	SEGMENT_MIN_AREA = getEnvFloat("SEGMENT_MIN_AREA", 0.10)

	MIN_PDF_TEXT_LEN = getEnvInt("MIN_PDF_TEXT_LEN", 50)

	DUP_EXACT_TOLERANCE = getEnvFloat("DUP_EXACT_TOLERANCE", 0.01)
	DUP_RELATIVE_TOLERANCE = getEnvFloat("DUP_RELATIVE_TOLERANCE", 0.20)

	log.Println("Configuration loaded")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const defaultContactNote = "For a quick quote, please contact our team or fill the enquiry form on our website."

type Config struct {
	// Server
	Port string
	Env  string

	// Groq upstream
	GroqAPIKey string
	GroqAPIURL string
	Model      string
	MaxTokens  int

	// Knowledge assistant
	KnowledgePath string
	FAQPath       string
	ContactNote   string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port: getEnvOrDefault("PORT", "10000"),
		Env:  getEnvOrDefault("ENV", "development"),

		// The API key is deliberately not required at startup: the liveness
		// endpoint must stay up, and /chat reports the missing key per request.
		GroqAPIKey: os.Getenv("GROQ_API_KEY"),
		GroqAPIURL: getEnvOrDefault("GROQ_API_URL", "https://api.groq.com/openai/v1/chat/completions"),
		Model:      getEnvOrDefault("LLM_MODEL", "llama-3.1-8b-instant"),
		MaxTokens:  getEnvAsIntOrDefault("LLM_MAX_TOKENS", 512),

		KnowledgePath: getEnvOrDefault("KNOWLEDGE_PATH", "page_text.txt"),
		FAQPath:       getEnvOrDefault("FAQ_PATH", "faq.json"),
		ContactNote:   getEnvOrDefault("CONTACT_NOTE", defaultContactNote),
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

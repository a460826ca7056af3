package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var modelsYAML []byte

type Config struct {
	Scraper ScraperConfig
	FaceAPI FaceAPIConfig
	Store   StoreConfig
	Match   MatchConfig
	OpenAI  OpenAIConfig
	Gemini  GeminiConfig
	Ollama  OllamaConfig
	Models  ModelsConfig
}

type ScraperConfig struct {
	URL         string // browser automation sidecar base URL (e.g., http://localhost:9111)
	Username    string // profile site login, forwarded to the sidecar on login
	Password    string
	SessionFile string // path of the opaque login state written by `login`
	Timeout     int    // request timeout in seconds; scraping runs a real browser
}

type FaceAPIConfig struct {
	URL          string // face recognition service base URL (e.g., http://localhost:5005)
	Model        string // recognition model name (default Facenet512)
	Detector     string // detector backend name (default retinaface)
	Mode         string // "verify" = remote pairwise calls, "embed" = embeddings + local cosine
	Timeout      int    // request timeout in seconds; cold model loads are slow
	MaxImageEdge int    // photos are downscaled to this edge before upload
}

type StoreConfig struct {
	URI          string // file://DIR, postgres://... or mysql://...
	DataDir      string // photo files live here even with SQL backends
	MaxOpenConns int    // SQL backends only
	MaxIdleConns int    // SQL backends only
}

type MatchConfig struct {
	Steepness float64 // sigmoid steepness for the distance-to-similarity transform
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type OllamaConfig struct {
	URL   string // defaults to http://localhost:11434
	Model string // defaults to llama3.2
}

type ModelsConfig struct {
	Thresholds map[string]float64 `yaml:"thresholds"`
}

// envStr reads an environment variable, falling back to a default when unset
// or empty.
func envStr(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var models ModelsConfig
	if err := yaml.Unmarshal(modelsYAML, &models); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded models.yaml: " + err.Error())
	}

	return &Config{
		Scraper: ScraperConfig{
			URL:         envStr("SCRAPER_URL", "http://localhost:9111"),
			Username:    os.Getenv("SCRAPER_USERNAME"),
			Password:    os.Getenv("SCRAPER_PASSWORD"),
			SessionFile: envStr("SCRAPER_SESSION_FILE", "session.json"),
			Timeout:     envInt("SCRAPER_TIMEOUT", 90),
		},
		FaceAPI: FaceAPIConfig{
			URL:          envStr("FACE_API_URL", "http://localhost:5005"),
			Model:        envStr("FACE_MODEL", "Facenet512"),
			Detector:     envStr("FACE_DETECTOR", "retinaface"),
			Mode:         envStr("FACE_SCORE_MODE", "verify"),
			Timeout:      envInt("FACE_API_TIMEOUT", 120),
			MaxImageEdge: envInt("FACE_MAX_IMAGE_EDGE", 1024),
		},
		Store: StoreConfig{
			URI:          envStr("STORE_URI", "file://./data"),
			DataDir:      envStr("DATA_DIR", "./data"),
			MaxOpenConns: envInt("STORE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("STORE_MAX_IDLE_CONNS", 5),
		},
		Match: MatchConfig{
			Steepness: envFloat("MATCH_STEEPNESS", 12.0),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Ollama: OllamaConfig{
			URL:   os.Getenv("OLLAMA_URL"),
			Model: os.Getenv("OLLAMA_MODEL"),
		},
		Models: models,
	}
}

// ModelThreshold returns the cosine distance threshold for a recognition
// model. The second return value is false for unknown models.
func (c *Config) ModelThreshold(modelName string) (float64, bool) {
	t, ok := c.Models.Thresholds[modelName]
	return t, ok
}

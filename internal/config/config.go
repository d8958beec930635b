package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIConfig holds credentials and model selection for the OpenAI API,
// which serves both the embedding provider and the text generator.
type OpenAIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	LLMModel       string `yaml:"llm_model"`
	EmbeddingModel string `yaml:"embedding_model"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
}

// ChunkerConfig configures how documents are split into chunks. The overlap
// is a pointer so an explicit zero is distinguishable from an absent key.
type ChunkerConfig struct {
	ChunkSize    int  `yaml:"chunk_size"`
	ChunkOverlap *int `yaml:"chunk_overlap"`
}

// StoreConfig selects and configures the vector store implementation.
type StoreConfig struct {
	Type       string `yaml:"type"` // "memory" or "sqlite"
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
}

// RAGConfig controls retrieval and conversation memory behaviour.
type RAGConfig struct {
	// TopK is the default retrieval size.
	TopK int `yaml:"top_k"`
	// QuestionTopK is the retrieval size used when answering questions. It
	// is higher than TopK to favour recall for multi-fact questions.
	QuestionTopK int `yaml:"question_top_k"`
	// MaxHistory is the number of conversation turns remembered per session.
	MaxHistory int `yaml:"max_history"`
	// ComparisonPhrases extends the built-in comparison-intent vocabulary.
	ComparisonPhrases []string `yaml:"comparison_phrases,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Chunker ChunkerConfig `yaml:"chunker"`
	Store   StoreConfig   `yaml:"store"`
	RAG     RAGConfig     `yaml:"rag"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/careerag/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "careerag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.OpenAI.APIKeyEnv == "" {
		cfg.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.OpenAI.LLMModel == "" {
		cfg.OpenAI.LLMModel = "gpt-4o-mini"
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.OpenAI.TimeoutSecs == 0 {
		cfg.OpenAI.TimeoutSecs = 120
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 512
	}
	if cfg.Chunker.ChunkOverlap == nil {
		overlap := 50
		cfg.Chunker.ChunkOverlap = &overlap
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "sqlite"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join("data", "careerag.db")
	}
	if cfg.Store.Collection == "" {
		cfg.Store.Collection = "career_documents"
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.QuestionTopK == 0 {
		cfg.RAG.QuestionTopK = 10
	}
	if cfg.RAG.MaxHistory == 0 {
		cfg.RAG.MaxHistory = 5
	}
}

package reefradar

import (
	"time"

	"github.com/reefradar/reefradar/pkg/reefradar/embedding"
)

type Config struct {
	DBPath       string
	EmbedTimeout time.Duration
	TopK         int
	Logger       Logger
	Storage      Storage
	Source       embedding.Source
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithEmbedTimeout bounds each call to the embedding source. On timeout the
// pipeline falls back to synthetic embeddings instead of failing.
func WithEmbedTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.EmbedTimeout = d
	}
}

// WithTopK sets how many nearest reference sites each result carries.
func WithTopK(k int) Option {
	return func(c *Config) {
		c.TopK = k
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

// WithEmbeddingSource injects the learned embedding model. Without one the
// pipeline always produces synthetic embeddings.
func WithEmbeddingSource(source embedding.Source) Option {
	return func(c *Config) {
		c.Source = source
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:       "reefradar.sqlite3",
		EmbedTimeout: 30 * time.Second,
		TopK:         3,
	}
}

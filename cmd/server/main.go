package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/reefradar/reefradar/pkg/reefradar"
	"github.com/reefradar/reefradar/pkg/reefradar/embedding"
)

var (
	port              int
	dbPath            string
	inferenceEndpoint string
	embedTimeout      time.Duration
	topK              int
	allowedOrigins    string
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("REEFRADAR_DB_PATH", "reefradar.sqlite3"), "Path to SQLite database")
	flag.StringVar(&inferenceEndpoint, "inference", os.Getenv("REEFRADAR_INFERENCE_URL"), "SurfPerch inference endpoint URL (empty: synthetic embeddings only)")
	flag.DurationVar(&embedTimeout, "embed-timeout", 30*time.Second, "Timeout for embedding source calls")
	flag.IntVar(&topK, "top-k", 3, "Number of similar sites per result")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	// .env is optional; flags and real env take precedence.
	_ = godotenv.Load()
	flag.Parse()

	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	opts := []reefradar.Option{
		reefradar.WithDBPath(dbPath),
		reefradar.WithEmbedTimeout(embedTimeout),
		reefradar.WithTopK(topK),
	}
	if inferenceEndpoint != "" {
		opts = append(opts, reefradar.WithEmbeddingSource(
			embedding.NewHTTPSource(inferenceEndpoint, embedTimeout)))
	}

	service, err := reefradar.NewService(opts...)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	config := &ServerConfig{
		Port:              port,
		DBPath:            dbPath,
		InferenceEndpoint: inferenceEndpoint,
		AllowedOrigins:    origins,
	}

	server := NewServer(service, config)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/reefradar/reefradar/pkg/reefradar"
	"github.com/reefradar/reefradar/pkg/reefradar/embedding"
	"github.com/reefradar/reefradar/pkg/reefradar/model"
)

func usage() {
	fmt.Fprintf(os.Stderr, `ReefRadar CLI - coral reef acoustic health analysis

Usage:
  reefradar analyze <recording.wav>     Analyze a WAV recording
  reefradar result <analysis-id>        Print a stored analysis
  reefradar sites                       List reference sites
  reefradar add-site <sites.json>       Load reference sites from a JSON file

Flags:
`)
	flag.PrintDefaults()
}

var (
	dbPath            string
	inferenceEndpoint string
	embedTimeout      time.Duration
	topK              int
)

func init() {
	flag.StringVar(&dbPath, "db", envOr("REEFRADAR_DB_PATH", "reefradar.sqlite3"), "Path to SQLite database")
	flag.StringVar(&inferenceEndpoint, "inference", os.Getenv("REEFRADAR_INFERENCE_URL"), "SurfPerch inference endpoint URL")
	flag.DurationVar(&embedTimeout, "embed-timeout", 30*time.Second, "Timeout for embedding source calls")
	flag.IntVar(&topK, "top-k", 3, "Number of similar sites per result")
	flag.Usage = usage
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
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
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer service.Close()

	switch args[0] {
	case "analyze":
		err = runAnalyze(service, args[1:])
	case "result":
		err = runResult(service, args[1:])
	case "sites":
		err = runSites(service)
	case "add-site":
		err = runAddSites(service, args[1:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runAnalyze(service reefradar.Service, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("analyze requires exactly one WAV file argument")
	}

	wav, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	result, err := service.Analyze(context.Background(), wav)
	if err != nil {
		return fmt.Errorf("[%s] %w", model.CodeOf(err), err)
	}

	printResult(result)
	return nil
}

func runResult(service reefradar.Service, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("result requires exactly one analysis id argument")
	}

	result, err := service.GetAnalysis(args[0])
	if err != nil {
		return fmt.Errorf("[%s] %w", model.CodeOf(err), err)
	}

	printResult(result)
	return nil
}

func runSites(service reefradar.Service) error {
	sites, err := service.ListSites()
	if err != nil {
		return err
	}

	if len(sites) == 0 {
		fmt.Println("No reference sites loaded.")
		return nil
	}
	for _, site := range sites {
		fmt.Printf("%-16s %-14s %-16s dim=%d\n",
			site.SiteID, site.Country, site.Category, len(site.MeanEmbedding))
	}
	fmt.Printf("%d sites\n", len(sites))
	return nil
}

func runAddSites(service reefradar.Service, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("add-site requires exactly one JSON file argument")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var sites []model.ReferenceSite
	if err := json.Unmarshal(data, &sites); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	for _, site := range sites {
		if err := service.AddSite(site); err != nil {
			return fmt.Errorf("storing site %s: %w", site.SiteID, err)
		}
	}
	fmt.Printf("Stored %d reference sites\n", len(sites))
	return nil
}

func printResult(result *model.AnalysisResult) {
	fmt.Printf("Analysis:   %s\n", result.AnalysisID)
	fmt.Printf("Label:      %s (%.1f%% confidence)\n",
		result.Classification.Label, result.Classification.Confidence*100)
	fmt.Println("Probabilities:")
	for _, cat := range model.CategoryPriority {
		fmt.Printf("  %-16s %.3f\n", cat, result.Classification.Probabilities[cat])
	}
	if len(result.SimilarSites) > 0 {
		fmt.Println("Similar sites:")
		for _, site := range result.SimilarSites {
			fmt.Printf("  %-16s %-14s %-16s %.3f\n",
				site.SiteID, site.Country, site.Category, site.Similarity)
		}
	}
	fmt.Printf("Windows:    %d, dimension %d, aggregation %s\n",
		result.Embedding.NumWindows, result.Embedding.Dimension, result.Embedding.Aggregation)
	if result.Embedding.Synthetic {
		fmt.Println("Note:       synthetic embeddings were used (inference unavailable)")
	}
	fmt.Printf("Caveats:    %s\n", result.Caveats)
}

// Command rate-image runs one analysis against a local image file and
// prints the result. It reads the same configuration as the bot.
package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/raine/chadorchud-bot/internal/catalog"
	"github.com/raine/chadorchud-bot/internal/config"
	"github.com/raine/chadorchud-bot/internal/intake"
	"github.com/raine/chadorchud-bot/internal/llm"
	"github.com/raine/chadorchud-bot/internal/rating"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <image-path>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY - Required\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_MODEL   - Optional, defaults to %s\n", config.DefaultModel)
		fmt.Fprintf(os.Stderr, "  CATALOG_PATH   - Optional product catalog YAML\n")
		os.Exit(1)
	}

	config.LoadEnvFile()
	// No bot token is needed to rate a file
	cfg, err := config.LoadFrom(func(key string) string {
		if key == "BOT_TOKEN" {
			return "unused"
		}
		return os.Getenv(key)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	imagePath := os.Args[1]
	data, err := os.ReadFile(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read image: %v\n", err)
		os.Exit(1)
	}

	payload, err := intake.NewValidator(cfg.MaxUploadMB).Validate(intake.File{
		Name:     filepath.Base(imagePath),
		MIMEType: getMimeType(imagePath),
		Data:     data,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		if cat, err = catalog.Load(cfg.CatalogPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()
	analyzer, err := llm.NewGeminiAnalyzer(ctx, llm.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Catalog: cat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating Gemini analyzer: %v\n", err)
		os.Exit(1)
	}

	result, err := analyzer.Analyze(ctx, payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing image: %v\n", err)
		if cause := unwrapCause(err); cause != nil {
			fmt.Fprintf(os.Stderr, "Cause: %v\n", cause)
		}
		os.Exit(1)
	}

	printResult(result, analyzer.Usage())
}

func unwrapCause(err error) error {
	var remote *rating.RemoteError
	if errors.As(err, &remote) {
		return remote.Cause
	}
	return nil
}

func printResult(result *rating.Analysis, usage llm.Usage) {
	fmt.Printf("Verdict:     %s\n", result.Verdict)
	fmt.Printf("Score:       %d/100\n", result.Score)
	fmt.Printf("Title:       %s\n", result.Title)
	fmt.Println()
	for _, line := range result.Explanation {
		fmt.Printf("  - %s\n", line)
	}
	fmt.Println()
	fmt.Printf("Features:    %s\n", strings.Join(result.KeyFeatures, ", "))
	for _, imp := range result.Improvements {
		fmt.Printf("[%s] %s: %s\n", imp.Category, imp.Product, imp.Suggestion)
	}
	fmt.Println()
	fmt.Printf("Tokens:      %d in / %d out / %d total\n",
		usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
	fmt.Printf("Cost:        $%.6f\n", usage.CostUSD)
}

func getMimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".heic":
		return "image/heic"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "application/octet-stream"
	}
}

// Command extract runs the hybrid extraction pipeline over a directory of
// OCR text files and writes the outcomes as JSON, CSV, or XLSX.
// Usage: extract -input ./docs [-output outcomes.json] [-format json|csv|xlsx]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"claimdesk/internal/config"
	"claimdesk/internal/confidence"
	"claimdesk/internal/domain"
	"claimdesk/internal/dupes"
	"claimdesk/internal/export"
	"claimdesk/internal/extractor/model"
	"claimdesk/internal/extractor/pattern"
	"claimdesk/internal/inference"
	_ "claimdesk/internal/inference/vllm"
	"claimdesk/internal/orchestrator"
	"claimdesk/internal/service"
	"claimdesk/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		inputDir   = flag.String("input", "", "directory of .txt documents (required)")
		outputPath = flag.String("output", "", "output file (default stdout, json only)")
		format     = flag.String("format", "json", "output format: json, csv, or xlsx")
		ocrQuality = flag.Float64("ocr-quality", 0.9, "OCR quality for all documents, in [0,1]")
		useModel   = flag.Bool("model", false, "enable the inference-backed extraction pass")
	)
	flag.Parse()

	if *inputDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required -input directory")
	}
	if *format != "json" && *format != "csv" && *format != "xlsx" {
		return fmt.Errorf("unknown format %q", *format)
	}
	if (*format == "csv" || *format == "xlsx") && *outputPath == "" {
		return fmt.Errorf("-output is required for %s format", *format)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	inputs, err := readDocuments(*inputDir, *ocrQuality)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no .txt documents in %s", *inputDir)
	}

	svc, err := buildService(cfg, *useModel)
	if err != nil {
		return err
	}

	results, stats := svc.ExtractBatch(context.Background(), inputs)

	outcomes := make([]*domain.ExtractionOutcome, 0, len(results))
	for _, r := range results {
		if r != nil {
			outcomes = append(outcomes, r.Outcome)
		}
	}

	if err := writeOutcomes(*outputPath, *format, outcomes); err != nil {
		return err
	}

	log.Printf("processed %d documents: %d accepted, %d review, %d rejected, %d duplicates, %d model failures",
		stats.Documents, stats.Accepted, stats.ManualReview, stats.Rejected, stats.Duplicates, stats.ModelFailed)
	return nil
}

func buildService(cfg *config.Config, useModel bool) (*service.ExtractionService, error) {
	var modelExt orchestrator.ModelExtractor
	if useModel && cfg.Inference.Enabled {
		client, err := inference.NewClient(&cfg.Inference)
		if err != nil {
			return nil, fmt.Errorf("initializing inference client: %w", err)
		}
		modelExt = model.New(client, model.Config{
			MaxRetries:        cfg.Inference.MaxRetries,
			BackoffBase:       time.Duration(cfg.Inference.BackoffBaseMS) * time.Millisecond,
			BackoffCap:        time.Duration(cfg.Inference.BackoffCapMS) * time.Millisecond,
			Timeout:           time.Duration(cfg.Inference.TimeoutSecs) * time.Second,
			Temperature:       cfg.Inference.Temperature,
			MaxOutputTokens:   cfg.Inference.MaxOutputTokens,
			ProximityBaseline: cfg.Extract.ModelProximityBaseline,
		})
	}

	fieldValidator := validator.New(validator.Config{
		MaxYearsBack: cfg.Extract.MaxYearsBack,
		FraudCeiling: cfg.Extract.FraudCeiling,
	})
	scorer := confidence.New(cfg.Extract.OptionalAbsentConfidence)
	orch := orchestrator.New(modelExt, pattern.New(), fieldValidator, scorer, dupes.NewMemoryIndex(), orchestrator.Config{
		AcceptThreshold:     cfg.Extract.AcceptThreshold,
		AutoAcceptThreshold: cfg.Extract.AutoAcceptThreshold,
	})

	return service.NewExtractionService(
		orch, nil,
		time.Duration(cfg.Extract.DocumentTimeoutSecs)*time.Second,
		cfg.Queue.Concurrency,
	), nil
}

func readDocuments(dir string, ocrQuality float64) ([]*service.ExtractInput, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	inputs := make([]*service.ExtractInput, 0, len(names))
	for _, name := range names {
		text, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		inputs = append(inputs, &service.ExtractInput{
			Text:           string(text),
			OCRQuality:     ocrQuality,
			SourceMetadata: map[string]string{"file": name},
		})
	}
	return inputs, nil
}

func writeOutcomes(path, format string, outcomes []*domain.ExtractionOutcome) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "csv":
		if _, err := out.Write(export.BOM); err != nil {
			return err
		}
		w := export.NewCSVWriter(out)
		if err := w.WriteHeader(); err != nil {
			return err
		}
		if err := w.WriteOutcomes(outcomes); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	case "xlsx":
		return export.WriteXLSX(out, outcomes)
	default:
		return export.WriteJSON(out, outcomes)
	}
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"

	"alfredoptarigan/cv-reader/internal/config"
	"alfredoptarigan/cv-reader/internal/models"
	"alfredoptarigan/cv-reader/internal/services"
)

// Reads every PDF in a directory, sends them to the model as one batch and
// prints the outcome as JSON.
//
//	go run scripts/extract_cvs.go -dir ./cvs
func main() {
	dir := flag.String("dir", "./cvs", "directory containing the CV PDFs")
	flag.Parse()

	log.Println("🚀 Starting CV extraction...")

	// Load configuration
	cfg := config.Load()
	ctx := context.Background()

	paths, err := filepath.Glob(filepath.Join(*dir, "*.pdf"))
	if err != nil {
		log.Fatalf("❌ Failed to list %s: %v", *dir, err)
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		log.Printf("📭 No PDF files found in %s\n", *dir)
		printOutcome(models.ReadFailure{Explanation: "No PDF files found in " + *dir})
		return
	}

	pdfParser := services.NewPDFParserService()

	texts := make([]string, 0, len(paths))
	for _, path := range paths {
		text, err := pdfParser.ExtractText(path)
		if err != nil {
			log.Fatalf("❌ Failed to read %s: %v", path, err)
		}
		log.Printf("📄 %s: %d characters\n", filepath.Base(path), len(text))
		texts = append(texts, text)
	}

	provider, closeProvider, err := services.NewLLMProvider(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize LLM provider: %v", err)
	}
	defer closeProvider(ctx)

	agent, err := services.NewCandidateAgent(provider)
	if err != nil {
		log.Fatalf("❌ Failed to initialize candidate agent: %v", err)
	}

	extractCtx, cancel := context.WithTimeout(ctx, cfg.Worker.AgentTimeout)
	defer cancel()

	outcome, err := agent.Extract(extractCtx, services.BuildBatch(texts))
	if err != nil {
		log.Fatalf("❌ Extraction failed: %s", services.SanitizeForClient(err))
	}

	printOutcome(outcome)
}

func printOutcome(outcome models.Outcome) {
	out := map[string]any{"outcome": models.OutcomeKind(outcome)}
	switch o := outcome.(type) {
	case models.CandidateList:
		out["candidates"] = o.Candidates
	case models.ReadFailure:
		out["explanation"] = o.Explanation
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("❌ Failed to write result: %v", err)
	}
}

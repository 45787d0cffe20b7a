package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"captioner/internal/bootstrap"
	"captioner/internal/captions"
	"captioner/internal/domain"
	"captioner/internal/infra"
)

func main() {
	var (
		industryFlag string
		toneFlag     string
		lengthFlag   int
	)
	flag.StringVar(&industryFlag, "industry", "", "business or topic to write captions for")
	flag.StringVar(&toneFlag, "tone", "", "voice of the captions, e.g. playful")
	flag.IntVar(&lengthFlag, "length", 3, "number of captions")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadPipelineConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLoggerTo(os.Stderr, cfg.AppEnv).With().Str("cmd", "captions").Logger()

	req, err := domain.NewGenerationRequest(industryFlag, toneFlag, lengthFlag, cfg.MaxCaptions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\nusage: captions -industry <topic> -tone <tone> [-length n]\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := bootstrap.NewPipeline(ctx, cfg, &logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		os.Exit(1)
	}

	gen, err := pipeline.Service.Generate(ctx, req)
	if err != nil {
		code := 1
		if errors.Is(err, domain.ErrTimeout) {
			code = 3
		}
		fmt.Fprintf(os.Stderr, "generate: %v\n", err)
		os.Exit(code)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(captions.Assemble(gen.Captions, gen.Image, req.Topic)); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/di"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *zap.Logger, flags *di.CLIFlags, service *core.AnalysisService) error {
	defer logger.Sync()

	req, err := buildRequest(flags, logger)
	if err != nil {
		return err
	}

	// Print input summary
	fmt.Printf("\n=== Input Summary ===\n")
	fmt.Printf("Type: %s\n", req.Type)
	fmt.Printf("Context: %s\n", req.Context)
	fmt.Printf("Language: %s\n", req.Language)
	if req.Type == core.AnalysisTypeImage {
		fmt.Printf("Image size: %d bytes (%s)\n", len(req.Binary), req.MIMEType)
	} else {
		fmt.Printf("Content length: %d bytes\n", len(req.Content))
	}
	if req.Sender != "" {
		fmt.Printf("Sender: %s\n", req.Sender)
	}

	fmt.Printf("\n=== Analysis ===\n")
	fmt.Printf("Provider: %s\n", flags.Provider)

	startTime := time.Now()
	result, err := service.Analyze(context.Background(), req)
	if err != nil {
		logger.Fatal("Failed to analyze content", zap.Error(err))
	}
	duration := time.Since(startTime)

	// Print results
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Is scam: %t\n", result.IsScam)
	fmt.Printf("Risk score: %d/100\n", result.RiskScore)
	if result.ScamType != "" {
		fmt.Printf("Scam type: %s\n", result.ScamType)
	}
	fmt.Printf("Advice: %s\n", result.Advice)
	if len(result.Triggers) > 0 {
		fmt.Printf("Triggers:\n")
		for _, trigger := range result.Triggers {
			fmt.Printf("  - %s\n", trigger)
		}
	}
	fmt.Printf("Model used: %s\n", result.ModelUsed)
	fmt.Printf("Processing time: %v\n", duration)

	return nil
}

// buildRequest assembles an analysis request from flags and input
func buildRequest(flags *di.CLIFlags, logger *zap.Logger) (*core.AnalysisRequest, error) {
	req := &core.AnalysisRequest{
		Type:     core.AnalysisType(flags.ContentType),
		Context:  core.ScamContext(flags.Context),
		Language: core.Language(flags.Language),
		Sender:   flags.Sender,
	}

	var data []byte
	var err error
	if flags.InputFile != "" {
		data, err = os.ReadFile(flags.InputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		logger.Info("Reading content from file", zap.String("file", flags.InputFile))
	} else {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		logger.Info("Reading content from stdin")
	}

	if req.Type == core.AnalysisTypeImage {
		req.Binary = data
		req.MIMEType = http.DetectContentType(data)
	} else {
		req.Content = strings.TrimSpace(string(data))
	}

	return req, nil
}

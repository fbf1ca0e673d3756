package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"formzen/internal/config"
	"formzen/internal/service/forms"
	"formzen/internal/service/llm"

	"github.com/joho/godotenv"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// Interactive prompt tester: sends descriptions through the same prompt,
// provider and parser as the server, without touching storage.
//
//	go run ./scripts "a feedback form for a coffee shop"
//	go run ./scripts            (interactive)
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx := context.Background()
	client, err := llm.NewProviderFactory(cfg, logger).NewClient(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sfailed to create client: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}

	fmt.Printf("%sprovider: %s  model: %s%s\n", colorCyan, client.Provider(), client.Model(), colorReset)

	if len(os.Args) > 1 {
		if !run(ctx, client, strings.Join(os.Args[1:], " ")) {
			os.Exit(1)
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%sdescribe a form (empty line to quit)> %s", colorYellow, colorReset)
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			return
		}
		run(ctx, client, line)
	}
}

// run generates and prints one form, reporting whether it parsed
func run(ctx context.Context, client *llm.Client, description string) bool {
	prompt, err := forms.BuildPrompt(description)
	if err != nil {
		fmt.Printf("%sinvalid description: %v%s\n", colorRed, err, colorReset)
		return false
	}

	start := time.Now()
	raw, err := client.Complete(ctx, prompt)
	if err != nil {
		fmt.Printf("%sgeneration failed: %v%s\n", colorRed, err, colorReset)
		return false
	}
	elapsed := time.Since(start)

	content, err := forms.ParseFormContent(raw)
	if err != nil {
		fmt.Printf("%s%v%s\nraw output:\n%s\n", colorRed, err, colorReset, raw)
		return false
	}

	pretty, _ := json.MarshalIndent(content, "", "  ")
	fmt.Printf("%s%s (%d fields, %s)%s\n%s\n", colorGreen, content.FormTitle, len(content.FormFields),
		elapsed.Round(time.Millisecond), colorReset, pretty)
	return true
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/duynguyendang/deconstructor/pkg/config"
	"github.com/duynguyendang/deconstructor/pkg/gemini"
	"github.com/duynguyendang/deconstructor/pkg/history"
	"github.com/duynguyendang/deconstructor/pkg/pipeline"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	modeFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "deconstructor",
	Short: "Multi-stage media analysis with Gemini",
	Long: `Deconstructor ingests text, audio, video, images, URLs and file
collections, routes each input through a modality-specific sequence of
analysis stages, and produces a structured analysis result.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "standard", "analysis mode: standard or express")
}

// app bundles the shared runtime pieces a command needs.
type app struct {
	cfg    config.Config
	client *gemini.Client
	orch   *pipeline.Orchestrator
	store  *history.Store
}

func newApp(ctx context.Context) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	client, err := gemini.NewClient(ctx, os.Getenv("GEMINI_API_KEY"), cfg.Model)
	if err != nil {
		return nil, err
	}

	store, err := history.Open(filepath.Join(cfg.DataDir, "history.json"))
	if err != nil {
		return nil, err
	}

	orch := pipeline.New(client, pipeline.Options{VerifyConcurrency: cfg.VerifyConcurrency})
	return &app{cfg: cfg, client: client, orch: orch, store: store}, nil
}

// stderrProgress forwards stage progress to stderr so stdout stays clean
// JSON.
func stderrProgress(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

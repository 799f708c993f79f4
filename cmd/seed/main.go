package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"garmentscore/internal/app"
	"garmentscore/internal/catalog"
	"garmentscore/internal/config"
	"garmentscore/internal/logger"
	"garmentscore/internal/model"
)

var catalogFile string

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the question catalog into MongoDB",
	Long: `Upserts every category and question of the catalog, retires questions
that are no longer listed and drops the cached catalog.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	rootCmd.Flags().StringVarP(&catalogFile, "file", "f", "", "catalog YAML (defaults to the built-in garment catalog)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return err
	}
	defer log.Sync()

	c, err := loadCatalog(catalogFile)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	return a.CatalogService.Seed(ctx, c)
}

func loadCatalog(path string) (*model.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return catalog.Load(f)
}

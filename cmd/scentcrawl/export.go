package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scentdb/scentcrawl/internal/config"
	"github.com/scentdb/scentcrawl/internal/export"
	"github.com/scentdb/scentcrawl/internal/log"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Combine CSV stores into one XLSX workbook",
		Long: `Export gathers the per-brand CSV stores and writes them into a
single XLSX workbook, one sheet per brand. Stores that are missing or
empty are skipped with a log line rather than failing the run.

By default every CSV in the data directory becomes a sheet. Pass
--brand or --brands-file to select specific stores instead.

Examples:
  scentcrawl export
  scentcrawl export --data-dir "Saved Data" --out catalog.xlsx
  scentcrawl export --brand Chanel --brand Dior -o designers.xlsx`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}

	cmd.Flags().String("data-dir", "",
		"Directory holding the CSV stores (default: XDG data dir)")
	cmd.Flags().StringP("out", "o", "",
		"Workbook path (default: catalog.xlsx in the data directory)")
	cmd.Flags().StringArrayP("brand", "b", nil,
		"Export only this brand's store (repeatable)")
	cmd.Flags().String("brands-file", "",
		"File with one brand per line to export")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()

	var err error
	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	brands, err := cmd.Flags().GetStringArray("brand")
	if err != nil {
		return err
	}
	brandsFile, err := cmd.Flags().GetString("brands-file")
	if err != nil {
		return err
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	if brandsFile != "" {
		fromFile, err := config.LoadLines(brandsFile)
		if err != nil {
			return err
		}
		brands = append(brands, fromFile...)
	}
	brands = config.DedupeBrands(brands)

	inputs, err := exportInputs(cfg, brands)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = filepath.Join(cfg.DataDir, "catalog.xlsx")
	}

	stats, err := export.New(export.WithLogger(logger)).XLSX(ctx, inputs, outPath)
	if err != nil {
		return err
	}
	logger.Info("workbook written",
		"path", outPath,
		"sheets", stats.Sheets,
		"rows", stats.Rows,
		"skipped", stats.Skipped,
	)
	return nil
}

// exportInputs resolves which stores to export. Named brands map
// through the store naming scheme; otherwise every CSV in the data
// directory is taken, labeled by its file name with underscores
// turned back into spaces.
func exportInputs(cfg *config.Config, brands []string) ([]export.Input, error) {
	if len(brands) > 0 {
		inputs := make([]export.Input, 0, len(brands))
		for _, brand := range brands {
			inputs = append(inputs, export.Input{
				Label: brand,
				Path:  cfg.StorePath(brand),
			})
		}
		return inputs, nil
	}

	paths, err := filepath.Glob(filepath.Join(cfg.DataDir, "*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	inputs := make([]export.Input, 0, len(paths))
	for _, path := range paths {
		base := strings.TrimSuffix(filepath.Base(path), ".csv")
		inputs = append(inputs, export.Input{
			Label: strings.ReplaceAll(base, "_", " "),
			Path:  path,
		})
	}
	return inputs, nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tnatlas/adapters/api"
	"tnatlas/adapters/csvdata"
	"tnatlas/adapters/excel"
	"tnatlas/adapters/postgres"
	"tnatlas/app"
	"tnatlas/domain/core"
	"tnatlas/domain/estimate"
	"tnatlas/domain/study"
	"tnatlas/internal"
	"tnatlas/internal/config"
	"tnatlas/internal/report"
	"tnatlas/internal/testkit"
	"tnatlas/ports"
)

var logger = internal.DefaultLogger

func main() {
	// Missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "tnatlas",
		Short: "State-level treatment pattern analysis for trigeminal neuralgia",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newExportCmd(),
		newServeCmd(),
		newMigrateCmd(),
		newGenerateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full analysis pipeline over the cleaned extracts",
		Long: `Read the cleaned state extracts, impute suppressed cells, compute the
national, regional and state-level statistics, and write the publication
tables, workbook and methods section to the output directory.

Example: tnatlas analyze --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), save)
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Persist the run to Postgres (requires DATABASE_URL)")
	return cmd
}

func runAnalyze(ctx context.Context, save bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	reader := csvdata.NewReader(cfg.Analysis.ImputeValue)
	meds, err := reader.ReadFile(filepath.Join(cfg.Data.DataDir, cfg.Data.MedicationsCSV), study.KindMedication)
	if err != nil {
		return err
	}
	procs, err := reader.ReadFile(filepath.Join(cfg.Data.DataDir, cfg.Data.ProceduresCSV), study.KindProcedure)
	if err != nil {
		return err
	}

	svc := app.NewAnalysisService(cfg.Analysis.ConfidenceLevel, logger)
	run, err := svc.Analyze(ctx, app.AnalyzeRequest{Medications: meds, Procedures: procs})
	if err != nil {
		return err
	}

	if err := writeArtifacts(run, cfg.Data.OutputDir); err != nil {
		return err
	}

	if save {
		if err := saveRun(ctx, cfg, run); err != nil {
			return err
		}
	}

	logger.Info("analysis complete: run %s, artifacts in %s", run.ID, cfg.Data.OutputDir)
	return nil
}

func writeArtifacts(run *estimate.Run, outputDir string) error {
	assembler := report.NewAssembler()
	tables := assembler.Tables(run)

	csvWriter, err := report.NewCSVWriter(outputDir)
	if err != nil {
		return err
	}
	writers := []ports.TableWriter{csvWriter, excel.NewWorkbookWriter(outputDir)}
	for _, w := range writers {
		if err := w.WriteTables(tables); err != nil {
			return err
		}
	}

	manuscript := report.NewManuscript()
	methods := manuscript.Methods(run)
	if err := os.WriteFile(filepath.Join(outputDir, "methods.md"), []byte(methods), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outputDir, "methods.html"), manuscript.RenderHTML(methods), 0o644); err != nil {
		return err
	}
	return nil
}

func saveRun(ctx context.Context, cfg *config.Config, run *estimate.Run) error {
	db, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.NewMigrationRunner().Run(ctx, db); err != nil {
		return err
	}
	if err := postgres.NewRunRepository(db).SaveRun(ctx, run); err != nil {
		return err
	}
	logger.Info("run %s saved to database", run.ID)
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "Re-export the artifacts of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), args[0])
		},
	}
	return cmd
}

func runExport(ctx context.Context, rawID string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	id, err := core.ParseRunID(rawID)
	if err != nil {
		return err
	}

	db, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := postgres.NewRunRepository(db).GetRun(ctx, id)
	if err != nil {
		return err
	}
	return writeArtifacts(run, cfg.Data.OutputDir)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored runs over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	return cmd
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	server := api.NewServer(postgres.NewRunRepository(db), logger)
	addr := ":" + cfg.Server.Port
	logger.Info("listening on %s", addr)
	return http.ListenAndServe(addr, server.Router())
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := postgres.Connect(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()

			runner := postgres.NewMigrationRunner()
			if err := runner.Run(cmd.Context(), db); err != nil {
				return err
			}
			logger.Info("schema migrated to version %s", runner.Version())
			return nil
		},
	}
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var seed int64
	var per100k float64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic extract CSVs for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			genCfg := testkit.DefaultExtractConfig()
			genCfg.Seed = seed
			genCfg.PatientsPer100k = per100k
			return writeSyntheticExtracts(cfg, genCfg)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic generation")
	cmd.Flags().Float64Var(&per100k, "per-100k", 30.0, "Cohort size per 100,000 population")
	return cmd
}

func writeSyntheticExtracts(cfg *config.Config, genCfg testkit.ExtractConfig) error {
	if err := os.MkdirAll(cfg.Data.DataDir, 0o755); err != nil {
		return err
	}

	write := func(name string, fn func(w *os.File) error) error {
		f, err := os.Create(filepath.Join(cfg.Data.DataDir, name))
		if err != nil {
			return err
		}
		defer f.Close()
		return fn(f)
	}

	g := testkit.NewExtractGenerator(genCfg)
	if err := write(cfg.Data.MedicationsCSV, func(f *os.File) error {
		return g.WriteMedicationsCSV(f)
	}); err != nil {
		return err
	}
	if err := write(cfg.Data.ProceduresCSV, func(f *os.File) error {
		return g.WriteProceduresCSV(f)
	}); err != nil {
		return err
	}
	logger.Info("synthetic extracts written to %s", cfg.Data.DataDir)
	return nil
}

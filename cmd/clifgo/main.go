// Command clifgo runs the wide-dataset builder, vasopressor unit
// conversion, and hourly aggregator against a directory of CLIF Parquet or
// CSV files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"clifgo/clif"
	"clifgo/engine"
	"clifgo/hourly"
	"clifgo/loader"
	"clifgo/output"
	"clifgo/vaso"
	"clifgo/wide"
)

func main() {
	dataDir := flag.String("data", "", "Directory containing clif_*.parquet or clif_*.csv files")
	configPath := flag.String("config", "", "YAML run config (cohort, optional tables, category filters, aggregation spec)")
	format := flag.String("format", "parquet", "Input table format: parquet or csv")
	siteTZ := flag.String("site-tz", "", "IANA site timezone to convert timestamps into")
	outWide := flag.String("out-wide", "", "Path to write the wide event table (parquet or csv, by extension); defaults to a generated {output_filename} in -data")
	outHourly := flag.String("out-hourly", "", "Path to write the hourly table (parquet or csv, by extension); defaults to a generated {output_filename} in -data")
	logLevel := flag.String("log-level", "info", "Library log level: debug, info, warn, error")
	flag.Parse()

	if *dataDir == "" || *configPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: clifgo -data DIR -config run.yaml [-format parquet|csv] [-site-tz America/Chicago] [-out-wide FILE] [-out-hourly FILE]\n")
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.NewConsoleWriter()).Level(level).With().Timestamp().Logger()

	if err := run(*dataDir, *configPath, *format, *siteTZ, *outWide, *outHourly, &logger); err != nil {
		fmt.Fprintf(os.Stderr, "clifgo: %v\n", err)
		os.Exit(1)
	}
}

func run(dataDir, configPath, format, siteTZ, outWide, outHourly string, logger *zerolog.Logger) error {
	start := time.Now()
	ctx := context.Background()

	cfg, err := loadRunConfig(configPath)
	if err != nil {
		return err
	}

	loadOpts := loader.Options{Format: loader.Format(format), SiteTZ: siteTZ}

	fmt.Println("Loading base tables...")
	patient, _, err := loader.Load(ctx, "patient", dataDir, loadOpts)
	if err != nil {
		return fmt.Errorf("load patient: %w", err)
	}
	hosp, _, err := loader.Load(ctx, "hospitalization", dataDir, loadOpts)
	if err != nil {
		return fmt.Errorf("load hospitalization: %w", err)
	}
	adt, _, err := loader.Load(ctx, "adt", dataDir, loadOpts)
	if err != nil {
		logger.Warn().Err(err).Msg("clifgo: adt table not loaded")
		adt = nil
	}
	fmt.Printf("  patient: %d rows, hospitalization: %d rows\n", len(patient.Rows), len(hosp.Rows))

	sourceTables := map[string]*clif.Table{}
	for _, name := range cfg.OptionalTables {
		t, _, err := loader.Load(ctx, name, dataDir, loadOpts)
		if err != nil {
			logger.Warn().Str("table", name).Err(err).Msg("clifgo: optional table not loaded")
			continue
		}
		sourceTables[name] = t
		fmt.Printf("  %s: %d rows\n", name, len(t.Rows))
	}

	if med, ok := sourceTables["medication_admin_continuous"]; ok && cfg.VasoTargetUnit != "" {
		fmt.Printf("Converting vasopressor units to %s...\n", cfg.VasoTargetUnit)
		conn, err := engine.Open(ctx)
		if err != nil {
			return fmt.Errorf("open vaso engine: %w", err)
		}
		converted, err := vaso.Convert(ctx, conn, med, sourceTables["vitals"], vaso.Options{
			TargetUnit: cfg.VasoTargetUnit,
			Logger:     logger,
		})
		conn.Close()
		if err != nil {
			return fmt.Errorf("vaso convert: %w", err)
		}
		sourceTables["medication_admin_continuous"] = converted
	}

	fmt.Println("Building wide event table...")
	wideResult, err := wide.Build(ctx, wide.Input{
		Patient:         patient,
		Hospitalization: hosp,
		ADT:             adt,
		Sources:         sourceTables,
	}, wide.Options{
		OptionalTables:  cfg.OptionalTables,
		CategoryFilters: cfg.CategoryFilters,
		Cohort:          cfg.cohort(),
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("build wide: %w", err)
	}
	fmt.Printf("  wide table: %d rows, %d columns\n", len(wideResult.Rows), len(wideResult.Columns))

	outputFormat := output.Parquet
	if strings.EqualFold(format, "csv") {
		outputFormat = output.CSV
	}

	widePath := outWide
	if widePath == "" {
		widePath = filepath.Join(dataDir, output.DefaultFilename("wide_dataset", outputFormat))
	}
	if err := output.Write(ctx, wideResult, widePath, formatFor(widePath)); err != nil {
		return fmt.Errorf("write wide output: %w", err)
	}
	fmt.Printf("  wrote %s\n", widePath)

	if len(cfg.Aggregation) > 0 {
		fmt.Println("Aggregating hourly table...")
		hourlyResult, err := hourly.Aggregate(ctx, wideResult, cfg.aggregationSpec(), hourly.Options{Logger: logger})
		if err != nil {
			return fmt.Errorf("aggregate hourly: %w", err)
		}
		fmt.Printf("  hourly table: %d rows, %d columns\n", len(hourlyResult.Rows), len(hourlyResult.Columns))

		hourlyPath := outHourly
		if hourlyPath == "" {
			hourlyPath = filepath.Join(dataDir, output.DefaultFilename("hourly_dataset", outputFormat))
		}
		if err := output.Write(ctx, hourlyResult, hourlyPath, formatFor(hourlyPath)); err != nil {
			return fmt.Errorf("write hourly output: %w", err)
		}
		fmt.Printf("  wrote %s\n", hourlyPath)
	}

	fmt.Printf("Done in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func formatFor(path string) output.Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return output.CSV
	}
	return output.Parquet
}

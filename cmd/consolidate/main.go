package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"prescricoes/internal/config"
	"prescricoes/internal/metrics"
	"prescricoes/internal/metrics/prompush"
	"prescricoes/internal/pipeline"
	"prescricoes/internal/storage/parquetfile"
)

// main consolidates the yearly grouped_YYYY.csv extracts into one snappy
// Parquet file, joining the substance dictionary on the way.
func main() {
	var (
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	cfg := config.Defaults()
	flag.StringVar(&cfg.InputDir, "input-dir", cfg.InputDir, "directory holding the grouped_YYYY.csv extracts")
	flag.StringVar(&cfg.DictPath, "dict", cfg.DictPath, "substance dictionary CSV path")
	flag.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "consolidated Parquet output path")
	flag.StringVar(&cfg.ReportPath, "report", "", "unmatched-by-year report path (default: next to -output)")
	flag.StringVar(&cfg.Job, "job", cfg.Job, "job label for metrics")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasError(issues) {
		log.Print("configuration is invalid")
		os.Exit(1)
	}
	if validate {
		log.Print("configuration is valid")
		os.Exit(0)
	}

	// Decide metrics backend: flag → env → default (disabled).
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(cfg.Job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: url=%v backend=%v job=%v", gwURL, backendName, cfg.Job)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "", "none":
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()
	start := time.Now()

	plan, err := pipeline.BuildPlan(ctx, cfg)
	if err != nil {
		log.Fatalf("plan: %v", err)
	}
	if *verbose {
		log.Printf("plan: files=%d superset=%d output_columns=%d dict_keys=%d",
			len(plan.Files), len(plan.Superset), len(plan.Columns()), plan.Dict.Len())
		for _, sf := range plan.Files {
			log.Printf("plan: %s year=%s sep=%q encoding=%s columns=%d",
				sf.Info.Path, sf.Info.Year, sf.Info.Sep, sf.Info.Encoding, len(sf.Info.Columns))
		}
	}

	w, err := parquetfile.NewWriter(cfg.OutputPath, plan.Columns())
	if err != nil {
		log.Fatalf("open output: %v", err)
	}

	stats, err := plan.Execute(ctx, w)
	if err != nil {
		w.Close()
		log.Fatalf("consolidate: %v", err)
	}
	if err := w.Close(); err != nil {
		log.Fatalf("finalize output: %v", err)
	}

	// The report is diagnostic only: log and continue on failure.
	reportPath := cfg.ReportPathOrDefault()
	repStart := time.Now()
	repErr := pipeline.WriteUnmatchedReport(reportPath, stats.Unmatched)
	metrics.RecordStep(cfg.Job, "unmatched_report", repErr, time.Since(repStart))
	if repErr != nil {
		log.Printf("warning: %v", repErr)
	} else if *verbose {
		log.Printf("report: %s", reportPath)
	}

	var unmatched int64
	for _, n := range stats.Unmatched {
		unmatched += n
	}
	log.Printf("done: files=%d rows=%d skipped=%d unmatched=%d output=%s elapsed=%s",
		stats.Files, stats.RowsWritten, stats.RowsSkipped, unmatched,
		cfg.OutputPath, time.Since(start).Truncate(time.Millisecond))
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"csvanon/internal/config"
	"csvanon/internal/metrics"
	"csvanon/internal/metrics/datadog"
	"csvanon/internal/pipeline"

	// register all sink backends with the factory.
	// config selects which one to use but support for all of them is built in.
	_ "csvanon/internal/sink/all"
)

// main is the entry point for the anonymizer binary. It assembles a job
// from a config file or from flags, optionally initializes a metrics
// backend, and executes the run.
func main() {
	var (
		cfgPath           string
		input             string
		output            string
		fraction          float64
		rows              int
		columnsFlg        string
		keepFlg           string
		noHeader          bool
		encoding          string
		outEncoding       string
		delimiter         string
		outDelimiter      string
		seed              int64
		sinkKind          string
		dsn               string
		tableName         string
		metricsBackendFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "", "job config JSON path (overrides the other flags)")
	flag.StringVar(&input, "input", "", "input delimited file")
	flag.StringVar(&output, "output", "", "output file (file sink)")
	flag.Float64Var(&fraction, "sample", 0, "fraction of rows to keep, in (0,1]")
	flag.IntVar(&rows, "rows", -1, "number of rows to keep (alternative to -sample)")
	flag.StringVar(&columnsFlg, "columns", "", "comma-separated sensitive columns to anonymize")
	flag.StringVar(&keepFlg, "keep", "", "comma-separated columns to retain (default all)")
	flag.BoolVar(&noHeader, "no-header", false, "input has no header row")
	flag.StringVar(&encoding, "encoding", "", "input encoding (default auto-detect)")
	flag.StringVar(&outEncoding, "out-encoding", "", "output encoding (default utf-8)")
	flag.StringVar(&delimiter, "delimiter", "", "input field delimiter (default comma)")
	flag.StringVar(&outDelimiter, "out-delimiter", "", "output field delimiter (default comma)")
	flag.Int64Var(&seed, "seed", 0, "random seed for reproducible runs (0 means time-derived)")
	flag.StringVar(&sinkKind, "sink", "", "output sink kind: file, sqlite, postgres, mssql (default file)")
	flag.StringVar(&dsn, "dsn", "", "database DSN (database sinks)")
	flag.StringVar(&tableName, "table", "", "destination table name (database sinks)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (datadog, none)")
	flag.BoolVar(&validate, "validate", false, "validate the job and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()
	log.SetFlags(0)

	var job config.Job
	if cfgPath != "" {
		f, err := os.Open(cfgPath)
		if err != nil {
			fatalf("open config: %v", err)
		}
		dec := json.NewDecoder(f)
		dec.DisallowUnknownFields()
		err = dec.Decode(&job)
		f.Close()
		if err != nil {
			fatalf("decode config: %v", err)
		}
	} else {
		job = config.Job{
			Input: config.Input{
				Path:      input,
				Encoding:  encoding,
				Delimiter: delimiter,
				NoHeader:  noHeader,
			},
			Sample: config.Sample{
				KeepColumns: splitCSV(keepFlg),
			},
			Anonymize: config.Anonymize{
				Columns: splitCSV(columnsFlg),
			},
			Output: config.Output{
				Kind:      sinkKind,
				Path:      output,
				Encoding:  outEncoding,
				Delimiter: outDelimiter,
				DSN:       dsn,
				Table:     tableName,
			},
		}
		if rows >= 0 {
			job.Sample.Rows = &rows
		}
		if fraction != 0 {
			job.Sample.Fraction = &fraction
		}
		if seed != 0 {
			job.Seed = &seed
		}
	}

	// Validate the job.
	issues := config.Validate(job)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s\n", iss)
	}
	if config.HasError(issues) {
		if cfgPath != "" {
			log.Printf("job is invalid: %v", cfgPath)
			os.Exit(1)
		}
		flag.Usage()
		os.Exit(2)
	}

	// If validate flag is set, only validate the job and exit.
	if validate {
		log.Printf("job is valid")
		os.Exit(0)
	}

	// Decide metrics backend: flag, then env, then none.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "datadog":
		jobName := job.Name
		if jobName == "" {
			jobName = "csvanon"
		}
		extraTags := datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS"))

		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName: jobName,
			Tags:    extraTags,
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			if *verbose {
				log.Printf("metrics: backend=%v job_name=%v tags=%v", backendName, jobName, extraTags)
			}
			metrics.SetBackend(b)
			// Close stops the flush loop and performs the final flush.
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("metrics: datadog close/flush error: %v", err)
				}
			}()
		}

	case "", "none":
		// metrics disabled; nop backend remains

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()
	start := time.Now()

	if err := pipeline.Run(ctx, job, *verbose); err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

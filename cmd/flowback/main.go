package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"flowback/internal/config"
	"flowback/internal/metrics"
	"flowback/internal/metrics/prompush"

	// register every storage backend; the config picks one by kind.
	_ "flowback/internal/storage/all"
)

// main loads and validates the run config, installs the metrics backend and
// executes one run. Interrupts cancel the run between files; the dataset is
// only ever replaced atomically.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)
	flag.StringVar(&cfgPath, "config", "configs/flowback.json", "run config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend (pushgateway, none); env METRICS_BACKEND")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL; env PUSHGATEWAY_URL")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	if flush := setupMetrics(cfg.Job, metricsBackendFlg, pushGatewayURLFlg); flush != nil {
		defer flush()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := run(ctx, cfg)
	if err != nil {
		stop()
		fatalf("%v", err)
	}
	sum.Log()
}

// setupMetrics installs the chosen backend: flag, then env, then none. It
// returns the flush to defer, or nil when metrics are disabled.
func setupMetrics(job, backendName, gwURL string) func() {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return nil
		}
		log.Printf("metrics: url=%v backend=%v job_name=%v", gwURL, backendName, job)
		metrics.SetBackend(b)
		return func() {
			if err := metrics.Flush(); err != nil {
				log.Printf("metrics: flush error: %v", err)
			}
		}
	case "", "none":
		return nil
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
		return nil
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

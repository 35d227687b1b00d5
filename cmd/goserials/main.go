package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/x1thexxx-lgtm/goserials/pkg/appliance"
	"github.com/x1thexxx-lgtm/goserials/pkg/collector"
	"github.com/x1thexxx-lgtm/goserials/pkg/config"
	"github.com/x1thexxx-lgtm/goserials/pkg/inputs"
	"github.com/x1thexxx-lgtm/goserials/pkg/logging"
	"github.com/x1thexxx-lgtm/goserials/pkg/report"
	"github.com/x1thexxx-lgtm/goserials/pkg/scheduler"
)

func main() {
	var configPath string
	var command string
	var targetsPath string
	var credentialsPath string
	var outputPath string
	flag.StringVar(&configPath, "config", "goserials.yaml", "path to config file")
	flag.StringVar(&command, "command", "collect", "command to run (collect|list|watch)")
	flag.StringVar(&targetsPath, "targets", "", "override the target list path")
	flag.StringVar(&credentialsPath, "credentials", "", "override the credential file path")
	flag.StringVar(&outputPath, "output", "", "override the results file path")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fatal(err)
	}
	if targetsPath != "" {
		cfg.Files.Targets = targetsPath
	}
	if credentialsPath != "" {
		cfg.Files.Credentials = credentialsPath
	}
	if outputPath != "" {
		cfg.Files.Results = outputPath
	}

	logger, err := logging.New(cfg.Logging.Path, logging.ParseLevel(cfg.Logging.Level))
	if err != nil {
		fatal(err)
	}

	switch command {
	case "list":
		if err := listTargets(cfg); err != nil {
			fatal(err)
		}
	case "collect":
		// A config with the scheduler enabled turns a plain collect into
		// periodic re-collection.
		if cfg.Scheduler.Enabled {
			runWatch(cfg, logger)
			return
		}
		job, err := newCollectJob(cfg, logger)
		if err != nil {
			fatal(err)
		}
		if err := job.Run(context.Background()); err != nil {
			fatal(err)
		}
	case "watch":
		runWatch(cfg, logger)
	default:
		fmt.Println("unknown command", command)
		os.Exit(1)
	}
}

func runWatch(cfg *config.Config, logger *logging.Logger) {
	job, err := newCollectJob(cfg, logger)
	if err != nil {
		fatal(err)
	}
	if cfg.Scheduler.Tick == "" {
		cfg.Scheduler.Tick = "30m"
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := scheduler.New(cfg.Scheduler, job, logger).Start(ctx); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "goserials:", err)
	os.Exit(1)
}

func listTargets(cfg *config.Config) error {
	targets, err := inputs.ReadTargets(cfg.Files.Targets)
	if err != nil {
		return err
	}
	for _, target := range targets {
		fmt.Println(target)
	}
	return nil
}

// collectJob wires inputs, client and probe into one runnable collection.
// Inputs are loaded once; a run that reaches this point can only fail on
// output writes.
type collectJob struct {
	cfg     *config.Config
	log     *logging.Logger
	targets []string
	cred    inputs.Credential
	client  *appliance.Client
	probe   *appliance.SNMPProbe
}

func newCollectJob(cfg *config.Config, logger *logging.Logger) (*collectJob, error) {
	targets, err := inputs.ReadTargets(cfg.Files.Targets)
	if err != nil {
		return nil, err
	}
	cred, err := inputs.ReadCredential(cfg.Files.Credentials)
	if err != nil {
		return nil, err
	}
	return &collectJob{
		cfg:     cfg,
		log:     logger,
		targets: targets,
		cred:    cred,
		client:  appliance.NewClient(cfg.API),
		probe:   appliance.NewSNMPProbe(cfg.SNMP),
	}, nil
}

// Run performs one full collection and rewrites the output files.
func (j *collectJob) Run(ctx context.Context) error {
	opts := []collector.Option{}
	if j.probe != nil {
		opts = append(opts, collector.WithProbe(j.probe))
	}
	rep, err := collector.New(j.targets, j.cred, j.client, j.log, opts...).Run(ctx)
	if err != nil {
		return err
	}
	if err := report.WriteCSV(j.cfg.Files.Results, rep.Rows); err != nil {
		return err
	}
	if j.cfg.Files.Summary != "" {
		if err := report.WriteSummary(j.cfg.Files.Summary, rep); err != nil {
			return err
		}
	}
	fmt.Printf("All queries processed. Results saved to %s\n", j.cfg.Files.Results)
	return nil
}

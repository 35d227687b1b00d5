// Package collector runs the per-target retrieval loop: one authenticated
// fetch per appliance, in input order, one result row per target.
package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/x1thexxx-lgtm/goserials/pkg/appliance"
	"github.com/x1thexxx-lgtm/goserials/pkg/inputs"
	"github.com/x1thexxx-lgtm/goserials/pkg/logging"
)

// Fetcher retrieves one serial number from one target.
type Fetcher interface {
	FetchSerial(ctx context.Context, target string, cred inputs.Credential) (string, error)
}

// SerialProbe is the optional fallback lookup tried when the REST fetch
// fails for reasons other than bad credentials or a bad payload.
type SerialProbe interface {
	SerialNumber(target string) (string, bool)
}

// Row is one line of the results table.
type Row struct {
	Target string
	Serial string
}

// Report is the outcome of one collection run.
type Report struct {
	RunID     string
	StartedAt time.Time
	Rows      []Row

	OK           int
	Connectivity int
	Auth         int
	Parse        int
	HTTP         int
}

// Collector iterates the target list with a shared credential.
type Collector struct {
	targets  []string
	cred     inputs.Credential
	fetcher  Fetcher
	probe    SerialProbe
	log      *logging.Logger
	progress io.Writer
}

// Option configures a Collector.
type Option func(*Collector)

// WithProbe attaches the SNMP fallback probe.
func WithProbe(p SerialProbe) Option {
	return func(c *Collector) {
		c.probe = p
	}
}

// WithProgress redirects the per-target progress lines. Defaults to stdout.
func WithProgress(w io.Writer) Option {
	return func(c *Collector) {
		c.progress = w
	}
}

// New builds a collector over an ordered target list.
func New(targets []string, cred inputs.Credential, fetcher Fetcher, log *logging.Logger, opts ...Option) *Collector {
	c := &Collector{
		targets:  targets,
		cred:     cred,
		fetcher:  fetcher,
		log:      log,
		progress: os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes every target in input order and returns one row per target.
// A failed target becomes a marker row; the run never aborts because one
// appliance is unreachable. Run stops early only when ctx is done.
func (c *Collector) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.New().String(), StartedAt: time.Now()}
	c.log.Infof("run %s starting for %d targets", report.RunID, len(c.targets))

	for _, target := range c.targets {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		fmt.Fprintf(c.progress, "Querying %s...\n", target)
		serial, err := c.fetcher.FetchSerial(ctx, target, c.cred)
		if err == nil {
			c.log.Debugf("%s -> %s", target, serial)
			report.OK++
			report.Rows = append(report.Rows, Row{Target: target, Serial: serial})
			continue
		}

		var fe *appliance.FetchError
		if !errors.As(err, &fe) {
			fe = &appliance.FetchError{Kind: appliance.KindConnectivity, Err: err}
		}

		// Auth and parse failures mean the appliance answered; the fallback
		// only makes sense when the REST endpoint itself was unusable.
		if c.probe != nil && fe.Kind != appliance.KindAuth && fe.Kind != appliance.KindParse {
			if serial, ok := c.probe.SerialNumber(target); ok {
				c.log.Infof("%s answered over SNMP after REST failure", target)
				report.OK++
				report.Rows = append(report.Rows, Row{Target: target, Serial: serial})
				continue
			}
		}

		c.log.Errorf("%s: %v", target, fe)
		switch fe.Kind {
		case appliance.KindConnectivity:
			report.Connectivity++
		case appliance.KindAuth:
			report.Auth++
		case appliance.KindParse:
			report.Parse++
		default:
			report.HTTP++
		}
		report.Rows = append(report.Rows, Row{Target: target, Serial: fe.Marker()})
	}

	c.log.Infof("run %s finished: %d ok, %d unreachable, %d auth, %d parse, %d http",
		report.RunID, report.OK, report.Connectivity, report.Auth, report.Parse, report.HTTP)
	return report, nil
}

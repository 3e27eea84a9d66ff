package seeder

import (
	"fmt"
	"time"

	"github.com/netsentry-io/netsentry/cli/internal/client"
)

// Options controls a seeding run.
type Options struct {
	Count       int           // number of reports to send
	IPBatchSize int           // entries in the trailing threat-IP batch, 0 to skip
	Spread      time.Duration // timestamps are spread across this window
	Seed        int64
	BenignRatio float64 // 0..1, fraction of BENIGN reports

	// Progress, if set, is called after each report.
	Progress func(sent, total int)
}

// Result summarizes a completed run.
type Result struct {
	Reports    int
	Failures   int
	ThreatIPs  int
	BySeverity map[string]int
}

// Run sends Count synthetic reports followed by an optional threat-IP
// batch. Individual report failures are counted, not fatal.
func Run(c *client.Client, ingestToken string, opts Options) (*Result, error) {
	if opts.Count <= 0 {
		return nil, fmt.Errorf("count must be positive")
	}

	gen := NewGenerator(opts.Seed)
	if opts.BenignRatio > 0 {
		gen.BenignRatio = opts.BenignRatio
	}

	res := &Result{BySeverity: make(map[string]int)}
	for i := 0; i < opts.Count; i++ {
		resp, err := c.SendReport(ingestToken, gen.Report(opts.Spread))
		if err != nil {
			res.Failures++
		} else {
			res.Reports++
			res.BySeverity[resp.Severity]++
		}
		if opts.Progress != nil {
			opts.Progress(i+1, opts.Count)
		}
	}

	if opts.IPBatchSize > 0 {
		processed, err := c.SendThreatIPs(ingestToken, gen.ThreatIPBatch(opts.IPBatchSize))
		if err != nil {
			return res, fmt.Errorf("threat IP batch: %w", err)
		}
		res.ThreatIPs = processed
	}

	return res, nil
}

// Package aggregate computes the read-only rollups and chart series
// the dashboard displays. It never writes incident data.
package aggregate

import (
	"github.com/netsentry-io/netsentry/internal/models"
)

// rollupWindow bounds how many recent incidents feed a rollup.
const rollupWindow = 1000

// Summary is the per-credential rollup over the recent window.
type Summary struct {
	TotalThreats       int     `json:"total_threats"`
	DDoSCount          int     `json:"ddos_count"`
	AttackTrafficRatio float64 `json:"attack_traffic_ratio"`
	AvgFlowCount       float64 `json:"avg_flow_count"`
}

// ComputeSummary rolls up a batch of incidents. Pure function:
//   - TotalThreats counts non-benign labels.
//   - DDoSCount counts the DDoS category.
//   - AttackTrafficRatio divides non-benign flow-count evidence by the
//     flow-count total; 0 when the denominator is 0. Always in [0,1].
//   - AvgFlowCount averages flow counts over incidents that report a
//     positive one; incidents without the evidence are excluded.
func ComputeSummary(incidents []*models.Incident) Summary {
	var s Summary
	var flowTotal, flowThreat float64
	var flowSum float64
	var flowN int

	for _, inc := range incidents {
		benign := inc.IsBenign()
		if !benign {
			s.TotalThreats++
		}
		if inc.Category == models.CategoryDDoS {
			s.DDoSCount++
		}

		fc := inc.Evidence.FlowCount()
		flowTotal += fc
		if !benign {
			flowThreat += fc
		}
		if fc > 0 {
			flowSum += fc
			flowN++
		}
	}

	if flowTotal > 0 {
		s.AttackTrafficRatio = flowThreat / flowTotal
	}
	if flowN > 0 {
		s.AvgFlowCount = flowSum / float64(flowN)
	}

	return s
}

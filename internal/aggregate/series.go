package aggregate

import (
	"sort"
	"time"

	"github.com/netsentry-io/netsentry/internal/models"
)

// seriesBuckets caps how many buckets a chart series carries.
const seriesBuckets = 30

// KnownProtocols are the transport-protocol codes detectors report.
var KnownProtocols = []int{1, 6, 17} // ICMP, TCP, UDP

// Bucket is one minute of chart data.
type Bucket struct {
	Time     time.Time `json:"time"`
	Requests int       `json:"requests"`
	Threats  int       `json:"threats"`
}

// coversAllProtocols reports whether a filter selects every known
// protocol, in which case it must behave as no filter at all rather
// than excluding unrecognized codes.
func coversAllProtocols(filter []int) bool {
	if len(filter) == 0 {
		return true
	}
	seen := make(map[int]bool, len(filter))
	for _, p := range filter {
		seen[p] = true
	}
	for _, p := range KnownProtocols {
		if !seen[p] {
			return false
		}
	}
	return true
}

// BuildSeries buckets incidents to the minute, counting rows as
// requests and non-benign, non-normal labels as threats. Buckets come
// back ascending by start time, truncated to the most recent ones.
func BuildSeries(incidents []*models.Incident, protocolFilter []int) []Bucket {
	applyFilter := !coversAllProtocols(protocolFilter)
	allowed := make(map[int]bool, len(protocolFilter))
	for _, p := range protocolFilter {
		allowed[p] = true
	}

	counts := make(map[time.Time]*Bucket)
	for _, inc := range incidents {
		if applyFilter && !allowed[inc.Flow.Protocol] {
			continue
		}

		start := inc.Timestamp.Truncate(time.Minute)
		b, ok := counts[start]
		if !ok {
			b = &Bucket{Time: start}
			counts[start] = b
		}
		b.Requests++
		if models.IsThreatLabel(inc.Label) {
			b.Threats++
		}
	}

	out := make([]Bucket, 0, len(counts))
	for _, b := range counts {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})

	if len(out) > seriesBuckets {
		out = out[len(out)-seriesBuckets:]
	}
	return out
}

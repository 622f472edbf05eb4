package health

import (
	"context"
	"time"

	"github.com/tmemler/roomsense/internal/infrastructure/logging"
)

// LatestSource reports the most recent stored reading per sensor.
// Implemented by measurement.StoreRepository.
type LatestSource interface {
	LatestTime(ctx context.Context, sensorID string) (time.Time, bool, error)
}

// Report summarises one staleness probe.
type Report struct {
	// Recent is the number of sensors with a reading inside the
	// threshold window.
	Recent int

	// Stale is the number of sensors whose latest reading is older
	// than the threshold.
	Stale int

	// Missing is the number of sensors with no stored reading at all.
	Missing int

	// Healthy is true when at least one sensor reported recently, or
	// when no sensors are configured.
	Healthy bool
}

// Probe checks whether the ingestion path is still producing data.
//
// The check is deliberately permissive: a single sensor with a recent
// reading proves the fetch-insert path works end to end, so individual
// dead sensors do not fail the probe. Flagging per-sensor outages is a
// monitoring concern, not a liveness one.
type Probe struct {
	source    LatestSource
	log       *logging.Logger
	threshold time.Duration

	// now is replaceable for tests.
	now func() time.Time
}

// NewProbe creates a staleness probe with the given freshness window.
func NewProbe(source LatestSource, threshold time.Duration, log *logging.Logger) *Probe {
	return &Probe{
		source:    source,
		log:       log,
		threshold: threshold,
		now:       time.Now,
	}
}

// Run checks every configured sensor against the freshness window.
//
// An empty sensor set yields a vacuously healthy report without
// touching the store. Readings are compared in UTC; a stored timestamp
// without zone information is taken as UTC.
//
// Parameters:
//   - ctx: Context for cancellation
//   - sensorIDs: Device ids to check
//
// Returns:
//   - Report: Per-category counts and the overall verdict
//   - error: Store access failure, nil otherwise
func (p *Probe) Run(ctx context.Context, sensorIDs []string) (Report, error) {
	if len(sensorIDs) == 0 {
		p.log.Info("no sensors configured, nothing can be stale")
		return Report{Healthy: true}, nil
	}

	var report Report
	cutoff := p.now().UTC().Add(-p.threshold)

	for _, id := range sensorIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		latest, found, err := p.source.LatestTime(ctx, id)
		if err != nil {
			return report, err
		}
		if !found {
			report.Missing++
			p.log.Warn("sensor has no stored readings", "sensor_id", id)
			continue
		}

		// age <= threshold counts as recent, so a reading exactly at
		// the cutoff still passes.
		if !latest.UTC().Before(cutoff) {
			report.Recent++
		} else {
			report.Stale++
			p.log.Warn("sensor data is stale",
				"sensor_id", id,
				"latest", latest.UTC().Format(time.RFC3339),
				"age", p.now().UTC().Sub(latest.UTC()).Round(time.Second),
			)
		}
	}

	report.Healthy = report.Recent > 0
	return report, nil
}

package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmemler/roomsense/internal/infrastructure/logging"
	"github.com/tmemler/roomsense/internal/infrastructure/metrics"
	"github.com/tmemler/roomsense/internal/measurement"
	"github.com/tmemler/roomsense/internal/mobilealerts"
)

// Source fetches the latest readings for a set of devices.
// Implemented by mobilealerts.Client.
type Source interface {
	LastMeasurements(ctx context.Context, deviceIDs []string) (*mobilealerts.Response, error)
}

// Publisher broadcasts stored measurements to interested consumers.
// Implemented by the optional MQTT publisher.
type Publisher interface {
	PublishMeasurement(m measurement.Measurement) error
}

// CycleResult aggregates one poll cycle for observability.
type CycleResult struct {
	// Received is the number of device entries in the API response.
	Received int

	// Inserted is the number of rows actually written.
	Inserted int

	// Deduplicated is the number of readings already present.
	Deduplicated int

	// Skipped is the number of device entries dropped for data-quality
	// reasons.
	Skipped int
}

// Skip reasons for individual device entries.
var (
	errMissingDeviceID    = errors.New("device entry has no deviceid")
	errMissingMeasurement = errors.New("device entry has no measurement")
	errMissingTimestamp   = errors.New("measurement has no timestamp")
	errNoTemperature      = errors.New("measurement has no temperature channel")
)

// Pipeline fetches the full sensor set in one request per cycle and
// persists each valid reading idempotently.
//
// Failure containment is layered: a fetch failure aborts the whole
// cycle (quietly — the next scheduled cycle retries), while a bad or
// unpersistable device entry is skipped without affecting its siblings.
type Pipeline struct {
	source Source
	repo   measurement.Repository
	log    *logging.Logger

	// Optional collaborators; nil disables them.
	publisher Publisher
	stats     *metrics.Ingest
}

// NewPipeline creates a fetch-insert pipeline.
func NewPipeline(source Source, repo measurement.Repository, log *logging.Logger) *Pipeline {
	return &Pipeline{
		source: source,
		repo:   repo,
		log:    log,
	}
}

// SetPublisher enables live publication of newly stored measurements.
func (p *Pipeline) SetPublisher(pub Publisher) {
	p.publisher = pub
}

// SetMetrics enables counter updates on each cycle.
func (p *Pipeline) SetMetrics(stats *metrics.Ingest) {
	p.stats = stats
}

// RunCycle executes one fetch-insert cycle for the given sensors.
//
// An empty sensor set is a no-op. A fetch failure (network error,
// non-200, success=false) aborts the cycle with zero counts and a nil
// error: a failed fetch simply waits for the next scheduled cycle. The
// returned error is reserved for context cancellation.
//
// Parameters:
//   - ctx: Context for cancellation
//   - sensorIDs: Ordered device ids to poll
//
// Returns:
//   - CycleResult: Aggregate counts for logging
//   - error: ctx.Err() when cancelled, nil otherwise
func (p *Pipeline) RunCycle(ctx context.Context, sensorIDs []string) (CycleResult, error) {
	var result CycleResult

	if p.stats != nil {
		p.stats.Cycles.Inc()
	}

	if len(sensorIDs) == 0 {
		p.log.Info("no sensors configured, skipping cycle")
		return result, nil
	}

	resp, err := p.source.LastMeasurements(ctx, sensorIDs)
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		p.log.Warn("measurement fetch failed, waiting for next cycle", "error", err)
		if p.stats != nil {
			p.stats.CycleFailures.Inc()
		}
		return result, nil
	}

	for _, dev := range resp.Devices {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		result.Received++
		inserted, err := p.processDevice(ctx, dev)
		switch {
		case err != nil:
			// One bad device never aborts its siblings.
			result.Skipped++
			p.log.Warn("skipping device", "device_id", dev.DeviceID, "error", err)
			if p.stats != nil {
				p.stats.Skipped.Inc()
			}
		case inserted:
			result.Inserted++
			if p.stats != nil {
				p.stats.Inserted.Inc()
			}
		default:
			result.Deduplicated++
			p.log.Debug("reading already stored", "device_id", dev.DeviceID)
			if p.stats != nil {
				p.stats.Deduplicated.Inc()
			}
		}
	}

	if p.stats != nil {
		p.stats.Received.Add(float64(result.Received))
	}

	return result, nil
}

// processDevice validates and persists one device entry.
//
// The returned bool is true when a new row was written, false when the
// reading was already stored. Any error means the entry was skipped.
func (p *Pipeline) processDevice(ctx context.Context, dev mobilealerts.Device) (bool, error) {
	if dev.DeviceID == "" {
		return false, errMissingDeviceID
	}
	raw := dev.Measurement
	if raw == nil {
		return false, errMissingMeasurement
	}
	if raw.TS == nil {
		return false, errMissingTimestamp
	}
	if raw.T1 == nil && raw.T2 == nil {
		return false, errNoTemperature
	}
	if raw.T1 == nil {
		// The store requires the primary channel; sensors report t2
		// only alongside t1, so a t2-only entry is malformed.
		return false, errNoTemperature
	}

	m := measurement.Measurement{
		Time:     time.Unix(*raw.TS, 0).UTC(),
		SensorID: dev.DeviceID,
		T1:       *raw.T1,
		T2:       raw.T2,
	}

	inserted, err := p.repo.Insert(ctx, m)
	if err != nil {
		return false, fmt.Errorf("storing reading: %w", err)
	}

	if inserted && p.publisher != nil {
		if err := p.publisher.PublishMeasurement(m); err != nil {
			// Publication is best effort; the reading is already safe
			// in the store.
			p.log.Warn("publishing measurement failed", "device_id", m.SensorID, "error", err)
		}
	}

	return inserted, nil
}

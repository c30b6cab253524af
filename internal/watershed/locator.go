// Package watershed discovers stations upstream and downstream of a basin
// code by combining the pure basin-code algebra with the hidro-referenced
// station layer.
package watershed

import (
	"context"
	"fmt"

	"github.com/hidroplan/rhnr-scoring/internal/basin"
	"github.com/hidroplan/rhnr-scoring/internal/domain"
)

// Locator runs watershed queries against a topology source. One instance per
// process; the source holds the long-lived database connection.
type Locator struct {
	topology domain.TopologySource
}

// NewLocator creates a Locator over the given topology source.
func NewLocator(topology domain.TopologySource) *Locator {
	return &Locator{topology: topology}
}

// Upstream returns the hidro-referenced stations upstream of the basin code:
// records with a code at or above it whose main course extends the code's own
// main course (equals it when sameRiverOnly is set). Records without a known
// drainage area are discarded.
func (l *Locator) Upstream(ctx context.Context, cobacia string, sameRiverOnly bool) ([]domain.BasinCodeRecord, error) {
	course, err := basin.MainCoursePrefix(cobacia)
	if err != nil {
		return nil, fmt.Errorf("upstream of %s: %w", cobacia, err)
	}
	records, err := l.topology.StationsAtOrAboveCode(ctx, cobacia, course, sameRiverOnly)
	if err != nil {
		return nil, fmt.Errorf("upstream of %s: %w", cobacia, err)
	}
	return withKnownArea(records), nil
}

// Downstream returns the hidro-referenced stations downstream of the basin
// code: records with a smaller code sitting on one of the code's downstream
// trunk courses (only its own main course when sameRiverOnly is set).
// Records without a known drainage area are discarded.
func (l *Locator) Downstream(ctx context.Context, cobacia string, sameRiverOnly bool) ([]domain.BasinCodeRecord, error) {
	var courses []string
	if sameRiverOnly {
		course, err := basin.MainCoursePrefix(cobacia)
		if err != nil {
			return nil, fmt.Errorf("downstream of %s: %w", cobacia, err)
		}
		courses = []string{course}
	} else {
		var err error
		courses, err = basin.DownstreamCoursePrefixes(cobacia)
		if err != nil {
			return nil, fmt.Errorf("downstream of %s: %w", cobacia, err)
		}
	}
	records, err := l.topology.StationsBelowCode(ctx, cobacia, courses)
	if err != nil {
		return nil, fmt.Errorf("downstream of %s: %w", cobacia, err)
	}
	return withKnownArea(records), nil
}

// OnRiver returns every station sharing the basin code's river: the upstream
// and downstream stations restricted to the same course, de-duplicated by
// station code.
func (l *Locator) OnRiver(ctx context.Context, cobacia string) ([]domain.BasinCodeRecord, error) {
	up, err := l.Upstream(ctx, cobacia, true)
	if err != nil {
		return nil, err
	}
	down, err := l.Downstream(ctx, cobacia, true)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(up)+len(down))
	out := make([]domain.BasinCodeRecord, 0, len(up)+len(down))
	for _, rec := range append(up, down...) {
		if _, dup := seen[rec.StationCode]; dup {
			continue
		}
		seen[rec.StationCode] = struct{}{}
		out = append(out, rec)
	}
	return out, nil
}

// OperationalUpstream returns the upstream stations on ref's operational
// reach, including telemetry duplicates discovered through the proxy-operator
// branch. The two-branch union lives in the topology source; area filtering
// happens here like the other queries.
func (l *Locator) OperationalUpstream(ctx context.Context, ref domain.BasinCodeRecord) ([]domain.BasinCodeRecord, error) {
	records, err := l.topology.OperationalReachStations(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("operational upstream of station %d: %w", ref.StationCode, err)
	}
	return withKnownArea(records), nil
}

func withKnownArea(records []domain.BasinCodeRecord) []domain.BasinCodeRecord {
	out := records[:0]
	for _, rec := range records {
		if rec.DrainageKm2 != nil {
			out = append(out, rec)
		}
	}
	return out
}

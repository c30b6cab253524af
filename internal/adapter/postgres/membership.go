package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"github.com/twpayne/go-geom/xy"
)

type membershipLayer string

const (
	layerSemiarid        membershipLayer = "geoft.semiarido"
	layerIrrigationPoles membershipLayer = "geoft.polos_nacionais_irrigacao"
)

// membershipIndex answers point-in-region queries against polygon layers.
// Each layer is fetched once as EWKB and kept decoded; membership tests then
// run in process, which keeps per-station lookups off the database.
type membershipIndex struct {
	reader *Reader

	mu     sync.Mutex
	layers map[membershipLayer][]*geom.Polygon
}

func newMembershipIndex(r *Reader) *membershipIndex {
	return &membershipIndex{reader: r, layers: make(map[membershipLayer][]*geom.Polygon)}
}

func (m *membershipIndex) contains(ctx context.Context, layer membershipLayer, lat, lon float64) (bool, error) {
	polygons, err := m.load(ctx, layer)
	if err != nil {
		return false, err
	}
	point := geom.Coord{lon, lat}
	for _, polygon := range polygons {
		if polygonContains(polygon, point) {
			return true, nil
		}
	}
	return false, nil
}

func (m *membershipIndex) load(ctx context.Context, layer membershipLayer) ([]*geom.Polygon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if polygons, ok := m.layers[layer]; ok {
		return polygons, nil
	}

	query := fmt.Sprintf(`SELECT ST_AsEWKB(geom) FROM %s`, layer)
	rows, err := m.reader.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load layer %s: %w", layer, err)
	}
	defer rows.Close()

	var polygons []*geom.Polygon
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("load layer %s: %w", layer, err)
		}
		g, err := ewkb.Unmarshal(raw)
		if err != nil {
			return nil, fmt.Errorf("decode layer %s: %w", layer, err)
		}
		polygons = append(polygons, flattenPolygons(g)...)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load layer %s: %w", layer, err)
	}

	m.layers[layer] = polygons
	return polygons, nil
}

func flattenPolygons(g geom.T) []*geom.Polygon {
	switch g := g.(type) {
	case *geom.Polygon:
		return []*geom.Polygon{g}
	case *geom.MultiPolygon:
		polygons := make([]*geom.Polygon, 0, g.NumPolygons())
		for i := 0; i < g.NumPolygons(); i++ {
			polygons = append(polygons, g.Polygon(i))
		}
		return polygons
	default:
		return nil
	}
}

// polygonContains tests the point against the outer ring and excludes points
// falling inside any interior ring (a hole).
func polygonContains(polygon *geom.Polygon, point geom.Coord) bool {
	if polygon.NumLinearRings() == 0 {
		return false
	}
	if !xy.IsPointInRing(polygon.Layout(), point, polygon.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < polygon.NumLinearRings(); i++ {
		if xy.IsPointInRing(polygon.Layout(), point, polygon.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

// Package postgres reads the GIS-backed auxiliary database: the
// hidro-referenced station layer, geospatial membership layers, the
// water-security index, and the RHNR scenario tables.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hidroplan/rhnr-scoring/internal/config"
	"github.com/hidroplan/rhnr-scoring/internal/domain"
)

// Authority and operator entity codes used by the topology filters.
const (
	authorityANA = 1  // national water agency, the primary operating authority
	operatorSGB  = 82 // geological survey, proxy operator of telemetry duplicates
)

// duplicateSensorTag marks logical station records that duplicate a physical
// gauge for the telemetry/observer program.
const duplicateSensorTag = "%HIDROOBSERVA%"

// Power-sector entity codes whose stations compose the power-grid proximity
// candidate set.
var powerSectorEntities = []int{6, 7, 8} // CESP, CEEE, LIGHT

// Reader is the long-lived auxiliary-database client. One instance per
// process; every query runs in its own scoped session.
type Reader struct {
	db     *sqlx.DB
	logger *slog.Logger

	membership *membershipIndex
}

// NewReader opens the auxiliary database connection.
func NewReader(cfg config.Database, logger *slog.Logger) (*Reader, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect auxiliary database: %w", err)
	}
	r := &Reader{db: db, logger: logger}
	r.membership = newMembershipIndex(r)
	return r, nil
}

// Close releases the database connection.
func (r *Reader) Close() error { return r.db.Close() }

type basinCodeRow struct {
	Codigo       int             `db:"codigo"`
	Cobacia      string          `db:"cobacia"`
	Cocursodag   string          `db:"cocursodag"`
	AreaDrenagem sql.NullFloat64 `db:"area_drenagem"`
	NomeRio      sql.NullString  `db:"nome_rio"`
}

func (row basinCodeRow) toRecord() domain.BasinCodeRecord {
	rec := domain.BasinCodeRecord{
		StationCode: row.Codigo,
		Cobacia:     row.Cobacia,
		Cocursodag:  row.Cocursodag,
		RiverName:   row.NomeRio.String,
	}
	if row.AreaDrenagem.Valid {
		area := row.AreaDrenagem.Float64
		rec.DrainageKm2 = &area
	}
	return rec
}

// StationBasinCode resolves a station to its hidro-referenced record.
func (r *Reader) StationBasinCode(ctx context.Context, stationCode int) (domain.BasinCodeRecord, error) {
	const query = `
		SELECT codigo, cobacia, cocursodag, area_drenagem, nome_rio
		FROM hidrorref_bho2013.estacoes_hidrorreferenciadas
		WHERE codigo = $1`

	var row basinCodeRow
	err := r.db.GetContext(ctx, &row, query, stationCode)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BasinCodeRecord{}, fmt.Errorf("station %d: %w", stationCode, domain.ErrStationNotHidroreferenced)
	}
	if err != nil {
		return domain.BasinCodeRecord{}, fmt.Errorf("station basin code %d: %w", stationCode, err)
	}
	return row.toRecord(), nil
}

// StationsAtOrAboveCode returns hidro-referenced records with a basin code at
// or above the given one whose main course extends (or equals) coursePrefix.
func (r *Reader) StationsAtOrAboveCode(ctx context.Context, cobacia, coursePrefix string, exactCourse bool) ([]domain.BasinCodeRecord, error) {
	query := `
		SELECT codigo, cobacia, cocursodag, area_drenagem, nome_rio
		FROM hidrorref_bho2013.estacoes_hidrorreferenciadas
		WHERE cobacia >= $1 AND cocursodag LIKE $2 || '%'`
	if exactCourse {
		query = `
		SELECT codigo, cobacia, cocursodag, area_drenagem, nome_rio
		FROM hidrorref_bho2013.estacoes_hidrorreferenciadas
		WHERE cobacia >= $1 AND cocursodag = $2`
	}

	var rows []basinCodeRow
	if err := r.db.SelectContext(ctx, &rows, query, cobacia, coursePrefix); err != nil {
		return nil, fmt.Errorf("stations above %s: %w", cobacia, err)
	}
	return toRecords(rows), nil
}

// StationsBelowCode returns hidro-referenced records below the given basin
// code sitting on one of the listed main courses.
func (r *Reader) StationsBelowCode(ctx context.Context, cobacia string, courses []string) ([]domain.BasinCodeRecord, error) {
	if len(courses) == 0 {
		return nil, nil
	}
	const query = `
		SELECT codigo, cobacia, cocursodag, area_drenagem, nome_rio
		FROM hidrorref_bho2013.estacoes_hidrorreferenciadas
		WHERE cobacia < $1 AND cocursodag = ANY($2)`

	var rows []basinCodeRow
	if err := r.db.SelectContext(ctx, &rows, query, cobacia, pq.Array(courses)); err != nil {
		return nil, fmt.Errorf("stations below %s: %w", cobacia, err)
	}
	return toRecords(rows), nil
}

// OperationalReachStations returns the upstream stations on ref's operational
// reach as the union of two queries: active primary-authority stations whose
// description does not carry the duplicate-sensor tag, and tagged duplicates
// operated by the proxy operator on the primary authority's behalf.
func (r *Reader) OperationalReachStations(ctx context.Context, ref domain.BasinCodeRecord) ([]domain.BasinCodeRecord, error) {
	const primaries = `
		SELECT h.codigo, h.cobacia, h.cocursodag, h.area_drenagem, h.nome_rio
		FROM hidrorref_bho2013.estacoes_hidrorreferenciadas h
		JOIN estacoes.estacao_flu e ON e.codigo = h.codigo
		JOIN estacoes.responsavel resp ON resp.codigo_estacao = e.codigo
		WHERE e.operando = 1
		  AND resp.responsavel_codigo = $1
		  AND h.cobacia >= $2
		  AND h.codigo <> $3
		  AND h.area_drenagem <= $4
		  AND h.cocursodag LIKE $5 || '%'
		  AND (e.descricao NOT LIKE $6 OR e.descricao IS NULL)`

	const duplicates = `
		SELECT h.codigo, h.cobacia, h.cocursodag, h.area_drenagem, h.nome_rio
		FROM hidrorref_bho2013.estacoes_hidrorreferenciadas h
		JOIN estacoes.estacao_flu e ON e.codigo = h.codigo
		JOIN estacoes.responsavel resp ON resp.codigo_estacao = e.codigo
		JOIN estacoes.operadora op ON op.codigo_estacao = e.codigo
		WHERE e.operando = 1
		  AND e.descricao LIKE $6
		  AND resp.responsavel_codigo = $1
		  AND op.operadora_codigo = $7
		  AND h.cobacia >= $2
		  AND h.codigo <> $3
		  AND h.area_drenagem <= $4
		  AND h.cocursodag LIKE $5 || '%'`

	if ref.DrainageKm2 == nil {
		return nil, fmt.Errorf("station %d: %w", ref.StationCode, domain.ErrMissingDrainageArea)
	}

	var primary []basinCodeRow
	err := r.db.SelectContext(ctx, &primary, primaries,
		authorityANA, ref.Cobacia, ref.StationCode, *ref.DrainageKm2, ref.Cocursodag, duplicateSensorTag)
	if err != nil {
		return nil, fmt.Errorf("operational reach of station %d: %w", ref.StationCode, err)
	}

	var proxied []basinCodeRow
	err = r.db.SelectContext(ctx, &proxied, duplicates,
		authorityANA, ref.Cobacia, ref.StationCode, *ref.DrainageKm2, ref.Cocursodag, duplicateSensorTag, operatorSGB)
	if err != nil {
		return nil, fmt.Errorf("operational reach duplicates of station %d: %w", ref.StationCode, err)
	}

	return toRecords(append(primary, proxied...)), nil
}

// NavigableReach reports whether the reach is part of a mapped waterway.
func (r *Reader) NavigableReach(ctx context.Context, cobacia string) (bool, error) {
	return r.existsByCobacia(ctx, "hidrorref_bho2013.trechos_navegaveis", cobacia)
}

// FloodVulnerableReach reports whether the reach is mapped as
// flood-vulnerable.
func (r *Reader) FloodVulnerableReach(ctx context.Context, cobacia string) (bool, error) {
	return r.existsByCobacia(ctx, "geoft.hidrorref_inundacoes", cobacia)
}

func (r *Reader) existsByCobacia(ctx context.Context, table, cobacia string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE cobacia = $1)`, table)
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, cobacia); err != nil {
		return false, fmt.Errorf("lookup %s for %s: %w", table, cobacia, err)
	}
	return exists, nil
}

// InSemiarid reports whether the point falls inside the semiarid region.
// The polygon layer is fetched once and tested in process.
func (r *Reader) InSemiarid(ctx context.Context, lat, lon float64) (bool, error) {
	return r.membership.contains(ctx, layerSemiarid, lat, lon)
}

// InIrrigationPole reports whether the point falls inside a national
// irrigation pole.
func (r *Reader) InIrrigationPole(ctx context.Context, lat, lon float64) (bool, error) {
	return r.membership.contains(ctx, layerIrrigationPoles, lat, lon)
}

// WaterSecurityUpstream returns the ISH sub-basin rows upstream of the basin
// code along the given main course.
func (r *Reader) WaterSecurityUpstream(ctx context.Context, cobacia, coursePrefix string) ([]domain.WaterSecurityRecord, error) {
	const query = `
		SELECT ire_cobacia, ire_area_km2, ire_cs_ishfinal
		FROM geoft.indice_seguranca_hidrica
		WHERE ire_cobacia >= $1 AND ire_cobacia LIKE $2 || '%'`

	rows, err := r.db.QueryxContext(ctx, query, cobacia, coursePrefix)
	if err != nil {
		return nil, fmt.Errorf("water security upstream of %s: %w", cobacia, err)
	}
	defer rows.Close()

	var records []domain.WaterSecurityRecord
	for rows.Next() {
		var rec domain.WaterSecurityRecord
		if err := rows.Scan(&rec.Cobacia, &rec.AreaKm2, &rec.Index); err != nil {
			return nil, fmt.Errorf("water security upstream of %s: %w", cobacia, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func toRecords(rows []basinCodeRow) []domain.BasinCodeRecord {
	records := make([]domain.BasinCodeRecord, len(rows))
	for i, row := range rows {
		records[i] = row.toRecord()
	}
	return records
}

// Package hidro reads the hydrological warehouse: the station inventory,
// daily discharge series, field measurement summaries, and rating curves.
package hidro

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/hidroplan/rhnr-scoring/internal/config"
	"github.com/hidroplan/rhnr-scoring/internal/domain"
)

// Authority and operator entity codes used by the inventory filters.
const (
	authorityANA = 1
	operatorSGB  = 82
)

// duplicateSensorTag marks logical station records duplicating a physical
// gauge for the telemetry/observer program.
const duplicateSensorTag = "%HIDROOBSERVA%"

// Reader is the long-lived warehouse client. Every query runs in its own
// scoped session.
type Reader struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewReader opens the warehouse connection.
func NewReader(cfg config.Database, logger *slog.Logger) (*Reader, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect warehouse: %w", err)
	}
	return &Reader{db: db, logger: logger}, nil
}

// Close releases the database connection.
func (r *Reader) Close() error { return r.db.Close() }

type stationRow struct {
	Codigo       int             `db:"codigo"`
	Nome         string          `db:"nome"`
	Latitude     float64         `db:"latitude"`
	Longitude    float64         `db:"longitude"`
	Altitude     sql.NullFloat64 `db:"altitude"`
	AreaDrenagem sql.NullFloat64 `db:"area_drenagem"`
	Bacia        sql.NullString  `db:"bacia"`
	SubBacia     sql.NullString  `db:"sub_bacia"`
	Rio          sql.NullString  `db:"rio"`
	Estado       sql.NullString  `db:"estado"`
	Municipio    sql.NullString  `db:"municipio"`
	Responsavel  sql.NullString  `db:"responsavel"`
	Tipo         int             `db:"tipo"`
	Telemetrica  int             `db:"telemetrica"`
	Operando     int             `db:"operando"`
}

func (row stationRow) toStation() domain.Station {
	st := domain.Station{
		Code:         row.Codigo,
		Name:         row.Nome,
		Latitude:     row.Latitude,
		Longitude:    row.Longitude,
		Basin:        row.Bacia.String,
		SubBasin:     row.SubBacia.String,
		River:        row.Rio.String,
		State:        row.Estado.String,
		Municipality: row.Municipio.String,
		Authority:    row.Responsavel.String,
		Type:         domain.StationType(row.Tipo),
		Telemetric:   row.Telemetrica != 0,
		Operating:    row.Operando != 0,
	}
	if row.Altitude.Valid {
		v := row.Altitude.Float64
		st.Altitude = &v
	}
	if row.AreaDrenagem.Valid {
		v := row.AreaDrenagem.Float64
		st.DrainageKm2 = &v
	}
	return st
}

// ListStations returns the active fluviometric inventory: primary-authority
// stations without the duplicate-sensor tag, unioned with tagged duplicates
// operated by the secondary authority, distinct by code.
func (r *Reader) ListStations(ctx context.Context) ([]domain.Station, error) {
	const query = `
		SELECT DISTINCT e.codigo, e.nome, e.latitude, e.longitude, e.altitude,
		       e.area_drenagem, b.nome AS bacia, sb.nome AS sub_bacia,
		       rio.nome AS rio, uf.sigla AS estado, mun.nome AS municipio,
		       resp_ent.sigla AS responsavel, e.tipo_estacao AS tipo,
		       e.telemetrica, e.operando
		FROM estacoes.estacao_flu e
		JOIN estacoes.responsavel resp ON resp.codigo_estacao = e.codigo
		JOIN entidades.entidade resp_ent ON resp_ent.codigo = resp.responsavel_codigo
		LEFT JOIN localidades.bacia b ON b.codigo = e.bacia_codigo
		LEFT JOIN localidades.sub_bacia sb ON sb.codigo = e.sub_bacia_codigo
		LEFT JOIN localidades.rio rio ON rio.codigo = e.rio_codigo
		LEFT JOIN localidades.estado uf ON uf.codigo = e.estado_codigo
		LEFT JOIN localidades.municipio mun ON mun.codigo = e.municipio_codigo
		LEFT JOIN estacoes.operadora op ON op.codigo_estacao = e.codigo
		WHERE e.operando = 1
		  AND ((resp.responsavel_codigo = $1
		        AND (e.descricao NOT LIKE $2 OR e.descricao IS NULL))
		    OR (resp.responsavel_codigo = $1
		        AND e.descricao LIKE $2
		        AND op.operadora_codigo = $3))
		ORDER BY e.codigo`

	var rows []stationRow
	if err := r.db.SelectContext(ctx, &rows, query, authorityANA, duplicateSensorTag, operatorSGB); err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	stations := make([]domain.Station, len(rows))
	for i, row := range rows {
		stations[i] = row.toStation()
	}
	return stations, nil
}

// DischargeSeries returns the station's daily discharge series. The
// warehouse stores one row per month with a column per day; rows are
// unpivoted here, skipping day columns beyond the month's length.
func (r *Reader) DischargeSeries(ctx context.Context, stationCode int) ([]domain.SeriesPoint, error) {
	query := fmt.Sprintf(`
		SELECT data, nivel_consistencia, %s
		FROM series.vazoes
		WHERE codigo_estacao = $1
		ORDER BY data, nivel_consistencia`, dayColumnList())

	rows, err := r.db.QueryxContext(ctx, query, stationCode)
	if err != nil {
		return nil, fmt.Errorf("discharge series of %d: %w", stationCode, err)
	}
	defer rows.Close()

	var points []domain.SeriesPoint
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("discharge series of %d: %w", stationCode, err)
		}
		monthPoints, err := unpivotMonth(values)
		if err != nil {
			return nil, fmt.Errorf("discharge series of %d: %w", stationCode, err)
		}
		points = append(points, monthPoints...)
	}
	return points, rows.Err()
}

func dayColumnList() string {
	columns := make([]string, 31)
	for day := 1; day <= 31; day++ {
		columns[day-1] = fmt.Sprintf("vazao_%02d", day)
	}
	return strings.Join(columns, ", ")
}

// unpivotMonth expands one monthly row (month start, consistency, 31 day
// values) into dated points.
func unpivotMonth(values []any) ([]domain.SeriesPoint, error) {
	if len(values) != 33 {
		return nil, fmt.Errorf("monthly row has %d columns, want 33", len(values))
	}
	monthStart, ok := values[0].(time.Time)
	if !ok {
		return nil, fmt.Errorf("monthly row date has type %T", values[0])
	}
	consistency, err := asInt(values[1])
	if err != nil {
		return nil, fmt.Errorf("monthly row consistency: %w", err)
	}

	days := daysInMonth(monthStart)
	points := make([]domain.SeriesPoint, 0, days)
	for day := 1; day <= days; day++ {
		point := domain.SeriesPoint{
			Date:        monthStart.AddDate(0, 0, day-1),
			Consistency: consistency,
		}
		if raw := values[1+day]; raw != nil {
			v, err := asFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("monthly row day %d: %w", day, err)
			}
			point.Value = &v
		}
		points = append(points, point)
	}
	return points, nil
}

func daysInMonth(monthStart time.Time) int {
	return monthStart.AddDate(0, 1, -monthStart.Day()).Day()
}

func asInt(v any) (int, error) {
	switch v := v.(type) {
	case int64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func asFloat(v any) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case []byte:
		var f float64
		if _, err := fmt.Sscanf(string(v), "%g", &f); err != nil {
			return 0, fmt.Errorf("parse numeric %q: %w", v, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

type summaryRow struct {
	CodigoEstacao      int             `db:"codigo_estacao"`
	NivelConsistencia  int             `db:"nivel_consistencia"`
	Data               time.Time       `db:"data"`
	Cota               float64         `db:"cota"`
	Vazao              sql.NullFloat64 `db:"vazao"`
	AreaMolhada        sql.NullFloat64 `db:"area_molhada"`
	Largura            sql.NullFloat64 `db:"largura"`
	VelocidadeMedia    sql.NullFloat64 `db:"velocidade_media"`
	ProfundidadeMedia  sql.NullFloat64 `db:"profundidade_media"`
}

// DischargeSummaries returns the station's consisted field measurements.
func (r *Reader) DischargeSummaries(ctx context.Context, stationCode int) ([]domain.DischargeSummary, error) {
	const query = `
		SELECT codigo_estacao, nivel_consistencia, data, cota, vazao,
		       area_molhada, largura, velocidade_media, profundidade_media
		FROM series.resumo_descarga
		WHERE codigo_estacao = $1 AND nivel_consistencia = $2
		ORDER BY data`

	var rows []summaryRow
	if err := r.db.SelectContext(ctx, &rows, query, stationCode, domain.ConsistencyConsisted); err != nil {
		return nil, fmt.Errorf("discharge summaries of %d: %w", stationCode, err)
	}

	summaries := make([]domain.DischargeSummary, len(rows))
	for i, row := range rows {
		summaries[i] = domain.DischargeSummary{
			StationCode: row.CodigoEstacao,
			Consistency: row.NivelConsistencia,
			Date:        row.Data,
			StageCm:     row.Cota,
			Discharge:   nullable(row.Vazao),
			WetAreaM2:   nullable(row.AreaMolhada),
			WidthM:      nullable(row.Largura),
			MeanVelMS:   nullable(row.VelocidadeMedia),
			DepthM:      nullable(row.ProfundidadeMedia),
		}
	}
	return summaries, nil
}

type curveRow struct {
	CodigoEstacao     int             `db:"codigo_estacao"`
	NivelConsistencia int             `db:"nivel_consistencia"`
	DataInicio        time.Time       `db:"data_inicio"`
	DataFim           time.Time       `db:"data_fim"`
	CotaMinima        float64         `db:"cota_minima"`
	CotaMaxima        float64         `db:"cota_maxima"`
	CoefA             sql.NullFloat64 `db:"coef_a"`
	CoefH0            sql.NullFloat64 `db:"coef_h0"`
	CoefN             sql.NullFloat64 `db:"coef_n"`
}

// RatingCurves returns the station's consisted stage-discharge curves,
// ordered by validity start. Imported, temporary, and removed curves are
// excluded.
func (r *Reader) RatingCurves(ctx context.Context, stationCode int) ([]domain.RatingCurve, error) {
	const query = `
		SELECT codigo_estacao, nivel_consistencia, data_inicio, data_fim,
		       cota_minima, cota_maxima, coef_a, coef_h0, coef_n
		FROM series.curva_descarga
		WHERE codigo_estacao = $1
		  AND nivel_consistencia = $2
		  AND importado = 0 AND temporario = 0 AND removido = 0
		ORDER BY data_inicio`

	var rows []curveRow
	if err := r.db.SelectContext(ctx, &rows, query, stationCode, domain.ConsistencyConsisted); err != nil {
		return nil, fmt.Errorf("rating curves of %d: %w", stationCode, err)
	}

	curves := make([]domain.RatingCurve, len(rows))
	for i, row := range rows {
		curves[i] = domain.RatingCurve{
			StationCode: row.CodigoEstacao,
			Consistency: row.NivelConsistencia,
			ValidFrom:   row.DataInicio,
			ValidTo:     row.DataFim,
			StageMinCm:  row.CotaMinima,
			StageMaxCm:  row.CotaMaxima,
			CoefA:       nullable(row.CoefA),
			CoefH0:      nullable(row.CoefH0),
			CoefN:       nullable(row.CoefN),
		}
	}
	return curves, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// Package store persists run artifacts to a local SQLite file: the
// inventory snapshot, the raw criterion values, and the final scores.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hidroplan/rhnr-scoring/internal/domain"
)

// Store writes run results to a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open creates (or opens) the results database and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open results database: %w", err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ensureSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS inventario (
		codigo       INTEGER PRIMARY KEY,
		nome         TEXT NOT NULL,
		latitude     REAL NOT NULL,
		longitude    REAL NOT NULL,
		area_drenagem REAL,
		bacia        TEXT,
		sub_bacia    TEXT,
		rio          TEXT,
		estado       TEXT,
		municipio    TEXT,
		responsavel  TEXT,
		telemetrica  INTEGER NOT NULL,
		operando     INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS valores_brutos (
		codigo_estacao INTEGER NOT NULL,
		criterio       TEXT NOT NULL,
		valor          TEXT,
		PRIMARY KEY (codigo_estacao, criterio)
	);
	CREATE TABLE IF NOT EXISTS pontuacoes (
		codigo_estacao INTEGER NOT NULL,
		criterio       TEXT NOT NULL,
		pontuacao      REAL NOT NULL,
		PRIMARY KEY (codigo_estacao, criterio)
	);
	CREATE TABLE IF NOT EXISTS totais (
		codigo_estacao INTEGER PRIMARY KEY,
		total          REAL NOT NULL
	);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("ensure results schema: %w", err)
	}
	return nil
}

// SaveInventory replaces the stored inventory snapshot.
func (s *Store) SaveInventory(ctx context.Context, stations []domain.Station) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM inventario`); err != nil {
			return err
		}
		const insert = `
			INSERT INTO inventario (codigo, nome, latitude, longitude,
				area_drenagem, bacia, sub_bacia, rio, estado, municipio,
				responsavel, telemetrica, operando)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, st := range stations {
			var area any
			if st.DrainageKm2 != nil {
				area = *st.DrainageKm2
			}
			_, err := stmt.ExecContext(ctx, st.Code, st.Name, st.Latitude,
				st.Longitude, area, st.Basin, st.SubBasin, st.River,
				st.State, st.Municipality, st.Authority,
				boolToInt(st.Telemetric), boolToInt(st.Operating))
			if err != nil {
				return fmt.Errorf("save station %d: %w", st.Code, err)
			}
		}
		return nil
	})
}

// SaveRawValues replaces the stored raw criterion values. Null values are
// stored as SQL nulls.
func (s *Store) SaveRawValues(ctx context.Context, snapshot []domain.StationRawValues) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM valores_brutos`); err != nil {
			return err
		}
		const insert = `
			INSERT INTO valores_brutos (codigo_estacao, criterio, valor)
			VALUES (?, ?, ?)`
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, row := range snapshot {
			for _, field := range sortedFields(row.Values) {
				value := row.Values[field]
				var rendered any
				if value.Kind != domain.KindNull {
					rendered = value.String()
				}
				if _, err := stmt.ExecContext(ctx, row.StationCode, field, rendered); err != nil {
					return fmt.Errorf("save raw value %s of %d: %w", field, row.StationCode, err)
				}
			}
		}
		return nil
	})
}

// SaveScores replaces the stored per-criterion scores and totals.
func (s *Store) SaveScores(ctx context.Context, records []domain.ScoreRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"pontuacoes", "totais"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return err
			}
		}
		scoreStmt, err := tx.PrepareContext(ctx,
			`INSERT INTO pontuacoes (codigo_estacao, criterio, pontuacao) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer scoreStmt.Close()
		totalStmt, err := tx.PrepareContext(ctx,
			`INSERT INTO totais (codigo_estacao, total) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer totalStmt.Close()

		for _, rec := range records {
			for _, field := range sortedFields(rec.Scores) {
				if _, err := scoreStmt.ExecContext(ctx, rec.StationCode, field, rec.Scores[field]); err != nil {
					return fmt.Errorf("save score %s of %d: %w", field, rec.StationCode, err)
				}
			}
			if _, err := totalStmt.ExecContext(ctx, rec.StationCode, rec.Total); err != nil {
				return fmt.Errorf("save total of %d: %w", rec.StationCode, err)
			}
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit results: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sortedFields[V any](m map[string]V) []string {
	fields := make([]string, 0, len(m))
	for field := range m {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

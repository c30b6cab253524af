package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/hidroplan/rhnr-scoring/internal/domain"
)

// referenceNetworkTag marks active stations already implanted for the
// reference network.
const referenceNetworkTag = "%RHNR%"

// ReferenceNetworkStations returns the station codes composing the reference
// network under the given scenario.
//
// The full scenario unions the initial selection, the stations already
// implanted, and the proposed additions, then removes the proposed
// exclusions. The proposed-only scenario keeps just the proposed additions.
func (r *Reader) ReferenceNetworkStations(ctx context.Context, scenario domain.Scenario) (map[int]struct{}, error) {
	proposed, err := r.proposedStations(ctx, true)
	if err != nil {
		return nil, err
	}
	if scenario == domain.ScenarioTwo {
		return asSet(proposed), nil
	}

	initial, err := r.initialSelectionStations(ctx)
	if err != nil {
		return nil, err
	}
	implanted, err := r.implantedStations(ctx)
	if err != nil {
		return nil, err
	}
	excluded, err := r.proposedStations(ctx, false)
	if err != nil {
		return nil, err
	}

	set := asSet(initial)
	for _, code := range implanted {
		set[code] = struct{}{}
	}
	for _, code := range proposed {
		set[code] = struct{}{}
	}
	for _, code := range excluded {
		delete(set, code)
	}
	return set, nil
}

func (r *Reader) initialSelectionStations(ctx context.Context) ([]int, error) {
	const query = `
		SELECT e.codigo
		FROM estacoes.estacao_flu e
		JOIN estacoes.responsavel resp ON resp.codigo_estacao = e.codigo
		WHERE e.operando = 1
		  AND resp.responsavel_codigo = $1
		  AND e.codigo IN (SELECT codigo FROM objetivos_rhnr.selecao_inicial)`

	return r.selectCodes(ctx, query, authorityANA)
}

func (r *Reader) implantedStations(ctx context.Context) ([]int, error) {
	const query = `
		SELECT e.codigo
		FROM estacoes.estacao_flu e
		JOIN estacoes.responsavel resp ON resp.codigo_estacao = e.codigo
		WHERE e.operando = 1
		  AND resp.responsavel_codigo = $1
		  AND e.descricao LIKE $2`

	return r.selectCodes(ctx, query, authorityANA, referenceNetworkTag)
}

func (r *Reader) proposedStations(ctx context.Context, include bool) ([]int, error) {
	const query = `
		SELECT codigo
		FROM objetivos_rhnr.estacoes_propostas
		WHERE integra_rede = $1`

	return r.selectCodes(ctx, query, include)
}

// PowerGridStations returns active stations operated by power-sector
// entities.
func (r *Reader) PowerGridStations(ctx context.Context) (map[int]struct{}, error) {
	const query = `
		SELECT e.codigo
		FROM estacoes.estacao_flu e
		JOIN estacoes.responsavel resp ON resp.codigo_estacao = e.codigo
		WHERE e.operando = 1
		  AND resp.responsavel_codigo = ANY($1)`

	codes, err := r.selectCodes(ctx, query, pq.Array(powerSectorEntities))
	if err != nil {
		return nil, err
	}
	return asSet(codes), nil
}

func (r *Reader) selectCodes(ctx context.Context, query string, args ...any) ([]int, error) {
	var codes []int
	if err := r.db.SelectContext(ctx, &codes, query, args...); err != nil {
		return nil, fmt.Errorf("select station codes: %w", err)
	}
	return codes, nil
}

func asSet(codes []int) map[int]struct{} {
	set := make(map[int]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

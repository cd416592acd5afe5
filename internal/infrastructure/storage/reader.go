package storage

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"JudgmentScanner/internal/domain"
)

var judgeFilterColumns = map[string]struct{}{
	"circuit_id":    {},
	"judge_type_id": {},
}

const caseColumns = "case_no_id, title, judge_id, COALESCE(verdict, ''), COALESCE(summary, ''), transcript_date"

const judgeColumns = "judge_id, judge_name, gender, appointment_date, judge_type_id, circuit_id"

// ListCases returns every stored case, newest hearing first.
func (r *PostgresRepository) ListCases(ctx context.Context) ([]domain.StoredCase, error) {
	query, args, err := psql.Select(caseColumns).From("court_case").OrderBy("transcript_date DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cases query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}

	cases, err := pgx.CollectRows(rows, scanCase)
	if err != nil {
		return nil, fmt.Errorf("scan cases: %w", err)
	}
	return cases, nil
}

// CaseByNumber returns one case or domain.ErrNotFound.
func (r *PostgresRepository) CaseByNumber(ctx context.Context, caseNo string) (*domain.StoredCase, error) {
	query, args, err := psql.Select(caseColumns).From("court_case").Where(sq.Eq{"case_no_id": caseNo}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build case query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query case %s: %w", caseNo, err)
	}

	c, err := pgx.CollectOneRow(rows, scanCase)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan case %s: %w", caseNo, err)
	}
	return &c, nil
}

// ListJudges returns judges matching every filter. Only circuit_id and
// judge_type_id may be filtered on.
func (r *PostgresRepository) ListJudges(ctx context.Context, filters map[string]int) ([]domain.StoredJudge, error) {
	if err := validateJudgeFilters(filters); err != nil {
		return nil, err
	}

	query, args, err := judgesQuery(filters).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build judges query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query judges: %w", err)
	}

	judges, err := pgx.CollectRows(rows, scanJudge)
	if err != nil {
		return nil, fmt.Errorf("scan judges: %w", err)
	}
	return judges, nil
}

// JudgeByID returns one judge or domain.ErrNotFound.
func (r *PostgresRepository) JudgeByID(ctx context.Context, id int) (*domain.StoredJudge, error) {
	query, args, err := psql.Select(judgeColumns).From("judge").Where(sq.Eq{"judge_id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build judge query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query judge %d: %w", id, err)
	}

	j, err := pgx.CollectOneRow(rows, scanJudge)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan judge %d: %w", id, err)
	}
	return &j, nil
}

// ListCircuits returns the circuit lookup table.
func (r *PostgresRepository) ListCircuits(ctx context.Context) ([]domain.Reference, error) {
	return r.references(ctx, "circuit", "circuit_id", "circuit_name")
}

// ListJudgeTypes returns the judge_type lookup table.
func (r *PostgresRepository) ListJudgeTypes(ctx context.Context) ([]domain.Reference, error) {
	return r.references(ctx, "judge_type", "judge_type_id", "judge_type_name")
}

func (r *PostgresRepository) references(ctx context.Context, table, idCol, nameCol string) ([]domain.Reference, error) {
	query, args, err := psql.Select(idCol, nameCol).From(table).OrderBy(idCol).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", table, err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	refs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Reference, error) {
		var ref domain.Reference
		err := row.Scan(&ref.ID, &ref.Name)
		return ref, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	return refs, nil
}

func validateJudgeFilters(filters map[string]int) error {
	for key := range filters {
		if _, ok := judgeFilterColumns[key]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownFilter, key)
		}
	}
	return nil
}

func judgesQuery(filters map[string]int) sq.SelectBuilder {
	query := psql.Select(judgeColumns).From("judge")
	if len(filters) > 0 {
		eq := sq.Eq{}
		for key, value := range filters {
			eq[key] = value
		}
		query = query.Where(eq)
	}
	return query.OrderBy("judge_id")
}

func scanCase(row pgx.CollectableRow) (domain.StoredCase, error) {
	var c domain.StoredCase
	err := row.Scan(&c.CaseNo, &c.Title, &c.JudgeID, &c.Verdict, &c.Summary, &c.Date)
	return c, err
}

func scanJudge(row pgx.CollectableRow) (domain.StoredJudge, error) {
	var j domain.StoredJudge
	err := row.Scan(&j.ID, &j.Name, &j.Gender, &j.Appointed, &j.JudgeTypeID, &j.CircuitID)
	return j, err
}

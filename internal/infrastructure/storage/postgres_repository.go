package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"JudgmentScanner/internal/domain"
	"JudgmentScanner/internal/ports"
)

//go:embed schema.sql
var schemaSQL string

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// likeEscaper quotes LIKE wildcards with Postgres' default escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostgresRepository persists cases and judges into Postgres.
type PostgresRepository struct {
	pool           *pgxpool.Pool
	defaultJudgeID int
}

var (
	_ ports.CaseRepository  = (*PostgresRepository)(nil)
	_ ports.JudgeRepository = (*PostgresRepository)(nil)
	_ ports.CaseReader      = (*PostgresRepository)(nil)
)

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// NewPostgresRepository wires a pgx pool; unmatched judge names map to defaultJudgeID.
func NewPostgresRepository(pool *pgxpool.Pool, defaultJudgeID int) *PostgresRepository {
	return &PostgresRepository{pool: pool, defaultJudgeID: defaultJudgeID}
}

// Migrate creates the tables if they do not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// StoredTitles returns every case title already persisted.
func (r *PostgresRepository) StoredTitles(ctx context.Context) (map[string]struct{}, error) {
	query, args, err := storedTitlesQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build titles query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query titles: %w", err)
	}

	titles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan titles: %w", err)
	}

	result := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		result[title] = struct{}{}
	}
	return result, nil
}

// ResolveJudgeID matches a normalized judge name case-insensitively against
// stored names and falls back to the default judge id.
func (r *PostgresRepository) ResolveJudgeID(ctx context.Context, name string) (int, error) {
	if name == "" {
		return r.defaultJudgeID, nil
	}

	query, args, err := judgeLookupQuery(name).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build judge lookup: %w", err)
	}

	var id int
	err = r.pool.QueryRow(ctx, query, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.defaultJudgeID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("lookup judge %q: %w", name, err)
	}
	return id, nil
}

// SaveCases inserts rows in one statement; rows whose case number or title
// already exist are skipped. It returns the number of inserted rows.
func (r *PostgresRepository) SaveCases(ctx context.Context, rows []domain.CaseRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query, args, err := insertCasesQuery(rows).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert cases: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// SaveJudges upserts judge types and circuits, then inserts unseen judges.
func (r *PostgresRepository) SaveJudges(ctx context.Context, judges []domain.Judge) (int, error) {
	if len(judges) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	typeIDs := map[string]int{}
	circuitIDs := map[string]int{}
	inserted := 0

	for _, judge := range judges {
		typeID, err := upsertReference(ctx, tx, typeIDs, "judge_type", "judge_type_id", "judge_type_name", judge.Type)
		if err != nil {
			return 0, err
		}
		circuitID, err := upsertReference(ctx, tx, circuitIDs, "circuit", "circuit_id", "circuit_name", judge.Circuit)
		if err != nil {
			return 0, err
		}

		query, args, err := insertJudgeQuery(judge, typeID, circuitID).ToSql()
		if err != nil {
			return 0, fmt.Errorf("build judge insert: %w", err)
		}
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("insert judge %q: %w", judge.Name, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit judges: %w", err)
	}
	return inserted, nil
}

// upsertReference returns the id of name in a lookup table, creating it when needed.
// An empty name maps to NULL.
func upsertReference(ctx context.Context, tx pgx.Tx, cache map[string]int, table, idCol, nameCol, name string) (*int, error) {
	if name == "" {
		return nil, nil
	}
	if id, ok := cache[name]; ok {
		return &id, nil
	}

	query, args, err := psql.Insert(table).
		Columns(nameCol).
		Values(name).
		Suffix(fmt.Sprintf("ON CONFLICT (%[1]s) DO UPDATE SET %[1]s = EXCLUDED.%[1]s RETURNING %[2]s", nameCol, idCol)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s upsert: %w", table, err)
	}

	var id int
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("upsert %s %q: %w", table, name, err)
	}
	cache[name] = id
	return &id, nil
}

func storedTitlesQuery() sq.SelectBuilder {
	return psql.Select("title").From("court_case")
}

func judgeLookupQuery(name string) sq.SelectBuilder {
	return psql.Select("judge_id").
		From("judge").
		Where(sq.ILike{"judge_name": "%" + likeEscaper.Replace(name) + "%"}).
		OrderBy("judge_id").
		Limit(1)
}

func insertCasesQuery(rows []domain.CaseRow) sq.InsertBuilder {
	insert := psql.Insert("court_case").
		Columns("case_no_id", "title", "judge_id", "verdict", "summary", "transcript_date")
	for _, row := range rows {
		insert = insert.Values(row.CaseNo, row.Title, row.JudgeID, nullable(row.Verdict), nullable(row.Summary), row.Date)
	}
	return insert.Suffix("ON CONFLICT DO NOTHING")
}

func insertJudgeQuery(judge domain.Judge, typeID, circuitID *int) sq.InsertBuilder {
	var appointed any
	if !judge.Appointed.IsZero() {
		appointed = judge.Appointed
	}
	return psql.Insert("judge").
		Columns("judge_name", "gender", "appointment_date", "judge_type_id", "circuit_id").
		Values(judge.Name, judge.Gender, appointed, typeID, circuitID).
		Suffix("ON CONFLICT (judge_name) DO NOTHING")
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

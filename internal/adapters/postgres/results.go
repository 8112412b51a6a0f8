package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecoci/ecoci/internal/domain/outcome"
	"github.com/ecoci/ecoci/internal/domain/resultrow"
	"github.com/ecoci/ecoci/pkg/mpostgres"
)

// ResultRepository is the postgres-backed store for result rows and
// SHA rows C2 sits on top of.
type ResultRepository struct {
	conn   *mpostgres.Connection
	tracer trace.Tracer
}

func NewResultRepository(conn *mpostgres.Connection) *ResultRepository {
	return &ResultRepository{conn: conn, tracer: otel.Tracer("adapters.postgres")}
}

// Upsert replaces any prior row for (experiment, toolchain, package)
// — primary key is the triple, writes always replace.
func (r *ResultRepository) Upsert(ctx context.Context, row resultrow.Row) error {
	ctx, span := r.tracer.Start(ctx, "postgres.upsert_result")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return err
	}

	outcomeJSON, err := json.Marshal(row.Outcome)
	if err != nil {
		return err
	}

	sqlStr, args, err := psql.Insert("results").
		Columns("experiment", "toolchain", "package", "outcome", "log", "encoding").
		Values(row.Experiment, row.Toolchain, row.Package, outcomeJSON, row.Log, row.Encoding).
		Suffix(`ON CONFLICT (experiment, toolchain, package) DO UPDATE SET
			outcome = EXCLUDED.outcome, log = EXCLUDED.log, encoding = EXCLUDED.encoding`).
		ToSql()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, sqlStr, args...)

	return err
}

// Get returns the result row for the triple, or ok=false if none
// exists — a pure read.
func (r *ResultRepository) Get(ctx context.Context, exp, tc, pkg string) (resultrow.Row, bool, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.get_result")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return resultrow.Row{}, false, err
	}

	sqlStr, args, err := psql.Select("experiment", "toolchain", "package", "outcome", "log", "encoding").
		From("results").
		Where(sq.Eq{"experiment": exp, "toolchain": tc, "package": pkg}).
		ToSql()
	if err != nil {
		return resultrow.Row{}, false, err
	}

	var (
		row         resultrow.Row
		outcomeJSON []byte
	)

	err = db.QueryRowContext(ctx, sqlStr, args...).
		Scan(&row.Experiment, &row.Toolchain, &row.Package, &outcomeJSON, &row.Log, &row.Encoding)
	if errors.Is(err, sql.ErrNoRows) {
		return resultrow.Row{}, false, nil
	}

	if err != nil {
		return resultrow.Row{}, false, err
	}

	if err := json.Unmarshal(outcomeJSON, &row.Outcome); err != nil {
		return resultrow.Row{}, false, err
	}

	return row, true, nil
}

// ListForExperiment returns every result row for exp, the input to
// the analyzer (C8).
func (r *ResultRepository) ListForExperiment(ctx context.Context, exp string) ([]resultrow.Row, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.list_results")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return nil, err
	}

	sqlStr, args, err := psql.Select("experiment", "toolchain", "package", "outcome", "log", "encoding").
		From("results").
		Where(sq.Eq{"experiment": exp}).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []resultrow.Row

	for rows.Next() {
		var (
			row         resultrow.Row
			outcomeJSON []byte
		)

		if err := rows.Scan(&row.Experiment, &row.Toolchain, &row.Package, &outcomeJSON, &row.Log, &row.Encoding); err != nil {
			return nil, err
		}

		var o outcome.Outcome
		if err := json.Unmarshal(outcomeJSON, &o); err != nil {
			return nil, err
		}

		row.Outcome = o
		out = append(out, row)
	}

	return out, rows.Err()
}

// DeleteOne cascades a single result row's deletion.
func (r *ResultRepository) DeleteOne(ctx context.Context, exp, tc, pkg string) error {
	ctx, span := r.tracer.Start(ctx, "postgres.delete_result")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return err
	}

	sqlStr, args, err := psql.Delete("results").
		Where(sq.Eq{"experiment": exp, "toolchain": tc, "package": pkg}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, sqlStr, args...)

	return err
}

// DeleteAll cascades every result row for exp.
func (r *ResultRepository) DeleteAll(ctx context.Context, exp string) error {
	ctx, span := r.tracer.Start(ctx, "postgres.delete_all_results")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return err
	}

	sqlStr, args, err := psql.Delete("results").Where(sq.Eq{"experiment": exp}).ToSql()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, sqlStr, args...)

	return err
}

// RecordSHA upserts the resolved commit for (experiment, repo).
func (r *ResultRepository) RecordSHA(ctx context.Context, sha resultrow.SHA) error {
	ctx, span := r.tracer.Start(ctx, "postgres.record_sha")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return err
	}

	sqlStr, args, err := psql.Insert("shas").
		Columns("experiment", "repo", "commit").
		Values(sha.Experiment, sha.Repo, sha.Commit).
		Suffix(`ON CONFLICT (experiment, repo) DO UPDATE SET commit = EXCLUDED.commit`).
		ToSql()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, sqlStr, args...)

	return err
}

// ListSHAs returns every SHA row recorded for exp, used to stamp the
// report for reproducibility.
func (r *ResultRepository) ListSHAs(ctx context.Context, exp string) ([]resultrow.SHA, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.list_shas")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return nil, err
	}

	sqlStr, args, err := psql.Select("experiment", "repo", "commit").
		From("shas").
		Where(sq.Eq{"experiment": exp}).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []resultrow.SHA

	for rows.Next() {
		var s resultrow.SHA
		if err := rows.Scan(&s.Experiment, &s.Repo, &s.Commit); err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, rows.Err()
}

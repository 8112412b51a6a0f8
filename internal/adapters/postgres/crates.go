package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/pkg/mpostgres"
)

// CrateRepository is the postgres-backed store for experiment-crate
// rows, the unit of distributed work ownership.
type CrateRepository struct {
	conn   *mpostgres.Connection
	tracer trace.Tracer
}

func NewCrateRepository(conn *mpostgres.Connection) *CrateRepository {
	return &CrateRepository{conn: conn, tracer: otel.Tracer("adapters.postgres")}
}

// ContinuityExperiment returns the experiment name the agent is
// already running a crate for, if any — rule 1 of the selection
// algorithm.
func (r *CrateRepository) ContinuityExperiment(ctx context.Context, agent string) (string, bool, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.continuity_experiment")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return "", false, err
	}

	sqlStr, args, err := psql.Select("experiment").
		From("experiment_crates").
		Where(sq.Eq{"status": experiment.CrateRunning, "assignee": agent}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", false, err
	}

	var name string

	err = db.QueryRowContext(ctx, sqlStr, args...).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}

	return name, err == nil, err
}

// ClaimNextCrate selects one queued, non-skipped crate row for
// experiment and atomically marks it running/assignee=agent within a
// transaction, returning its package id. Ordered by insertion (ctid)
// so rows are handed out in creation order.
func (r *CrateRepository) ClaimNextCrate(ctx context.Context, exp, agent string) (string, bool, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.claim_next_crate")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return "", false, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	selectSQL, args, err := psql.Select("package").
		From("experiment_crates").
		Where(sq.Eq{"experiment": exp, "status": experiment.CrateQueued, "skipped": false}).
		OrderBy("ctid").
		Limit(1).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return "", false, err
	}

	var pkg string

	err = tx.QueryRowContext(ctx, selectSQL, args...).Scan(&pkg)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}

	if err != nil {
		return "", false, err
	}

	updateSQL, args, err := psql.Update("experiment_crates").
		Set("status", experiment.CrateRunning).
		Set("assignee", agent).
		Where(sq.Eq{"experiment": exp, "package": pkg}).
		ToSql()
	if err != nil {
		return "", false, err
	}

	if _, err := tx.ExecContext(ctx, updateSQL, args...); err != nil {
		return "", false, err
	}

	if err := tx.Commit(); err != nil {
		return "", false, err
	}

	return pkg, true, nil
}

// MarkCompleted sets a crate row's status to completed once both
// toolchains have result rows for it.
func (r *CrateRepository) MarkCompleted(ctx context.Context, exp, pkg string) error {
	ctx, span := r.tracer.Start(ctx, "postgres.mark_crate_completed")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return err
	}

	sqlStr, args, err := psql.Update("experiment_crates").
		Set("status", experiment.CrateCompleted).
		Where(sq.Eq{"experiment": exp, "package": pkg}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, sqlStr, args...)

	return err
}

// OutstandingCount returns the number of crate rows for exp still
// queued or running — used to decide whether running can transition
// to needs-report.
func (r *CrateRepository) OutstandingCount(ctx context.Context, exp string) (int, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.outstanding_crate_count")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return 0, err
	}

	sqlStr, args, err := psql.Select("COUNT(*)").
		From("experiment_crates").
		Where(sq.Eq{"experiment": exp, "status": []experiment.CrateStatus{experiment.CrateQueued, experiment.CrateRunning}}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int

	err = db.QueryRowContext(ctx, sqlStr, args...).Scan(&count)

	return count, err
}

// NonSkippedCount returns the denominator for the progress counter:
// 2 * non-skipped crate rows.
func (r *CrateRepository) NonSkippedCount(ctx context.Context, exp string) (int, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.non_skipped_crate_count")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return 0, err
	}

	sqlStr, args, err := psql.Select("COUNT(*)").
		From("experiment_crates").
		Where(sq.Eq{"experiment": exp, "skipped": false}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = db.QueryRowContext(ctx, sqlStr, args...).Scan(&count)

	return count, err
}

// RequeueStaleRunning resets crate rows still running under a stale
// agent back to queued — an administrative reset that is not
// automatic; exposed here for an operator-triggered action, never
// called from the assignment hot path.
func (r *CrateRepository) RequeueStaleRunning(ctx context.Context, staleAgent string) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.requeue_stale_running")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return 0, err
	}

	sqlStr, args, err := psql.Update("experiment_crates").
		Set("status", experiment.CrateQueued).
		Set("assignee", nil).
		Where(sq.Eq{"status": experiment.CrateRunning, "assignee": staleAgent}).
		ToSql()
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

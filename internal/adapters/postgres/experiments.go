// Package postgres implements C1 (the persistent store) against
// PostgreSQL: experiments, experiment-crate rows, result rows, SHA
// rows, and agent rows, all built with Masterminds/squirrel and
// instrumented with otel spans per query, mirroring the teacher's
// "postgres.<operation>" span-naming convention.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/internal/domain/toolchain"
	"github.com/ecoci/ecoci/pkg/merrors"
	"github.com/ecoci/ecoci/pkg/mpostgres"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ExperimentRepository is the postgres-backed store for Experiment and
// Crate rows.
type ExperimentRepository struct {
	conn   *mpostgres.Connection
	tracer trace.Tracer
}

func NewExperimentRepository(conn *mpostgres.Connection) *ExperimentRepository {
	return &ExperimentRepository{conn: conn, tracer: otel.Tracer("adapters.postgres")}
}

// Create inserts a new experiment row and its full set of crate rows
// (one per package in pkgIDs), deriving skipped from the blacklist
// unless IgnoreBlacklist is set.
func (r *ExperimentRepository) Create(ctx context.Context, e experiment.Experiment, pkgIDs []string, blacklisted map[string]bool) error {
	ctx, span := r.tracer.Start(ctx, "postgres.create_experiment")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	insertExp := psql.Insert("experiments").
		Columns("name", "toolchain1", "toolchain2", "mode", "lint_cap", "priority",
			"status", "assignee", "requirement", "ignore_blacklist", "created_at").
		Values(e.Name, e.Toolchains[0].Name(), e.Toolchains[1].Name(), e.Mode, e.LintCap,
			e.Priority, experiment.StatusQueued, e.Assignee, e.Requirement, e.IgnoreBlacklist, time.Now().UTC())

	sqlStr, args, err := insertExp.ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		if isUniqueViolation(err) {
			return merrors.ErrExperimentNameTaken
		}

		return fmt.Errorf("insert experiment: %w", err)
	}

	crateInsert := psql.Insert("experiment_crates").
		Columns("experiment", "package", "skipped", "status")

	for _, pkg := range pkgIDs {
		skipped := blacklisted[pkg] && !e.IgnoreBlacklist
		crateInsert = crateInsert.Values(e.Name, pkg, skipped, experiment.CrateQueued)
	}

	sqlStr, args, err = crateInsert.ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert crates: %w", err)
	}

	return tx.Commit()
}

// Get returns the experiment row named name.
func (r *ExperimentRepository) Get(ctx context.Context, name string) (experiment.Experiment, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.get_experiment")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return experiment.Experiment{}, err
	}

	sqlStr, args, err := psql.Select(experimentColumns...).
		From("experiments").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return experiment.Experiment{}, err
	}

	row := db.QueryRowContext(ctx, sqlStr, args...)

	e, err := scanExperiment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return experiment.Experiment{}, merrors.ErrExperimentNotFound
	}

	return e, err
}

// UpdateStatus transitions the experiment's status, stamping
// started_at/completed_at.
func (r *ExperimentRepository) UpdateStatus(ctx context.Context, name string, to experiment.Status) error {
	ctx, span := r.tracer.Start(ctx, "postgres.update_experiment_status")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return err
	}

	builder := psql.Update("experiments").Set("status", to).Where(sq.Eq{"name": name})

	if to == experiment.StatusRunning {
		builder = builder.Set("started_at", time.Now().UTC())
	}

	if to == experiment.StatusNeedsReport || to == experiment.StatusCompleted || to == experiment.StatusFailed {
		builder = builder.Set("completed_at", sq.Expr("COALESCE(completed_at, ?)", time.Now().UTC()))
	}

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, sqlStr, args...)

	return err
}

// SetAssignee stamps the experiment's assignee column (used when the
// unassigned queue picks an experiment and stamps it "distributed").
func (r *ExperimentRepository) SetAssignee(ctx context.Context, name, assignee string) error {
	ctx, span := r.tracer.Start(ctx, "postgres.set_experiment_assignee")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return err
	}

	sqlStr, args, err := psql.Update("experiments").
		Set("assignee", assignee).
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, sqlStr, args...)

	return err
}

// ListNeedsReport returns every experiment currently in needs-report,
// oldest first, the report worker's candidate pool.
func (r *ExperimentRepository) ListNeedsReport(ctx context.Context) ([]experiment.Experiment, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.list_needs_report")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return nil, err
	}

	sqlStr, args, err := psql.Select(experimentColumns...).
		From("experiments").
		Where(sq.Eq{"status": experiment.StatusNeedsReport}).
		OrderBy("completed_at ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanExperiments(rows)
}

// SetReportURL stamps the experiment's report URL on successful report
// generation.
func (r *ExperimentRepository) SetReportURL(ctx context.Context, name, url string) error {
	ctx, span := r.tracer.Start(ctx, "postgres.set_report_url")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return err
	}

	sqlStr, args, err := psql.Update("experiments").
		Set("report_url", url).
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, sqlStr, args...)

	return err
}

// Delete cascades to experiment_crates, results, and shas rows (the
// foreign keys are declared ON DELETE CASCADE in the migrations).
func (r *ExperimentRepository) Delete(ctx context.Context, name string) error {
	ctx, span := r.tracer.Start(ctx, "postgres.delete_experiment")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return err
	}

	sqlStr, args, err := psql.Delete("experiments").Where(sq.Eq{"name": name}).ToSql()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, sqlStr, args...)

	return err
}

var experimentColumns = []string{
	"name", "toolchain1", "toolchain1_alt", "toolchain2", "toolchain2_alt", "mode", "lint_cap",
	"priority", "status", "assignee", "report_url", "requirement", "ignore_blacklist",
	"created_at", "started_at", "completed_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExperiment(row rowScanner) (experiment.Experiment, error) {
	var (
		e                                     experiment.Experiment
		tc1, tc2                              string
		tc1Alt, tc2Alt                        bool
		assignee, reportURL, requirement      sql.NullString
		startedAt, completedAt                sql.NullTime
	)

	err := row.Scan(&e.Name, &tc1, &tc1Alt, &tc2, &tc2Alt, &e.Mode, &e.LintCap, &e.Priority,
		&e.Status, &assignee, &reportURL, &requirement, &e.IgnoreBlacklist,
		&e.CreatedAt, &startedAt, &completedAt)
	if err != nil {
		return experiment.Experiment{}, err
	}

	e.Toolchains[0] = parseToolchain(tc1, tc1Alt)
	e.Toolchains[1] = parseToolchain(tc2, tc2Alt)

	if assignee.Valid {
		e.Assignee = &assignee.String
	}

	if reportURL.Valid {
		e.ReportURL = &reportURL.String
	}

	e.Requirement = requirement.String

	if startedAt.Valid {
		e.StartedAt = &startedAt.Time
	}

	if completedAt.Valid {
		e.CompletedAt = &completedAt.Time
	}

	return e, nil
}

// parseToolchain reconstructs a Toolchain from its rendered Name(): the
// "-alt" suffix on a ci- prefixed name is the alternate flag, so the
// alt column is not consulted — Name() already embeds it.
func parseToolchain(name string, _ bool) toolchain.Toolchain {
	const prefix = "ci-"

	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return toolchain.Dist(name)
	}

	rest := name[len(prefix):]

	const altSuffix = "-alt"
	if len(rest) > len(altSuffix) && rest[len(rest)-len(altSuffix):] == altSuffix {
		return toolchain.CICommit(rest[:len(rest)-len(altSuffix)], true)
	}

	return toolchain.CICommit(rest, false)
}

// isUniqueViolation reports whether err is a postgres unique
// constraint violation (SQLSTATE 23505), whether the driver reports it
// as a *pgconn.PgError (pgx) or as a *pq.Error (lib/pq).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var pqErr *pq.Error

	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return false
}

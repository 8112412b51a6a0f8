package postgres

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/pkg/mpostgres"
)

// QueueRepository implements the pinned/distributed/unassigned queue
// lookups of the selection algorithm's pinned/distributed/unassigned steps.
type QueueRepository struct {
	conn   *mpostgres.Connection
	tracer trace.Tracer
}

func NewQueueRepository(conn *mpostgres.Connection) *QueueRepository {
	return &QueueRepository{conn: conn, tracer: otel.Tracer("adapters.postgres")}
}

// candidatesByAssignee returns every queued-or-running experiment
// pinned to assignee, highest priority first and oldest first within a
// priority. Filtering to rows whose requirement the agent's
// capabilities satisfy is left to the caller in Go, since "subset of capabilities" isn't expressible as a
// single indexable predicate over an arbitrary capability set.
func (r *QueueRepository) candidatesByAssignee(ctx context.Context, assignee string) ([]experiment.Experiment, error) {
	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return nil, err
	}

	sqlStr, args, err := psql.Select(experimentColumns...).
		From("experiments").
		Where(sq.Eq{"status": []experiment.Status{experiment.StatusQueued, experiment.StatusRunning}, "assignee": assignee}).
		OrderBy("priority DESC", "created_at ASC").
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

// PinnedCandidates implements step 2: assignee = this agent's name.
func (r *QueueRepository) PinnedCandidates(ctx context.Context, agent string) ([]experiment.Experiment, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.pinned_queue")
	defer span.End()

	return r.candidatesByAssignee(ctx, agent)
}

// DistributedCandidates implements step 3: assignee = "distributed".
func (r *QueueRepository) DistributedCandidates(ctx context.Context) ([]experiment.Experiment, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.distributed_queue")
	defer span.End()

	return r.candidatesByAssignee(ctx, experiment.AssigneeDistributed)
}

// UnassignedCandidates implements step 4: assignee is null.
func (r *QueueRepository) UnassignedCandidates(ctx context.Context) ([]experiment.Experiment, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.unassigned_queue")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return nil, err
	}

	sqlStr, args, err := psql.Select(experimentColumns...).
		From("experiments").
		Where(sq.Eq{"status": []experiment.Status{experiment.StatusQueued, experiment.StatusRunning}}).
		Where(sq.Eq{"assignee": nil}).
		OrderBy("priority DESC", "created_at ASC").
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

func scanExperiments(rows *sql.Rows) ([]experiment.Experiment, error) {
	var out []experiment.Experiment

	for rows.Next() {
		e, err := scanExperiment(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	return out, rows.Err()
}

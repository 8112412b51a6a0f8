package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecoci/ecoci/internal/domain/agentinfo"
	"github.com/ecoci/ecoci/pkg/merrors"
	"github.com/ecoci/ecoci/pkg/mpostgres"
)

// AgentRepository is the postgres-backed store for agent rows,
// synchronized from a static token roster on server startup.
type AgentRepository struct {
	conn   *mpostgres.Connection
	tracer trace.Tracer
}

func NewAgentRepository(conn *mpostgres.Connection) *AgentRepository {
	return &AgentRepository{conn: conn, tracer: otel.Tracer("adapters.postgres")}
}

// SyncRoster upserts every (name, token, capabilities) entry from the
// static roster config, refining capabilities already known rather
// than admitting unknown tokens at config() time.
func (r *AgentRepository) SyncRoster(ctx context.Context, roster []agentinfo.Agent) error {
	ctx, span := r.tracer.Start(ctx, "postgres.sync_agent_roster")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return err
	}

	for _, a := range roster {
		sqlStr, args, err := psql.Insert("agents").
			Columns("name", "token", "capabilities", "last_heartbeat").
			Values(a.Name, a.Token, pq.Array(a.Capabilities), time.Time{}).
			Suffix(`ON CONFLICT (name) DO UPDATE SET token = EXCLUDED.token, capabilities = EXCLUDED.capabilities`).
			ToSql()
		if err != nil {
			return err
		}

		if _, err := db.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
	}

	return nil
}

// ByToken resolves a bearer token to its agent, used by the HTTP
// adapter's auth middleware.
func (r *AgentRepository) ByToken(ctx context.Context, token string) (agentinfo.Agent, bool, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.agent_by_token")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return agentinfo.Agent{}, false, err
	}

	sqlStr, args, err := psql.Select("name", "token", "last_heartbeat", "git_revision", "capabilities").
		From("agents").
		Where(sq.Eq{"token": token}).
		ToSql()
	if err != nil {
		return agentinfo.Agent{}, false, err
	}

	var (
		a            agentinfo.Agent
		lastHB       sql.NullTime
		gitRev       sql.NullString
		capabilities pq.StringArray
	)

	err = db.QueryRowContext(ctx, sqlStr, args...).Scan(&a.Name, &a.Token, &lastHB, &gitRev, &capabilities)
	if errors.Is(err, sql.ErrNoRows) {
		return agentinfo.Agent{}, false, nil
	}

	if err != nil {
		return agentinfo.Agent{}, false, err
	}

	a.LastHeartbeat = lastHB.Time
	a.GitRevision = gitRev.String
	a.Capabilities = []string(capabilities)

	return a, true, nil
}

// ByName resolves an agent already authenticated by the HTTP
// middleware, used by handlers that need the full roster entry
// (capabilities, last heartbeat) without re-presenting the bearer
// token.
func (r *AgentRepository) ByName(ctx context.Context, name string) (agentinfo.Agent, bool, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.agent_by_name")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return agentinfo.Agent{}, false, err
	}

	sqlStr, args, err := psql.Select("name", "token", "last_heartbeat", "git_revision", "capabilities").
		From("agents").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return agentinfo.Agent{}, false, err
	}

	var (
		a            agentinfo.Agent
		lastHB       sql.NullTime
		gitRev       sql.NullString
		capabilities pq.StringArray
	)

	err = db.QueryRowContext(ctx, sqlStr, args...).Scan(&a.Name, &a.Token, &lastHB, &gitRev, &capabilities)
	if errors.Is(err, sql.ErrNoRows) {
		return agentinfo.Agent{}, false, nil
	}

	if err != nil {
		return agentinfo.Agent{}, false, err
	}

	a.LastHeartbeat = lastHB.Time
	a.GitRevision = gitRev.String
	a.Capabilities = []string(capabilities)

	return a, true, nil
}

// Heartbeat stamps the agent's liveness timestamp.
func (r *AgentRepository) Heartbeat(ctx context.Context, name string) error {
	ctx, span := r.tracer.Start(ctx, "postgres.agent_heartbeat")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return err
	}

	sqlStr, args, err := psql.Update("agents").
		Set("last_heartbeat", time.Now().UTC()).
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return merrors.ErrAgentNotFound
	}

	return nil
}

// UpdateCapabilities refines an agent's capability set at config()
// time, never admitting a name the roster sync didn't already create.
func (r *AgentRepository) UpdateCapabilities(ctx context.Context, name string, capabilities []string, gitRevision string) error {
	ctx, span := r.tracer.Start(ctx, "postgres.update_agent_capabilities")
	defer span.End()

	db, err := r.conn.GetDB(ctx)
	if err != nil {
		return err
	}

	sqlStr, args, err := psql.Update("agents").
		Set("capabilities", pq.Array(capabilities)).
		Set("git_revision", gitRevision).
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, sqlStr, args...)

	return err
}

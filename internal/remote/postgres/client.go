// Package postgres implements the remote document store over a single
// documents table. The sql.DB handle is opened by the app wiring (through
// otelsqlx) and handed in; this package owns connectivity state, the
// per-call timeout, and the circuit breaker guarding a flaky uplink.
package postgres

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/Jslock56/competehq/internal/platform/logging"
	"github.com/Jslock56/competehq/internal/platform/netprobe"
	qb "github.com/Jslock56/competehq/internal/platform/querybuilder"
	"github.com/Jslock56/competehq/internal/platform/resilience"
	"github.com/Jslock56/competehq/internal/remote"
)

type Options struct {
	// Timeout bounds every remote call. Kept short so a dead uplink degrades
	// into local-only mode quickly instead of hanging handlers.
	Timeout time.Duration

	FailureThreshold   int
	BreakerOpenTimeout time.Duration
}

type Client struct {
	db      *sqlx.DB
	log     *logging.Logger
	probe   *netprobe.Prober
	breaker *resilience.Breaker
	timeout time.Duration

	connecting resilience.SingleFlight
	connected  atomic.Bool

	mu      sync.Mutex
	connErr error
}

func New(db *sqlx.DB, probe *netprobe.Prober, log *logging.Logger, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = 5
	}
	if opts.BreakerOpenTimeout <= 0 {
		opts.BreakerOpenTimeout = 15 * time.Second
	}

	return &Client{
		db:      db,
		log:     log,
		probe:   probe,
		breaker: resilience.NewBreaker(opts.FailureThreshold, opts.BreakerOpenTimeout),
		timeout: opts.Timeout,
	}
}

// Connect probes network reachability, then pings the database. Concurrent
// callers share one attempt.
func (c *Client) Connect(ctx context.Context) error {
	_, err, _ := c.connecting.Do("connect", func() (any, error) {
		if err := c.probe.Reachable(ctx); err != nil {
			return nil, err
		}

		pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		if err := c.db.PingContext(pingCtx); err != nil {
			return nil, errors.Wrap(err, "ping document store")
		}
		return nil, nil
	})

	c.setConnErr(err)
	if err != nil {
		c.connected.Store(false)
		c.log.WarnContext(ctx, "document store connect failed", "error", err)
		return err
	}

	c.connected.Store(true)
	c.breaker.RecordSuccess()
	c.log.InfoContext(ctx, "document store connected")
	return nil
}

func (c *Client) IsConnected() bool {
	return c.connected.Load() && c.breaker.Healthy()
}

func (c *Client) ConnectionError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connErr
}

func (c *Client) Close() error {
	c.connected.Store(false)
	return c.db.Close()
}

func (c *Client) Get(ctx context.Context, kind, id string) (remote.Document, error) {
	query, args, err := qb.Select(documentColumns...).From("documents").
		Where(
			qb.Eq("kind", kind),
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return remote.Document{}, errors.Wrap(err, "build select document query")
	}

	var row documentRow
	err = c.run(ctx, "get", func(ctx context.Context) error {
		return c.db.GetContext(ctx, &row, query, args...)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return remote.Document{}, remote.ErrNotFound
	}
	if err != nil {
		return remote.Document{}, errors.Wrap(err, "select document")
	}

	return row.toDocument(), nil
}

func (c *Client) GetByGame(ctx context.Context, kind, gameID string) (remote.Document, error) {
	query, args, err := qb.Select(documentColumns...).From("documents").
		Where(
			qb.Eq("kind", kind),
			qb.Eq("game_id", gameID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return remote.Document{}, errors.Wrap(err, "build select document by game query")
	}

	var row documentRow
	err = c.run(ctx, "get_by_game", func(ctx context.Context) error {
		return c.db.GetContext(ctx, &row, query, args...)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return remote.Document{}, remote.ErrNotFound
	}
	if err != nil {
		return remote.Document{}, errors.Wrap(err, "select document by game")
	}

	return row.toDocument(), nil
}

func (c *Client) ListByTeam(ctx context.Context, kind, teamID string) ([]remote.Document, error) {
	query, args, err := qb.Select(documentColumns...).From("documents").
		Where(
			qb.Eq("kind", kind),
			qb.Eq("team_id", teamID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build select documents by team query")
	}

	return c.selectDocuments(ctx, "list_by_team", query, args)
}

func (c *Client) ListKind(ctx context.Context, kind string) ([]remote.Document, error) {
	query, args, err := qb.Select(documentColumns...).From("documents").
		Where(
			qb.Eq("kind", kind),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build select documents query")
	}

	return c.selectDocuments(ctx, "list_kind", query, args)
}

func (c *Client) ListKindWithDeleted(ctx context.Context, kind string) ([]remote.Document, error) {
	query, args, err := qb.Select(documentColumns...).From("documents").
		Where(qb.Eq("kind", kind)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build select documents with deleted query")
	}

	return c.selectDocuments(ctx, "list_kind_with_deleted", query, args)
}

func (c *Client) ListByTeamWithDeleted(ctx context.Context, kind, teamID string) ([]remote.Document, error) {
	query, args, err := qb.Select(documentColumns...).From("documents").
		Where(
			qb.Eq("kind", kind),
			qb.Eq("team_id", teamID),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build select documents by team with deleted query")
	}

	return c.selectDocuments(ctx, "list_by_team_with_deleted", query, args)
}

func (c *Client) Put(ctx context.Context, doc remote.Document) error {
	query, args, err := qb.InsertInto("documents").
		Columns("kind", "id", "team_id", "game_id", "payload", "updated_at").
		Values(doc.Kind, doc.ID, nullString(doc.TeamID), nullString(doc.GameID), doc.Payload, doc.UpdatedAt).
		Suffix("ON CONFLICT (kind, id) DO UPDATE SET team_id = EXCLUDED.team_id, game_id = EXCLUDED.game_id, payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at, deleted_at = NULL").
		ToSQL()
	if err != nil {
		return errors.Wrap(err, "build upsert document query")
	}

	err = c.run(ctx, "put", func(ctx context.Context) error {
		_, execErr := c.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return errors.Wrap(err, "upsert document")
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, kind, id string) error {
	now := time.Now().UnixMilli()
	query, args, err := qb.InsertInto("documents").
		Columns("kind", "id", "payload", "updated_at", "deleted_at").
		Values(kind, id, []byte("{}"), now, now).
		Suffix("ON CONFLICT (kind, id) DO UPDATE SET updated_at = EXCLUDED.updated_at, deleted_at = EXCLUDED.deleted_at").
		ToSQL()
	if err != nil {
		return errors.Wrap(err, "build tombstone document query")
	}

	err = c.run(ctx, "delete", func(ctx context.Context) error {
		_, execErr := c.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return errors.Wrap(err, "tombstone document")
	}
	return nil
}

func (c *Client) selectDocuments(ctx context.Context, op, query string, args []any) ([]remote.Document, error) {
	var rows []documentRow
	err := c.run(ctx, op, func(ctx context.Context) error {
		return c.db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, errors.Wrap(err, "select documents")
	}

	out := make([]remote.Document, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDocument())
	}
	return out, nil
}

// run applies the connectivity gate, the breaker, and the call timeout
// around one database operation. sql.ErrNoRows is a miss, not a fault, and
// passes through without tripping the breaker.
func (c *Client) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if !c.connected.Load() {
		return remote.ErrUnavailable
	}
	if err := c.breaker.Allow(); err != nil {
		return remote.ErrUnavailable
	}

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := fn(opCtx)
	switch {
	case err == nil:
		c.breaker.RecordSuccess()
	case errors.Is(err, sql.ErrNoRows):
	default:
		c.breaker.RecordFailure()
		c.log.WarnContext(ctx, "document store call failed", "op", op, "error", err)
	}
	return err
}

func (c *Client) setConnErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connErr = err
}

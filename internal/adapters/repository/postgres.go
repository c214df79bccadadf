package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/duelwall/internal/domain/model"
	"github.com/okian/duelwall/internal/domain/rating"
	"github.com/okian/duelwall/internal/domain/types"
	"github.com/okian/duelwall/pkg/metrics"
)

//go:embed schema.sql
var schema embed.FS

const uniqueViolation = "23505"

// scoreExpr mirrors rating.ConservativeScore in SQL.
const scoreExpr = `(rating - 40.0 / sqrt(matches + 1))`

const contestantColumns = `id, name, image_ref, rating, matches, created_at`

// PostgresStore keeps the roster in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects, pings and applies the embedded schema.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := s.pool.Exec(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanContestant(row pgx.Row) (model.Contestant, error) {
	var c model.Contestant
	err := row.Scan(&c.ID, &c.Name, &c.ImageRef, &c.Rating, &c.Matches, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Contestant{}, ErrNotFound
	}
	return c, err
}

func (s *PostgresStore) List(ctx context.Context) ([]model.Contestant, error) {
	defer observeQuery(time.Now())

	rows, err := s.pool.Query(ctx, `SELECT `+contestantColumns+` FROM contestants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list contestants: %w", err)
	}
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (model.Contestant, error) {
		return scanContestant(r)
	})
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (model.Contestant, error) {
	defer observeQuery(time.Now())

	return scanContestant(s.pool.QueryRow(ctx,
		`SELECT `+contestantColumns+` FROM contestants WHERE id = $1`, id))
}

func (s *PostgresStore) Insert(ctx context.Context, entries []model.NewContestant) ([]model.Contestant, error) {
	defer observeUpdate(time.Now())

	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.ImageRef) == "" {
			return nil, ErrEmptyField
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	out := make([]model.Contestant, 0, len(entries))
	for _, e := range entries {
		c, err := scanContestant(tx.QueryRow(ctx, `
			INSERT INTO contestants (name, image_ref, rating)
			VALUES ($1, $2, $3)
			RETURNING `+contestantColumns, e.Name, e.ImageRef, model.DefaultRating))
		if err != nil {
			return nil, fmt.Errorf("insert contestant: %w", err)
		}
		out = append(out, c)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit insert: %w", err)
	}
	s.refreshRosterGauge(ctx)
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, id int64, name, imageRef string) (model.Contestant, error) {
	defer observeUpdate(time.Now())

	return scanContestant(s.pool.QueryRow(ctx, `
		UPDATE contestants
		SET name = COALESCE(NULLIF($2, ''), name),
		    image_ref = COALESCE(NULLIF($3, ''), image_ref)
		WHERE id = $1
		RETURNING `+contestantColumns, id, strings.TrimSpace(name), strings.TrimSpace(imageRef)))
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	defer observeUpdate(time.Now())

	tag, err := s.pool.Exec(ctx, `DELETE FROM contestants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contestant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.refreshRosterGauge(ctx)
	return nil
}

func (s *PostgresStore) RecordDuel(ctx context.Context, cmd DuelCommand, resolve Resolver) (model.DuelRecord, error) {
	defer observeUpdate(time.Now())

	if cmd.AID == cmd.BID {
		return model.DuelRecord{}, ErrSameSide
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.DuelRecord{}, fmt.Errorf("begin duel: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock in id order so concurrent duels over the same pair cannot deadlock.
	rows, err := tx.Query(ctx, `
		SELECT `+contestantColumns+` FROM contestants
		WHERE id = ANY($1) ORDER BY id FOR UPDATE`, []int64{cmd.AID, cmd.BID})
	if err != nil {
		return model.DuelRecord{}, fmt.Errorf("lock contestants: %w", err)
	}
	locked, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (model.Contestant, error) {
		return scanContestant(r)
	})
	if err != nil {
		return model.DuelRecord{}, fmt.Errorf("lock contestants: %w", err)
	}
	if len(locked) != 2 {
		return model.DuelRecord{}, ErrNotFound
	}
	a, b := locked[0], locked[1]
	if a.ID != cmd.AID {
		a, b = b, a
	}

	res := resolve(a, b, cmd.Outcome)
	for _, side := range []model.DuelSide{res.A, res.B} {
		if _, err := tx.Exec(ctx,
			`UPDATE contestants SET rating = $2, matches = $3 WHERE id = $1`,
			side.ID, side.Rating, side.Matches); err != nil {
			return model.DuelRecord{}, fmt.Errorf("update contestant %d: %w", side.ID, err)
		}
	}

	rec := model.DuelRecord{
		SubmissionID: cmd.SubmissionID,
		Outcome:      cmd.Outcome,
		WinnerID:     model.WinnerFor(cmd.Outcome, a.ID, b.ID),
		A:            res.A,
		B:            res.B,
	}
	var submission *string
	if cmd.SubmissionID != "" {
		submission = &cmd.SubmissionID
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO duels (submission_id, contestant_a, contestant_b, winner, outcome,
			rating_a, rating_b, delta_a, delta_b)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		submission, a.ID, b.ID, rec.WinnerID, string(cmd.Outcome),
		res.A.Rating, res.B.Rating, res.A.Delta, res.B.Delta,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.DuelRecord{}, ErrDuplicateSubmission
		}
		return model.DuelRecord{}, fmt.Errorf("insert duel: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.DuelRecord{}, fmt.Errorf("commit duel: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	defer observeQuery(time.Now())

	if n < 1 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+contestantColumns+` FROM contestants
		ORDER BY `+scoreExpr+` DESC, id ASC
		LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("top contestants: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (model.Contestant, error) {
		return scanContestant(r)
	})
	if err != nil {
		return nil, fmt.Errorf("top contestants: %w", err)
	}
	out := make([]types.Entry, len(list))
	for i, c := range list {
		out[i] = types.NewEntry(i+1, c, rating.ContestantScore(c))
	}
	return out, nil
}

func (s *PostgresStore) Rank(ctx context.Context, id int64) (types.Entry, error) {
	defer observeQuery(time.Now())

	c, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.RecordErrorByComponent("repository", "not_found")
		}
		return types.Entry{}, err
	}
	var ahead int
	err = s.pool.QueryRow(ctx, `
		WITH me AS (SELECT `+scoreExpr+` AS score FROM contestants WHERE id = $1)
		SELECT count(*) FROM contestants, me
		WHERE `+scoreExpr+` > me.score OR (`+scoreExpr+` = me.score AND id < $1)`, id).Scan(&ahead)
	if err != nil {
		return types.Entry{}, fmt.Errorf("rank contestant: %w", err)
	}
	return types.NewEntry(ahead+1, c, rating.ContestantScore(c)), nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM contestants`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contestants: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) refreshRosterGauge(ctx context.Context) {
	if n, err := s.Count(ctx); err == nil {
		metrics.UpdateRosterSize(n)
	}
}

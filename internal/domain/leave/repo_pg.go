package leave

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dently/clinic/internal/domain/schedule"
	"github.com/dently/clinic/internal/platform/apperr"
	"github.com/dently/clinic/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type txBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *repoPG) beginner(ctx context.Context) txBeginner {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const cols = `id, user_id, leave_type, status, start_date, end_date,
	is_partial_day, start_time, end_time, total_days, reason,
	reviewed_by_id, reviewed_at, review_comments,
	has_alternative, alternative_start_date, alternative_end_date,
	alternative_comments, alternative_accepted, alternative_responded_at,
	created_at, updated_at`

func scanRequest(row pgx.Row) (*Request, error) {
	var (
		req      Request
		startRaw *string
		endRaw   *string
	)
	err := row.Scan(&req.ID, &req.UserID, &req.Type, &req.Status, &req.StartDate, &req.EndDate,
		&req.IsPartialDay, &startRaw, &endRaw, &req.TotalDays, &req.Reason,
		&req.ReviewedByID, &req.ReviewedAt, &req.ReviewComments,
		&req.HasAlternative, &req.AlternativeStartDate, &req.AlternativeEndDate,
		&req.AlternativeComments, &req.AlternativeAccepted, &req.AlternativeRespondedAt,
		&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if startRaw != nil {
		tod, err := schedule.ParseTimeOfDay(*startRaw)
		if err != nil {
			return nil, err
		}
		req.StartTime = &tod
	}
	if endRaw != nil {
		tod, err := schedule.ParseTimeOfDay(*endRaw)
		if err != nil {
			return nil, err
		}
		req.EndTime = &tod
	}
	return &req, nil
}

// Submit inserts the request inside a serializable transaction that
// re-runs the overlap check. The daterange exclusion constraint on the
// table backstops the check; both a serialization failure and a constraint
// violation surface as the same overlap conflict.
func (r *repoPG) Submit(ctx context.Context, req *Request) error {
	tx, err := r.beginner(ctx).BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	existing, err := findActiveOverlapping(ctx, tx, req.UserID, req.StartDate, req.EndDate)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrOverlapping(existing)
	}

	req.ID = uuid.New()
	var startStr, endStr *string
	if req.StartTime != nil {
		s := req.StartTime.String()
		startStr = &s
	}
	if req.EndTime != nil {
		s := req.EndTime.String()
		endStr = &s
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO leave_request (id, user_id, leave_type, status, start_date, end_date,
			is_partial_day, start_time, end_time, total_days, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		req.ID, req.UserID, req.Type, req.Status, req.StartDate, req.EndDate,
		req.IsPartialDay, startStr, endStr, req.TotalDays, req.Reason).
		Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		_ = tx.Rollback(ctx)
		return r.overlapOrRaw(ctx, req, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return r.overlapOrRaw(ctx, req, err)
	}
	return nil
}

// overlapOrRaw maps concurrent-submission failures (serialization abort,
// exclusion-constraint violation) to the overlap conflict; anything else
// passes through.
func (r *repoPG) overlapOrRaw(ctx context.Context, req *Request, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	if pgErr.Code != "40001" && pgErr.Code != "23P01" {
		return err
	}
	existing, findErr := r.FindActiveOverlapping(ctx, req.UserID, req.StartDate, req.EndDate)
	if findErr == nil && existing != nil {
		return ErrOverlapping(existing)
	}
	return apperr.Conflict("a concurrent leave request covers this date range")
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	req, err := scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM leave_request WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("leave request")
	}
	return req, err
}

func (r *repoPG) Update(ctx context.Context, req *Request) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE leave_request SET status=$2, reviewed_by_id=$3, reviewed_at=$4, review_comments=$5,
			has_alternative=$6, alternative_start_date=$7, alternative_end_date=$8,
			alternative_comments=$9, alternative_accepted=$10, alternative_responded_at=$11,
			updated_at=NOW()
		WHERE id = $1`,
		req.ID, req.Status, req.ReviewedByID, req.ReviewedAt, req.ReviewComments,
		req.HasAlternative, req.AlternativeStartDate, req.AlternativeEndDate,
		req.AlternativeComments, req.AlternativeAccepted, req.AlternativeRespondedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("leave request")
	}
	return nil
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Request, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM leave_request WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM leave_request WHERE user_id = $1
		ORDER BY start_date DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := collectRequests(rows)
	return out, total, err
}

func (r *repoPG) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Request, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM leave_request WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM leave_request WHERE status = $1
		ORDER BY created_at LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := collectRequests(rows)
	return out, total, err
}

func (r *repoPG) FindActiveOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time) (*Request, error) {
	return findActiveOverlapping(ctx, r.conn(ctx), userID, start, end)
}

func findActiveOverlapping(ctx context.Context, q queryable, userID uuid.UUID, start, end time.Time) (*Request, error) {
	req, err := scanRequest(q.QueryRow(ctx, `
		SELECT `+cols+` FROM leave_request
		WHERE user_id = $1
		  AND status = ANY($2)
		  AND start_date <= $4 AND end_date >= $3
		ORDER BY start_date
		LIMIT 1`,
		userID, statusStrings(ActiveStatuses), start, end))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return req, err
}

func (r *repoPG) ListBlockingForUser(ctx context.Context, userID uuid.UUID) ([]*Request, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM leave_request
		WHERE user_id = $1 AND status = ANY($2)
		ORDER BY start_date`,
		userID, statusStrings([]Status{StatusApproved, StatusAlternativeAccepted}))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]*Request, error) {
	var out []*Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

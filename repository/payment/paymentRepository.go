// repository/payment/paymentRepository.go
package paymentrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/SiddharthPaudel/MangaZone-Backend/model"
	"github.com/SiddharthPaudel/MangaZone-Backend/util/database"
)

var ErrNotFound = errors.New("pending payment not found")

type Repo interface {
	Create(ctx context.Context, p *model.PendingPayment) error
	ByTransactionUUID(ctx context.Context, txn string) (*model.PendingPayment, error)

	// Complete flips a PENDING row to COMPLETED inside the grant
	// transaction. Returns false when the row was not PENDING anymore,
	// which marks the callback as a replay.
	Complete(ctx context.Context, tx pgx.Tx, txn string) (bool, error)
	Fail(ctx context.Context, txn string) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, p *model.PendingPayment) error {
	var loc *string
	if p.Location != "" {
		loc = &p.Location
	}
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO pending_payments (transaction_uuid, user_id, manga_id,
			rented_at, expires_at, price, phone_number, location, signature, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at`,
		p.TransactionUUID, p.UserID, p.MangaID,
		p.RentedAt, p.ExpiresAt, p.Price, p.PhoneNumber, loc, p.Signature, string(p.Status),
	).Scan(&p.CreatedAt)
}

func (r *repo) ByTransactionUUID(ctx context.Context, txn string) (*model.PendingPayment, error) {
	p := &model.PendingPayment{}
	var loc *string
	err := r.db.Pool.QueryRow(ctx, `
		SELECT transaction_uuid, user_id, manga_id, rented_at, expires_at,
			price, phone_number, location, signature, status, created_at
		FROM pending_payments
		WHERE transaction_uuid = $1`, txn,
	).Scan(
		&p.TransactionUUID, &p.UserID, &p.MangaID, &p.RentedAt, &p.ExpiresAt,
		&p.Price, &p.PhoneNumber, &loc, &p.Signature, &p.Status, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if loc != nil {
		p.Location = *loc
	}
	return p, nil
}

func (r *repo) Complete(ctx context.Context, tx pgx.Tx, txn string) (bool, error) {
	ct, err := tx.Exec(ctx, `
		UPDATE pending_payments
		SET status = 'COMPLETED'
		WHERE transaction_uuid = $1 AND status = 'PENDING'`, txn)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *repo) Fail(ctx context.Context, txn string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE pending_payments
		SET status = 'FAILED'
		WHERE transaction_uuid = $1 AND status = 'PENDING'`, txn)
	return err
}

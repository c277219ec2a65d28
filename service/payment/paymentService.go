package paymentsvc

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SiddharthPaudel/MangaZone-Backend/model"
	paymentrepo "github.com/SiddharthPaudel/MangaZone-Backend/repository/payment"
)

var (
	ErrUnknownTransaction = errors.New("unknown transaction")
	ErrBadSignature       = errors.New("signature mismatch")
)

type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PendingRepo interface {
	ByTransactionUUID(ctx context.Context, txn string) (*model.PendingPayment, error)
	Complete(ctx context.Context, tx pgx.Tx, txn string) (bool, error)
	Fail(ctx context.Context, txn string) error
}

type RentalRepo interface {
	Insert(ctx context.Context, tx pgx.Tx, r *model.Rental) error
}

type UserRepo interface {
	AddRentedManga(ctx context.Context, tx pgx.Tx, userID, mangaID int64, rentedAt, expiresAt time.Time) error
}

type MangaRepo interface {
	AddRenter(ctx context.Context, tx pgx.Tx, mangaID, userID int64, rentedAt, expiresAt time.Time) error
}

// Verifier re-checks the dispatch-time signature before a pending
// transaction is honored.
type Verifier interface {
	Verify(sig string, totalAmount float64, txnUUID string) bool
}

type Service interface {
	// HandleEsewaSuccess resolves the pending transaction and persists
	// the rental grant exactly once; a replayed callback is a no-op.
	// Returns the front-end URL to redirect the browser to.
	HandleEsewaSuccess(ctx context.Context, txn string) (string, error)

	// HandleEsewaFailure marks the pending transaction failed and
	// returns the failure redirect. Never persists a rental.
	HandleEsewaFailure(ctx context.Context, txn string) string
}

type service struct {
	db      Store
	pending PendingRepo
	rentals RentalRepo
	users   UserRepo
	manga   MangaRepo
	gateway Verifier

	frontendURL string
}

func New(db Store, pr PendingRepo, rr RentalRepo, ur UserRepo, mr MangaRepo, gw Verifier, frontendURL string) Service {
	return &service{
		db:          db,
		pending:     pr,
		rentals:     rr,
		users:       ur,
		manga:       mr,
		gateway:     gw,
		frontendURL: frontendURL,
	}
}

func (s *service) HandleEsewaSuccess(ctx context.Context, txn string) (_ string, err error) {
	p, err := s.pending.ByTransactionUUID(ctx, txn)
	if err != nil {
		if errors.Is(err, paymentrepo.ErrNotFound) {
			return "", ErrUnknownTransaction
		}
		return "", err
	}

	if !s.gateway.Verify(p.Signature, p.Price, p.TransactionUUID) {
		return "", ErrBadSignature
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	fresh, err := s.pending.Complete(ctx, tx, txn)
	if err != nil {
		return "", err
	}
	if !fresh {
		// Replayed callback: the grant already exists, just redirect.
		_ = tx.Rollback(ctx)
		return s.frontendURL + "/payment-success", nil
	}

	r := &model.Rental{
		UserID:        p.UserID,
		MangaID:       p.MangaID,
		RentedAt:      p.RentedAt,
		ExpiresAt:     p.ExpiresAt,
		Price:         p.Price,
		PaymentMethod: model.PayEsewa,
		PhoneNumber:   p.PhoneNumber,
		Location:      p.Location,
	}
	if err = s.rentals.Insert(ctx, tx, r); err != nil {
		return "", err
	}
	if err = s.users.AddRentedManga(ctx, tx, p.UserID, p.MangaID, p.RentedAt, p.ExpiresAt); err != nil {
		return "", err
	}
	if err = s.manga.AddRenter(ctx, tx, p.MangaID, p.UserID, p.RentedAt, p.ExpiresAt); err != nil {
		return "", err
	}
	if err = tx.Commit(ctx); err != nil {
		return "", err
	}

	return s.frontendURL + "/payment-success", nil
}

func (s *service) HandleEsewaFailure(ctx context.Context, txn string) string {
	if txn != "" {
		_ = s.pending.Fail(ctx, txn)
	}
	return s.frontendURL + "/payment-failure"
}

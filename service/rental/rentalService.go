package rentalsvc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/SiddharthPaudel/MangaZone-Backend/model"
	"github.com/SiddharthPaudel/MangaZone-Backend/repository/esewa"
	mangarepo "github.com/SiddharthPaudel/MangaZone-Backend/repository/manga"
	rentalrepo "github.com/SiddharthPaudel/MangaZone-Backend/repository/rental"
)

// errors used by controllers

type ErrCode string

const (
	ErrInvalidDuration ErrCode = "INVALID_DURATION"
	ErrInvalidPhone    ErrCode = "INVALID_PHONE"
	ErrInvalidMethod   ErrCode = "INVALID_METHOD"
	ErrNotRentable     ErrCode = "NOT_RENTABLE"
	ErrNotFound        ErrCode = "NOT_FOUND"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

var phoneRe = regexp.MustCompile(`^\d{10}$`)

// dto

type RentReq struct {
	UserID        int64
	MangaID       int64
	DurationValue int
	DurationUnit  model.DurationUnit
	PaymentMethod model.PaymentMethod
	PhoneNumber   string
	Location      string
}

// GatewayRedirect carries the signed form the client posts to eSewa.
type GatewayRedirect struct {
	Action string            `json:"action"`
	Values map[string]string `json:"values"`
}

// RentResult has exactly one branch set: Rental for trusted methods,
// Gateway for the eSewa redirect path.
type RentResult struct {
	Rental  *model.Rental
	Gateway *GatewayRedirect
}

// Row = repository shape
type Row = rentalrepo.Row
type Summary = rentalrepo.Summary

type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type MangaRepo interface {
	ByID(ctx context.Context, id int64) (*model.Manga, error)
	AddRenter(ctx context.Context, tx pgx.Tx, mangaID, userID int64, rentedAt, expiresAt time.Time) error
}

type UserRepo interface {
	AddRentedManga(ctx context.Context, tx pgx.Tx, userID, mangaID int64, rentedAt, expiresAt time.Time) error
}

type RentalRepo interface {
	Insert(ctx context.Context, tx pgx.Tx, r *model.Rental) error
	ListByUser(ctx context.Context, userID int64) ([]Row, error)
	ListAll(ctx context.Context) ([]Row, error)
	Delete(ctx context.Context, rentalID int64) error
	DashboardSummary(ctx context.Context) (*Summary, error)
	ReleaseExpiredGrants(ctx context.Context, now time.Time) (int64, error)
}

type PendingRepo interface {
	Create(ctx context.Context, p *model.PendingPayment) error
}

type Service interface {
	// Rent prices the request and either persists the rental (trusted
	// methods) or returns the signed gateway form (Esewa).
	Rent(ctx context.Context, req RentReq) (*RentResult, error)

	UserRentals(ctx context.Context, userID int64) ([]Row, error)
	AllRentals(ctx context.Context) ([]Row, error)
	DeleteRental(ctx context.Context, rentalID int64) error
	DashboardSummary(ctx context.Context) (*Summary, error)
}

// ----- Service implementation -----

type service struct {
	db      Store
	rentals RentalRepo
	manga   MangaRepo
	users   UserRepo
	pending PendingRepo
	gateway *esewa.Gateway

	backendURL string

	now func() time.Time
}

func New(db Store, rr RentalRepo, mr MangaRepo, ur UserRepo, pr PendingRepo, gw *esewa.Gateway, backendURL string) Service {
	return &service{
		db:         db,
		rentals:    rr,
		manga:      mr,
		users:      ur,
		pending:    pr,
		gateway:    gw,
		backendURL: backendURL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Rent(ctx context.Context, req RentReq) (*RentResult, error) {
	if !phoneRe.MatchString(req.PhoneNumber) {
		return nil, makeErr(ErrInvalidPhone)
	}
	switch req.PaymentMethod {
	case model.PayEsewa, model.PayKhalti, model.PayCash, model.PayCard:
	default:
		return nil, makeErr(ErrInvalidMethod)
	}

	m, err := s.manga.ByID(ctx, req.MangaID)
	if err != nil {
		if errors.Is(err, mangarepo.ErrNotFound) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if !m.IsRentable {
		return nil, makeErr(ErrNotRentable)
	}

	basePrice := 0.0
	if m.RentalDetails != nil {
		basePrice = m.RentalDetails.Price
	}

	rentedAt := s.now()
	expiresAt, total, err := Quote(basePrice, req.DurationValue, req.DurationUnit, rentedAt)
	if err != nil {
		return nil, err
	}

	if req.PaymentMethod == model.PayEsewa {
		return s.dispatchGateway(ctx, req, rentedAt, expiresAt, total)
	}
	return s.persistTrusted(ctx, req, rentedAt, expiresAt, total)
}

// dispatchGateway records a pending transaction and returns the signed
// form. No rental exists until the success callback resolves the pending
// row.
func (s *service) dispatchGateway(ctx context.Context, req RentReq, rentedAt, expiresAt time.Time, total float64) (*RentResult, error) {
	txn := uuid.NewString()

	successURL := fmt.Sprintf("%s/api/payment/esewa-success?txn=%s", s.backendURL, url.QueryEscape(txn))
	failureURL := fmt.Sprintf("%s/api/payment/esewa-failure?txn=%s", s.backendURL, url.QueryEscape(txn))

	values := s.gateway.BuildForm(total, txn, successURL, failureURL)

	p := &model.PendingPayment{
		TransactionUUID: txn,
		UserID:          req.UserID,
		MangaID:         req.MangaID,
		RentedAt:        rentedAt,
		ExpiresAt:       expiresAt,
		Price:           total,
		PhoneNumber:     req.PhoneNumber,
		Location:        req.Location,
		Signature:       values["signature"],
		Status:          model.PendingOpen,
	}
	if err := s.pending.Create(ctx, p); err != nil {
		return nil, err
	}

	return &RentResult{Gateway: &GatewayRedirect{
		Action: s.gateway.FormURL,
		Values: values,
	}}, nil
}

// persistTrusted writes the rental and both cross-references in one
// transaction so a grant is never half-recorded.
func (s *service) persistTrusted(ctx context.Context, req RentReq, rentedAt, expiresAt time.Time, total float64) (_ *RentResult, err error) {
	r := &model.Rental{
		UserID:        req.UserID,
		MangaID:       req.MangaID,
		RentedAt:      rentedAt,
		ExpiresAt:     expiresAt,
		Price:         total,
		PaymentMethod: req.PaymentMethod,
		PhoneNumber:   req.PhoneNumber,
		Location:      req.Location,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = s.rentals.Insert(ctx, tx, r); err != nil {
		return nil, err
	}
	if err = s.users.AddRentedManga(ctx, tx, req.UserID, req.MangaID, rentedAt, expiresAt); err != nil {
		return nil, err
	}
	if err = s.manga.AddRenter(ctx, tx, req.MangaID, req.UserID, rentedAt, expiresAt); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &RentResult{Rental: r}, nil
}

func (s *service) UserRentals(ctx context.Context, userID int64) ([]Row, error) {
	return s.rentals.ListByUser(ctx, userID)
}

func (s *service) AllRentals(ctx context.Context) ([]Row, error) {
	return s.rentals.ListAll(ctx)
}

func (s *service) DeleteRental(ctx context.Context, rentalID int64) error {
	if err := s.rentals.Delete(ctx, rentalID); err != nil {
		if errors.Is(err, rentalrepo.ErrNotFound) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *service) DashboardSummary(ctx context.Context) (*Summary, error) {
	return s.rentals.DashboardSummary(ctx)
}

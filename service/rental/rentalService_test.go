package rentalsvc

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/SiddharthPaudel/MangaZone-Backend/model"
	"github.com/SiddharthPaudel/MangaZone-Backend/repository/esewa"
	mangarepo "github.com/SiddharthPaudel/MangaZone-Backend/repository/manga"
)

// --- fakes ---

type fakeTx struct {
	committed  bool
	rolledBack bool
}

var _ pgx.Tx = (*fakeTx)(nil)

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *fakeTx) Commit(ctx context.Context) error          { t.committed = true; return nil }
func (t *fakeTx) Rollback(ctx context.Context) error        { t.rolledBack = true; return nil }
func (t *fakeTx) CopyFrom(ctx context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(ctx context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(ctx context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Exec(ctx context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *fakeTx) Query(ctx context.Context, _ string, _ ...any) (pgx.Rows, error) { return nil, nil }
func (t *fakeTx) QueryRow(ctx context.Context, _ string, _ ...any) pgx.Row        { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                                 { return nil }

type fakeStore struct{ tx *fakeTx }

func (s *fakeStore) Begin(ctx context.Context) (pgx.Tx, error) { return s.tx, nil }

type mockMangaRepo struct {
	manga     *model.Manga
	byIDErr   error
	renters   []model.Renter
	renterErr error
}

func (m *mockMangaRepo) ByID(ctx context.Context, id int64) (*model.Manga, error) {
	if m.byIDErr != nil {
		return nil, m.byIDErr
	}
	return m.manga, nil
}

func (m *mockMangaRepo) AddRenter(ctx context.Context, tx pgx.Tx, mangaID, userID int64, rentedAt, expiresAt time.Time) error {
	if m.renterErr != nil {
		return m.renterErr
	}
	m.renters = append(m.renters, model.Renter{UserID: userID, RentedAt: rentedAt, ExpiresAt: expiresAt})
	return nil
}

type mockUserRepo struct {
	rented []int64
}

func (m *mockUserRepo) AddRentedManga(ctx context.Context, tx pgx.Tx, userID, mangaID int64, rentedAt, expiresAt time.Time) error {
	m.rented = append(m.rented, mangaID)
	return nil
}

type mockRentalRepo struct {
	inserted  []*model.Rental
	insertErr error
}

func (m *mockRentalRepo) Insert(ctx context.Context, tx pgx.Tx, r *model.Rental) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	r.ID = int64(len(m.inserted) + 1)
	m.inserted = append(m.inserted, r)
	return nil
}
func (m *mockRentalRepo) ListByUser(ctx context.Context, userID int64) ([]Row, error) {
	return nil, nil
}
func (m *mockRentalRepo) ListAll(ctx context.Context) ([]Row, error)          { return nil, nil }
func (m *mockRentalRepo) Delete(ctx context.Context, rentalID int64) error    { return nil }
func (m *mockRentalRepo) DashboardSummary(ctx context.Context) (*Summary, error) {
	return &Summary{}, nil
}
func (m *mockRentalRepo) ReleaseExpiredGrants(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type mockPendingRepo struct {
	created []*model.PendingPayment
}

func (m *mockPendingRepo) Create(ctx context.Context, p *model.PendingPayment) error {
	m.created = append(m.created, p)
	return nil
}

// --- helpers ---

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func rentableManga(price float64) *model.Manga {
	return &model.Manga{
		ID:            7,
		Title:         "One Piece",
		IsRentable:    true,
		RentalDetails: &model.RentalDetails{Price: price, DurationValue: 1, DurationUnit: model.UnitDays},
	}
}

type fixture struct {
	svc     *service
	tx      *fakeTx
	manga   *mockMangaRepo
	users   *mockUserRepo
	rentals *mockRentalRepo
	pending *mockPendingRepo
}

func newFixture(m *model.Manga) *fixture {
	f := &fixture{
		tx:      &fakeTx{},
		manga:   &mockMangaRepo{manga: m},
		users:   &mockUserRepo{},
		rentals: &mockRentalRepo{},
		pending: &mockPendingRepo{},
	}
	f.svc = &service{
		db:         &fakeStore{tx: f.tx},
		rentals:    f.rentals,
		manga:      f.manga,
		users:      f.users,
		pending:    f.pending,
		gateway:    esewa.New("EPAYTEST", "test-secret", "https://gw.example/form"),
		backendURL: "http://localhost:5000",
		now:        func() time.Time { return testNow },
	}
	return f
}

func validReq(method model.PaymentMethod) RentReq {
	return RentReq{
		UserID:        42,
		MangaID:       7,
		DurationValue: 3,
		DurationUnit:  model.UnitDays,
		PaymentMethod: method,
		PhoneNumber:   "9812345678",
		Location:      "Kathmandu",
	}
}

// --- tests ---

func TestRent_InvalidPhone(t *testing.T) {
	f := newFixture(rentableManga(100))

	for _, phone := range []string{"", "12345", "98123456789", "98123456ab"} {
		req := validReq(model.PayCash)
		req.PhoneNumber = phone

		_, err := f.svc.Rent(context.Background(), req)
		require.Error(t, err)
		require.Equal(t, ErrInvalidPhone, Code(err))
	}
	require.Empty(t, f.rentals.inserted)
	require.Empty(t, f.pending.created)
}

func TestRent_InvalidMethod(t *testing.T) {
	f := newFixture(rentableManga(100))
	req := validReq("Paypal")

	_, err := f.svc.Rent(context.Background(), req)
	require.Equal(t, ErrInvalidMethod, Code(err))
	require.Empty(t, f.rentals.inserted)
}

func TestRent_MangaNotFound(t *testing.T) {
	f := newFixture(nil)
	f.manga.byIDErr = mangarepo.ErrNotFound

	_, err := f.svc.Rent(context.Background(), validReq(model.PayCash))
	require.Equal(t, ErrNotFound, Code(err))
	require.Empty(t, f.rentals.inserted)
}

func TestRent_NotRentable(t *testing.T) {
	m := rentableManga(100)
	m.IsRentable = false
	f := newFixture(m)

	_, err := f.svc.Rent(context.Background(), validReq(model.PayCash))
	require.Equal(t, ErrNotRentable, Code(err))
	require.Empty(t, f.rentals.inserted)
	require.Empty(t, f.pending.created)
}

func TestRent_InvalidDurationUnit(t *testing.T) {
	f := newFixture(rentableManga(100))
	req := validReq(model.PayCash)
	req.DurationUnit = "weeks"

	_, err := f.svc.Rent(context.Background(), req)
	require.Equal(t, ErrInvalidDuration, Code(err))
	require.Empty(t, f.rentals.inserted)
	require.False(t, f.tx.committed)
}

func TestRent_TrustedPath(t *testing.T) {
	f := newFixture(rentableManga(100))

	out, err := f.svc.Rent(context.Background(), validReq(model.PayCash))
	require.NoError(t, err)
	require.Nil(t, out.Gateway)
	require.NotNil(t, out.Rental)

	r := out.Rental
	require.Equal(t, 300.0, r.Price)
	require.Equal(t, testNow, r.RentedAt)
	require.Equal(t, testNow.Add(72*time.Hour), r.ExpiresAt)
	require.Equal(t, model.PayCash, r.PaymentMethod)
	require.NotZero(t, r.ID)

	// grant recorded on all three records, atomically
	require.Len(t, f.rentals.inserted, 1)
	require.Equal(t, []int64{7}, f.users.rented)
	require.Len(t, f.manga.renters, 1)
	require.Equal(t, int64(42), f.manga.renters[0].UserID)
	require.True(t, f.tx.committed)

	// nothing pending for a trusted method
	require.Empty(t, f.pending.created)
}

func TestRent_TrustedPath_KhaltiAndCard(t *testing.T) {
	for _, method := range []model.PaymentMethod{model.PayKhalti, model.PayCard} {
		f := newFixture(rentableManga(50))
		out, err := f.svc.Rent(context.Background(), validReq(method))
		require.NoError(t, err)
		require.Equal(t, method, out.Rental.PaymentMethod)
	}
}

func TestRent_GatewayPath(t *testing.T) {
	f := newFixture(rentableManga(240))
	req := validReq(model.PayEsewa)
	req.DurationValue = 6
	req.DurationUnit = model.UnitHours

	out, err := f.svc.Rent(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, out.Rental)
	require.NotNil(t, out.Gateway)

	// no rental yet; only the pending record
	require.Empty(t, f.rentals.inserted)
	require.Len(t, f.pending.created, 1)

	p := f.pending.created[0]
	require.Equal(t, 60.0, p.Price)
	require.Equal(t, model.PendingOpen, p.Status)
	require.Equal(t, testNow.Add(6*time.Hour), p.ExpiresAt)
	require.NotEmpty(t, p.TransactionUUID)

	v := out.Gateway.Values
	require.Equal(t, "https://gw.example/form", out.Gateway.Action)
	require.Equal(t, "60", v["total_amount"])
	require.Equal(t, p.TransactionUUID, v["transaction_uuid"])
	require.Equal(t, "EPAYTEST", v["product_code"])
	require.Equal(t, p.Signature, v["signature"])
	require.Contains(t, v["success_url"], "/api/payment/esewa-success?txn="+p.TransactionUUID)
	require.Contains(t, v["failure_url"], "/api/payment/esewa-failure?txn="+p.TransactionUUID)
	require.True(t, strings.HasPrefix(v["success_url"], "http://localhost:5000"))
}

func TestRent_DefaultPriceWhenUnset(t *testing.T) {
	m := rentableManga(0)
	m.RentalDetails = nil
	f := newFixture(m)

	out, err := f.svc.Rent(context.Background(), validReq(model.PayCash))
	require.NoError(t, err)
	require.Equal(t, 0.0, out.Rental.Price)
}

func TestRent_InsertFailureRollsBack(t *testing.T) {
	f := newFixture(rentableManga(100))
	f.rentals.insertErr = errors.New("db down")

	_, err := f.svc.Rent(context.Background(), validReq(model.PayCash))
	require.Error(t, err)
	require.Equal(t, ErrCode(""), Code(err))
	require.True(t, f.tx.rolledBack)
	require.False(t, f.tx.committed)
}

func TestRent_CrossRefFailureRollsBack(t *testing.T) {
	f := newFixture(rentableManga(100))
	f.manga.renterErr = errors.New("db down")

	_, err := f.svc.Rent(context.Background(), validReq(model.PayCash))
	require.Error(t, err)
	require.True(t, f.tx.rolledBack)
	require.False(t, f.tx.committed)
}

// repository/rental/rentalRepository.go
package rentalrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SiddharthPaudel/MangaZone-Backend/model"
	"github.com/SiddharthPaudel/MangaZone-Backend/util/database"
)

var ErrNotFound = errors.New("rental not found")

// MangaSummary is the populated manga shape embedded in rental listings.
type MangaSummary struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	CoverImage string `json:"cover_image"`
}

type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Row struct {
	model.Rental
	Manga MangaSummary `json:"manga"`
	User  *UserSummary `json:"user,omitempty"`
}

type TopRented struct {
	MangaID int64  `json:"manga_id"`
	Name    string `json:"name"`
	Rented  int64  `json:"rented"`
}

type Summary struct {
	TotalUsers  int64       `json:"total_users"`
	TotalManga  int64       `json:"total_manga"`
	TotalRents  int64       `json:"total_rents"`
	TopRented   []TopRented `json:"top_rented"`
}

type Repo interface {
	// Insert writes the rental inside the grant transaction and fills ID.
	Insert(ctx context.Context, tx pgx.Tx, r *model.Rental) error

	ListByUser(ctx context.Context, userID int64) ([]Row, error)
	ListAll(ctx context.Context) ([]Row, error)
	Delete(ctx context.Context, rentalID int64) error

	DashboardSummary(ctx context.Context) (*Summary, error)

	// ReleaseExpiredGrants prunes cross-reference rows whose expiry has
	// passed. The rental records themselves are history and stay.
	ReleaseExpiredGrants(ctx context.Context, now time.Time) (int64, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, tx pgx.Tx, m *model.Rental) error {
	var loc *string
	if m.Location != "" {
		loc = &m.Location
	}
	return tx.QueryRow(ctx, `
		INSERT INTO rentals (user_id, manga_id, rented_at, expires_at, price,
			payment_method, phone_number, location)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`,
		m.UserID, m.MangaID, m.RentedAt, m.ExpiresAt, m.Price,
		string(m.PaymentMethod), m.PhoneNumber, loc,
	).Scan(&m.ID)
}

const rentalCols = `r.id, r.user_id, r.manga_id, r.rented_at, r.expires_at, r.price,
	r.payment_method, r.phone_number, COALESCE(r.location, ''),
	m.id, m.title, m.author, m.cover_image`

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]Row, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+rentalCols+`
		FROM rentals r
		JOIN manga m ON m.id = r.manga_id
		WHERE r.user_id = $1
		ORDER BY r.rented_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(
			&row.ID, &row.UserID, &row.MangaID, &row.RentedAt, &row.ExpiresAt, &row.Price,
			&row.PaymentMethod, &row.PhoneNumber, &row.Location,
			&row.Manga.ID, &row.Manga.Title, &row.Manga.Author, &row.Manga.CoverImage,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repo) ListAll(ctx context.Context) ([]Row, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+rentalCols+`, u.id, u.name, u.email
		FROM rentals r
		JOIN manga m ON m.id = r.manga_id
		JOIN users u ON u.id = r.user_id
		ORDER BY r.rented_at DESC, r.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		var u UserSummary
		if err := rows.Scan(
			&row.ID, &row.UserID, &row.MangaID, &row.RentedAt, &row.ExpiresAt, &row.Price,
			&row.PaymentMethod, &row.PhoneNumber, &row.Location,
			&row.Manga.ID, &row.Manga.Title, &row.Manga.Author, &row.Manga.CoverImage,
			&u.ID, &u.Name, &u.Email,
		); err != nil {
			return nil, err
		}
		row.User = &u
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repo) Delete(ctx context.Context, rentalID int64) error {
	ct, err := r.db.Pool.Exec(ctx, `DELETE FROM rentals WHERE id=$1`, rentalID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) DashboardSummary(ctx context.Context) (*Summary, error) {
	s := &Summary{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM manga),
			(SELECT COUNT(*) FROM rentals)`,
	).Scan(&s.TotalUsers, &s.TotalManga, &s.TotalRents)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT r.manga_id, m.title, COUNT(*) AS rented
		FROM rentals r
		JOIN manga m ON m.id = r.manga_id
		GROUP BY r.manga_id, m.title
		ORDER BY rented DESC
		LIMIT 5`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t TopRented
		if err := rows.Scan(&t.MangaID, &t.Name, &t.Rented); err != nil {
			return nil, err
		}
		s.TopRented = append(s.TopRented, t)
	}
	return s, rows.Err()
}

func (r *repo) ReleaseExpiredGrants(ctx context.Context, now time.Time) (int64, error) {
	ct, err := r.db.Pool.Exec(ctx, `
		DELETE FROM manga_renters WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	n := ct.RowsAffected()
	ct, err = r.db.Pool.Exec(ctx, `
		DELETE FROM user_rented_manga WHERE expires_at <= $1`, now)
	if err != nil {
		return n, err
	}
	return n + ct.RowsAffected(), nil
}

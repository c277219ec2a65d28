package mangarepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SiddharthPaudel/MangaZone-Backend/model"
	"github.com/SiddharthPaudel/MangaZone-Backend/util/database"
)

var ErrNotFound = errors.New("manga not found")

// UpdateFields carries the nullable update set for a manga; nil means
// leave the column unchanged. RentalDetails set with Clear semantics:
// ClearRental nulls the rental columns regardless of RentalDetails.
type UpdateFields struct {
	Title         *string
	Author        *string
	Description   *string
	Genre         []string
	CoverImage    *string
	IsRentable    *bool
	RentalDetails *model.RentalDetails
	ClearRental   bool
}

type Repo interface {
	Create(ctx context.Context, m *model.Manga) error
	Update(ctx context.Context, id int64, f UpdateFields) (*model.Manga, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Manga, error)
	ByID(ctx context.Context, id int64) (*model.Manga, error)
	TopRated(ctx context.Context, limit int) ([]model.Manga, error)

	AddChapter(ctx context.Context, ch *model.Chapter) error
	Chapters(ctx context.Context, mangaID int64) ([]model.Chapter, error)

	AddComment(ctx context.Context, c *model.Comment) error
	Comments(ctx context.Context, mangaID int64) ([]model.Comment, error)
	DeleteComment(ctx context.Context, mangaID, commentID int64, userID *int64) (bool, error)

	UpsertRating(ctx context.Context, rt *model.Rating) error
	Ratings(ctx context.Context, mangaID int64) ([]model.Rating, error)
	DeleteRating(ctx context.Context, mangaID, userID int64) (bool, error)

	AddBookmark(ctx context.Context, mangaID, userID int64) error
	RemoveBookmark(ctx context.Context, mangaID, userID int64) error
	BookmarkedBy(ctx context.Context, userID int64) ([]model.Manga, error)
	Bookmarks(ctx context.Context, mangaID int64) ([]int64, error)

	// AddRenter records the rentedBy cross-reference inside the
	// rental-grant transaction. Add-to-set semantics.
	AddRenter(ctx context.Context, tx pgx.Tx, mangaID, userID int64, rentedAt, expiresAt time.Time) error
	Renters(ctx context.Context, mangaID int64) ([]model.Renter, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const mangaCols = `m.id, m.title, m.author, m.genre, m.description, m.cover_image,
	m.is_rentable, m.rental_price, m.rental_duration_value, m.rental_duration_unit, m.created_at`

func (r *repo) Create(ctx context.Context, m *model.Manga) error {
	var price *float64
	var durVal *int
	var durUnit *string
	if m.RentalDetails != nil {
		price = &m.RentalDetails.Price
		durVal = &m.RentalDetails.DurationValue
		u := string(m.RentalDetails.DurationUnit)
		durUnit = &u
	}
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO manga (title, author, genre, description, cover_image,
			is_rentable, rental_price, rental_duration_value, rental_duration_unit)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at`,
		m.Title, m.Author, m.Genre, m.Description, m.CoverImage,
		m.IsRentable, price, durVal, durUnit,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *repo) Update(ctx context.Context, id int64, f UpdateFields) (*model.Manga, error) {
	var price *float64
	var durVal *int
	var durUnit *string
	if f.RentalDetails != nil {
		price = &f.RentalDetails.Price
		durVal = &f.RentalDetails.DurationValue
		u := string(f.RentalDetails.DurationUnit)
		durUnit = &u
	}
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE manga
		SET title       = COALESCE($2, title),
		    author      = COALESCE($3, author),
		    description = COALESCE($4, description),
		    genre       = COALESCE($5, genre),
		    cover_image = COALESCE($6, cover_image),
		    is_rentable = COALESCE($7, is_rentable),
		    rental_price          = CASE WHEN $11 THEN NULL ELSE COALESCE($8, rental_price) END,
		    rental_duration_value = CASE WHEN $11 THEN NULL ELSE COALESCE($9, rental_duration_value) END,
		    rental_duration_unit  = CASE WHEN $11 THEN NULL ELSE COALESCE($10, rental_duration_unit) END
		WHERE id = $1
		RETURNING id, title, author, genre, description, cover_image,
			is_rentable, rental_price, rental_duration_value, rental_duration_unit, created_at`,
		id, f.Title, f.Author, f.Description, f.Genre, f.CoverImage,
		f.IsRentable, price, durVal, durUnit, f.ClearRental,
	)
	m, err := scanManga(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Pool.Exec(ctx, `DELETE FROM manga WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanManga(row rowScanner) (*model.Manga, error) {
	m := &model.Manga{}
	var price *float64
	var durVal *int
	var durUnit *string
	if err := row.Scan(
		&m.ID, &m.Title, &m.Author, &m.Genre, &m.Description, &m.CoverImage,
		&m.IsRentable, &price, &durVal, &durUnit, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	if price != nil {
		d := &model.RentalDetails{Price: *price}
		if durVal != nil {
			d.DurationValue = *durVal
		}
		if durUnit != nil {
			d.DurationUnit = model.DurationUnit(*durUnit)
		}
		m.RentalDetails = d
	}
	return m, nil
}

func (r *repo) List(ctx context.Context) ([]model.Manga, error) {
	return r.listQuery(ctx, `
		SELECT `+mangaCols+`
		FROM manga m
		ORDER BY m.id DESC`)
}

func (r *repo) listQuery(ctx context.Context, q string, args ...any) ([]model.Manga, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Manga
	for rows.Next() {
		m, err := scanManga(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Manga, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+mangaCols+` FROM manga m WHERE m.id=$1`, id)
	m, err := scanManga(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *repo) TopRated(ctx context.Context, limit int) ([]model.Manga, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+mangaCols+`, COALESCE(AVG(rt.rating), 0) AS avg_rating
		FROM manga m
		LEFT JOIN manga_ratings rt ON rt.manga_id = m.id
		GROUP BY m.id
		ORDER BY avg_rating DESC, m.id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Manga
	for rows.Next() {
		m := model.Manga{}
		var price *float64
		var durVal *int
		var durUnit *string
		if err := rows.Scan(
			&m.ID, &m.Title, &m.Author, &m.Genre, &m.Description, &m.CoverImage,
			&m.IsRentable, &price, &durVal, &durUnit, &m.CreatedAt, &m.AvgRating,
		); err != nil {
			return nil, err
		}
		if price != nil {
			m.RentalDetails = &model.RentalDetails{Price: *price}
			if durVal != nil {
				m.RentalDetails.DurationValue = *durVal
			}
			if durUnit != nil {
				m.RentalDetails.DurationUnit = model.DurationUnit(*durUnit)
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Chapters

func (r *repo) AddChapter(ctx context.Context, ch *model.Chapter) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO chapters (manga_id, title, image_urls)
		VALUES ($1,$2,$3)
		RETURNING id, created_at`,
		ch.MangaID, ch.Title, ch.ImageURLs,
	).Scan(&ch.ID, &ch.CreatedAt)
}

func (r *repo) Chapters(ctx context.Context, mangaID int64) ([]model.Chapter, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, manga_id, title, image_urls, created_at
		FROM chapters
		WHERE manga_id=$1
		ORDER BY id`, mangaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Chapter
	for rows.Next() {
		var ch model.Chapter
		if err := rows.Scan(&ch.ID, &ch.MangaID, &ch.Title, &ch.ImageURLs, &ch.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// Comments

func (r *repo) AddComment(ctx context.Context, c *model.Comment) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO manga_comments (manga_id, user_id, username, avatar, body)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`,
		c.MangaID, c.UserID, c.Username, c.Avatar, c.Text,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *repo) Comments(ctx context.Context, mangaID int64) ([]model.Comment, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, manga_id, user_id, username, avatar, body, created_at
		FROM manga_comments
		WHERE manga_id=$1
		ORDER BY id`, mangaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.MangaID, &c.UserID, &c.Username, &c.Avatar, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteComment removes one comment. When userID is non-nil the delete is
// restricted to that author's comment.
func (r *repo) DeleteComment(ctx context.Context, mangaID, commentID int64, userID *int64) (bool, error) {
	ct, err := r.db.Pool.Exec(ctx, `
		DELETE FROM manga_comments
		WHERE id=$1 AND manga_id=$2 AND ($3::BIGINT IS NULL OR user_id=$3)`,
		commentID, mangaID, userID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// Ratings

func (r *repo) UpsertRating(ctx context.Context, rt *model.Rating) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO manga_ratings (manga_id, user_id, rating, review, avatar)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (manga_id, user_id) DO UPDATE
		SET rating = EXCLUDED.rating, review = EXCLUDED.review, avatar = EXCLUDED.avatar
		RETURNING created_at`,
		rt.MangaID, rt.UserID, rt.Rating, rt.Review, rt.Avatar,
	).Scan(&rt.CreatedAt)
}

func (r *repo) Ratings(ctx context.Context, mangaID int64) ([]model.Rating, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT rt.manga_id, rt.user_id, u.name, rt.rating, rt.review, rt.avatar, rt.created_at
		FROM manga_ratings rt
		JOIN users u ON u.id = rt.user_id
		WHERE rt.manga_id=$1
		ORDER BY rt.created_at DESC`, mangaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Rating
	for rows.Next() {
		var rt model.Rating
		if err := rows.Scan(&rt.MangaID, &rt.UserID, &rt.Username, &rt.Rating, &rt.Review, &rt.Avatar, &rt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *repo) DeleteRating(ctx context.Context, mangaID, userID int64) (bool, error) {
	ct, err := r.db.Pool.Exec(ctx, `
		DELETE FROM manga_ratings WHERE manga_id=$1 AND user_id=$2`,
		mangaID, userID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// Bookmarks

func (r *repo) AddBookmark(ctx context.Context, mangaID, userID int64) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO bookmarks (manga_id, user_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING`, mangaID, userID)
	return err
}

func (r *repo) RemoveBookmark(ctx context.Context, mangaID, userID int64) error {
	_, err := r.db.Pool.Exec(ctx, `
		DELETE FROM bookmarks WHERE manga_id=$1 AND user_id=$2`, mangaID, userID)
	return err
}

func (r *repo) BookmarkedBy(ctx context.Context, userID int64) ([]model.Manga, error) {
	return r.listQuery(ctx, `
		SELECT `+mangaCols+`
		FROM manga m
		JOIN bookmarks b ON b.manga_id = m.id
		WHERE b.user_id = $1
		ORDER BY m.id DESC`, userID)
}

func (r *repo) Bookmarks(ctx context.Context, mangaID int64) ([]int64, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT user_id FROM bookmarks WHERE manga_id=$1 ORDER BY user_id`, mangaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Renters

func (r *repo) AddRenter(ctx context.Context, tx pgx.Tx, mangaID, userID int64, rentedAt, expiresAt time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO manga_renters (manga_id, user_id, rented_at, expires_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (manga_id, user_id) DO UPDATE
		SET rented_at = EXCLUDED.rented_at, expires_at = EXCLUDED.expires_at`,
		mangaID, userID, rentedAt, expiresAt)
	return err
}

func (r *repo) Renters(ctx context.Context, mangaID int64) ([]model.Renter, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT user_id, rented_at, expires_at
		FROM manga_renters
		WHERE manga_id=$1
		ORDER BY rented_at DESC`, mangaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Renter
	for rows.Next() {
		var rn model.Renter
		if err := rows.Scan(&rn.UserID, &rn.RentedAt, &rn.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, rn)
	}
	return out, rows.Err()
}

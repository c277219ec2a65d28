package userrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SiddharthPaudel/MangaZone-Backend/model"
	"github.com/SiddharthPaudel/MangaZone-Backend/util/database"
)

var ErrNotFound = errors.New("user not found")

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id int64, name, email *string, avatar *int) (*model.User, error)

	SetResetToken(ctx context.Context, userID int64, token string, expires time.Time) error
	ByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error

	// AddRentedManga records the rentedManga cross-reference inside the
	// rental-grant transaction. Add-to-set semantics.
	AddRentedManga(ctx context.Context, tx pgx.Tx, userID, mangaID int64, rentedAt, expiresAt time.Time) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const userCols = `id, name, email, password_hash, role, avatar, reset_token, reset_token_expires_at, created_at`

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO users(name, email, password_hash, role, avatar)
		VALUES ($1, lower($2), $3, $4, $5)
		RETURNING id, created_at`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.Avatar,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.one(ctx, `SELECT `+userCols+` FROM users WHERE lower(email)=lower($1)`, email)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return r.one(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id)
}

func (r *repo) one(ctx context.Context, q string, arg any) (*model.User, error) {
	u := &model.User{}
	err := r.db.Pool.QueryRow(ctx, q, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Avatar,
		&u.ResetToken, &u.ResetExpires, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+userCols+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Avatar,
			&u.ResetToken, &u.ResetExpires, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repo) Update(ctx context.Context, id int64, name, email *string, avatar *int) (*model.User, error) {
	u := &model.User{}
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE users
		SET name   = COALESCE($2, name),
		    email  = COALESCE(lower($3), email),
		    avatar = COALESCE($4, avatar)
		WHERE id = $1
		RETURNING `+userCols,
		id, name, email, avatar,
	).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Avatar,
		&u.ResetToken, &u.ResetExpires, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) SetResetToken(ctx context.Context, userID int64, token string, expires time.Time) error {
	ct, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET reset_token=$2, reset_token_expires_at=$3 WHERE id=$1`,
		userID, token, expires)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) ByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	u := &model.User{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT `+userCols+`
		FROM users
		WHERE reset_token=$1 AND reset_token_expires_at > $2`,
		token, now,
	).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Avatar,
		&u.ResetToken, &u.ResetExpires, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	ct, err := r.db.Pool.Exec(ctx, `
		UPDATE users
		SET password_hash=$2, reset_token=NULL, reset_token_expires_at=NULL
		WHERE id=$1`,
		userID, passwordHash)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) AddRentedManga(ctx context.Context, tx pgx.Tx, userID, mangaID int64, rentedAt, expiresAt time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO user_rented_manga (user_id, manga_id, rented_at, expires_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id, manga_id) DO UPDATE
		SET rented_at = EXCLUDED.rented_at, expires_at = EXCLUDED.expires_at`,
		userID, mangaID, rentedAt, expiresAt)
	return err
}

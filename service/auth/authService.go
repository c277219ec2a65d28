package authsvc

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/SiddharthPaudel/MangaZone-Backend/model"
	userrepo "github.com/SiddharthPaudel/MangaZone-Backend/repository/user"
	"github.com/SiddharthPaudel/MangaZone-Backend/util/hash"
	jwtutil "github.com/SiddharthPaudel/MangaZone-Backend/util/jwt"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrInvalidCreds = errors.New("invalid credentials")
	ErrNotFound     = errors.New("user not found")
	ErrBadAvatar    = errors.New("invalid avatar selection")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNoFields     = errors.New("no valid fields to update")
)

const tokenTTL = 2 * time.Hour
const resetTTL = time.Hour

type UpdateReq struct {
	Name   *string
	Email  *string
	Avatar *int
}

type Service interface {
	Signup(ctx context.Context, req model.SignupReq) (*model.User, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
	Update(ctx context.Context, userID int64, req UpdateReq) (*model.User, error)
	Profile(ctx context.Context, userID int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	// ForgotPassword issues a reset token valid for one hour. Delivering
	// the token to the user is outside this service.
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type service struct {
	ur     userrepo.Repo
	secret string
}

func New(ur userrepo.Repo, secret string) Service { return &service{ur: ur, secret: secret} }

func (s *service) Signup(ctx context.Context, req model.SignupReq) (*model.User, error) {
	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hashed,
		Role:         "user",
		Avatar:       1,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	u, err := s.ur.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", ErrInvalidCreds
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCreds
	}
	token, err := jwtutil.Issue(s.secret, u.ID, u.Role, tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Update(ctx context.Context, userID int64, req UpdateReq) (*model.User, error) {
	if req.Avatar != nil && (*req.Avatar < 1 || *req.Avatar > 6) {
		return nil, ErrBadAvatar
	}
	if req.Name == nil && req.Email == nil && req.Avatar == nil {
		return nil, ErrNoFields
	}
	u, err := s.ur.Update(ctx, userID, req.Name, req.Email, req.Avatar)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *service) Profile(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.ur.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.ur.List(ctx)
}

func (s *service) ForgotPassword(ctx context.Context, email string) (string, error) {
	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	if err := s.ur.SetResetToken(ctx, u.ID, token, time.Now().Add(resetTTL)); err != nil {
		return "", err
	}
	return token, nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	u, err := s.ur.ByResetToken(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	hashed, err := hash.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.ur.UpdatePassword(ctx, u.ID, hashed)
}

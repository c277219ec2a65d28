package authsvc

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/SiddharthPaudel/MangaZone-Backend/model"
	userrepo "github.com/SiddharthPaudel/MangaZone-Backend/repository/user"
	"github.com/SiddharthPaudel/MangaZone-Backend/util/hash"
)

type mockUserRepo struct {
	users     map[string]*model.User // by lower email
	createErr error

	resetToken   string
	resetExpires time.Time
	newHash      string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*model.User{}}
}

func (m *mockUserRepo) add(u *model.User) { m.users[u.Email] = u }

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.users[u.Email]; ok {
		return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	}
	u.ID = int64(len(m.users) + 1)
	u.CreatedAt = time.Now()
	m.users[u.Email] = u
	return nil
}

func (m *mockUserRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, userrepo.ErrNotFound
}

func (m *mockUserRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, userrepo.ErrNotFound
}

func (m *mockUserRepo) List(ctx context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepo) Update(ctx context.Context, id int64, name, email *string, avatar *int) (*model.User, error) {
	u, err := m.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		u.Name = *name
	}
	if email != nil {
		u.Email = *email
	}
	if avatar != nil {
		u.Avatar = *avatar
	}
	return u, nil
}

func (m *mockUserRepo) SetResetToken(ctx context.Context, userID int64, token string, expires time.Time) error {
	m.resetToken = token
	m.resetExpires = expires
	return nil
}

func (m *mockUserRepo) ByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	if token == m.resetToken && token != "" && now.Before(m.resetExpires) {
		for _, u := range m.users {
			return u, nil
		}
	}
	return nil, userrepo.ErrNotFound
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	m.newHash = passwordHash
	return nil
}

func (m *mockUserRepo) AddRentedManga(ctx context.Context, tx pgx.Tx, userID, mangaID int64, rentedAt, expiresAt time.Time) error {
	return nil
}

const testSecret = "unit-test-secret"

func seededUser(t *testing.T, m *mockUserRepo, email, password string) *model.User {
	t.Helper()
	hashed, err := hash.HashPassword(password)
	require.NoError(t, err)
	u := &model.User{ID: 1, Name: "Asha", Email: email, PasswordHash: hashed, Role: "user", Avatar: 2}
	m.add(u)
	return u
}

func TestSignup(t *testing.T) {
	m := newMockUserRepo()
	svc := New(m, testSecret)

	u, err := svc.Signup(context.Background(), model.SignupReq{
		Name: "Asha", Email: "  Asha@Example.COM ", Password: "hunter22",
	})
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", u.Email)
	require.Equal(t, "user", u.Role)
	require.Equal(t, 1, u.Avatar)
	require.NotEqual(t, "hunter22", u.PasswordHash)
	require.True(t, hash.Check(u.PasswordHash, "hunter22"))
}

func TestSignup_EmailTaken(t *testing.T) {
	m := newMockUserRepo()
	seededUser(t, m, "asha@example.com", "hunter22")
	svc := New(m, testSecret)

	_, err := svc.Signup(context.Background(), model.SignupReq{
		Name: "Asha", Email: "asha@example.com", Password: "hunter22",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	m := newMockUserRepo()
	seededUser(t, m, "asha@example.com", "hunter22")
	svc := New(m, testSecret)

	u, token, err := svc.Login(context.Background(), model.LoginReq{
		Email: "asha@example.com", Password: "hunter22",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
	require.NotEmpty(t, token)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, claims["sub"])
	require.Equal(t, "user", claims["role"])
}

func TestLogin_WrongPassword(t *testing.T) {
	m := newMockUserRepo()
	seededUser(t, m, "asha@example.com", "hunter22")
	svc := New(m, testSecret)

	_, _, err := svc.Login(context.Background(), model.LoginReq{
		Email: "asha@example.com", Password: "wrong",
	})
	require.ErrorIs(t, err, ErrInvalidCreds)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := New(newMockUserRepo(), testSecret)

	_, _, err := svc.Login(context.Background(), model.LoginReq{
		Email: "nobody@example.com", Password: "whatever",
	})
	require.ErrorIs(t, err, ErrInvalidCreds)
}

func TestUpdate(t *testing.T) {
	m := newMockUserRepo()
	seededUser(t, m, "asha@example.com", "hunter22")
	svc := New(m, testSecret)

	name := "Asha R."
	avatar := 5
	u, err := svc.Update(context.Background(), 1, UpdateReq{Name: &name, Avatar: &avatar})
	require.NoError(t, err)
	require.Equal(t, "Asha R.", u.Name)
	require.Equal(t, 5, u.Avatar)
}

func TestUpdate_BadAvatar(t *testing.T) {
	svc := New(newMockUserRepo(), testSecret)

	for _, avatar := range []int{0, 7, -1} {
		a := avatar
		_, err := svc.Update(context.Background(), 1, UpdateReq{Avatar: &a})
		require.ErrorIs(t, err, ErrBadAvatar)
	}
}

func TestUpdate_NoFields(t *testing.T) {
	svc := New(newMockUserRepo(), testSecret)

	_, err := svc.Update(context.Background(), 1, UpdateReq{})
	require.ErrorIs(t, err, ErrNoFields)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := New(newMockUserRepo(), testSecret)

	name := "ghost"
	_, err := svc.Update(context.Background(), 99, UpdateReq{Name: &name})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestForgotAndResetPassword(t *testing.T) {
	m := newMockUserRepo()
	seededUser(t, m, "asha@example.com", "hunter22")
	svc := New(m, testSecret)

	token, err := svc.ForgotPassword(context.Background(), "asha@example.com")
	require.NoError(t, err)
	require.Len(t, token, 64) // 32 random bytes, hex-encoded
	require.Equal(t, token, m.resetToken)
	require.True(t, m.resetExpires.After(time.Now()))

	err = svc.ResetPassword(context.Background(), token, "newpass99")
	require.NoError(t, err)
	require.True(t, hash.Check(m.newHash, "newpass99"))
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	svc := New(newMockUserRepo(), testSecret)

	_, err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResetPassword_BadToken(t *testing.T) {
	m := newMockUserRepo()
	seededUser(t, m, "asha@example.com", "hunter22")
	svc := New(m, testSecret)

	err := svc.ResetPassword(context.Background(), "bogus", "newpass99")
	require.ErrorIs(t, err, ErrInvalidToken)
}

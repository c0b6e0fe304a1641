package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:             "secretKey",
		TokenValidityDuration: 60 * time.Second,
		PasswordScheme:        config.SchemeBcrypt,
		BcryptCost:            4,
	}
}

func newTestService(t *testing.T, repo users.Repository) (*UserService, *auth.TokenCodec) {
	t.Helper()
	cfg := testConfig()
	h, err := auth.NewPasswordHasher(cfg)
	require.NoError(t, err)
	codec := auth.NewTokenCodec(cfg)
	return NewUserService(repo, h, codec), codec
}

func register(t *testing.T, s *UserService, email, name, pw string) *common.AuthResult {
	t.Helper()
	res, err := s.Register(context.Background(), common.RegisterRequest{Email: email, Name: name, Password: pw})
	require.NoError(t, err)
	return res
}

func requireStatus(t *testing.T, err error, status int, msg string) {
	t.Helper()
	require.Error(t, err)
	se := common.ToStatusError(err)
	assert.Equal(t, status, se.Status)
	assert.Equal(t, msg, se.Message)
}

type fakeRepo struct {
	findOut *models.User
	findErr error

	createOut *models.User
	createErr error

	createCalls int
}

func (f *fakeRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.findOut, f.findErr
}

func (f *fakeRepo) CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return &models.User{ID: "id-1", Email: email, Name: name, PasswordHash: passwordHash}, nil
}

type countingHasher struct {
	Hasher
	verifies atomic.Int32
}

func (c *countingHasher) Verify(password, digest string) bool {
	c.verifies.Add(1)
	return c.Hasher.Verify(password, digest)
}

type brokenHasher struct {
	digests []string
}

func (b *brokenHasher) Hash(string) (string, error) { return "", errors.New("hash failed") }

func (b *brokenHasher) Verify(_, digest string) bool {
	b.digests = append(b.digests, digest)
	return false
}

type failingCodec struct{ TokenCodec }

func (failingCodec) Sign(models.Claim) (string, error) { return "", errors.New("sign failed") }

// --- register ---

func TestRegister_ReturnsUserAndToken(t *testing.T) {
	repo := users.NewMemoryRepository()
	s, codec := newTestService(t, repo)

	res := register(t, s, "a@x.com", "A", "pw1")

	assert.NotEmpty(t, res.User.ID)
	assert.Equal(t, "a@x.com", res.User.Email)
	assert.Equal(t, "A", res.User.Name)

	claim, err := codec.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User, claim.Public())

	stored, err := repo.FindUserByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", stored.PasswordHash)
	assert.Equal(t, res.User.ID, stored.ID)
}

func TestRegister_ResultHasNoPassword(t *testing.T) {
	s, _ := newTestService(t, users.NewMemoryRepository())
	res := register(t, s, "a@x.com", "A", "pw1")

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, strings.ToLower(string(raw)), "password")
	assert.NotContains(t, string(raw), "$2")
}

func TestRegister_Duplicate(t *testing.T) {
	s, _ := newTestService(t, users.NewMemoryRepository())
	register(t, s, "a@x.com", "A", "pw1")

	_, err := s.Register(context.Background(), common.RegisterRequest{Email: "a@x.com", Name: "B", Password: "pw2"})
	require.ErrorIs(t, err, common.ErrDuplicateUser)
	requireStatus(t, err, http.StatusBadRequest, "User already exists")
}

func TestRegister_LongPassword(t *testing.T) {
	s, _ := newTestService(t, users.NewMemoryRepository())
	long := strings.Repeat("p", 73)

	reg := register(t, s, "long@x.com", "L", long)

	res, err := s.Login(context.Background(), common.LoginRequest{Email: "long@x.com", Password: long})
	require.NoError(t, err)
	assert.Equal(t, reg.User, res.User)

	_, err = s.Login(context.Background(), common.LoginRequest{Email: "long@x.com", Password: strings.Repeat("p", 72) + "q"})
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	s, _ := newTestService(t, users.NewMemoryRepository())

	const n = 8
	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Register(context.Background(), common.RegisterRequest{Email: "race@x.com", Name: "R", Password: "pw"})
			if err == nil {
				ok.Add(1)
				return
			}
			assert.ErrorIs(t, err, common.ErrDuplicateUser)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
}

func TestRegister_CreateRaceMapsToDuplicate(t *testing.T) {
	repo := &fakeRepo{findErr: common.ErrorNotFound, createErr: common.ErrDuplicateUser}
	s, _ := newTestService(t, repo)

	_, err := s.Register(context.Background(), common.RegisterRequest{Email: "a@x.com", Name: "A", Password: "pw"})
	require.ErrorIs(t, err, common.ErrDuplicateUser)
}

func TestRegister_StoreFailureIsInternal(t *testing.T) {
	tests := []struct {
		name string
		repo *fakeRepo
	}{
		{"lookup", &fakeRepo{findErr: errors.New("connection refused")}},
		{"create", &fakeRepo{findErr: common.ErrorNotFound, createErr: errors.New("connection refused")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestService(t, tt.repo)

			_, err := s.Register(context.Background(), common.RegisterRequest{Email: "a@x.com", Name: "A", Password: "pw"})
			require.ErrorIs(t, err, common.ErrorInternal)
			requireStatus(t, err, http.StatusBadRequest, "connection refused")
		})
	}
}

func TestRegister_SignFailureKeepsUser(t *testing.T) {
	repo := &fakeRepo{findErr: common.ErrorNotFound}
	cfg := testConfig()
	h, err := auth.NewPasswordHasher(cfg)
	require.NoError(t, err)
	s := NewUserService(repo, h, failingCodec{auth.NewTokenCodec(cfg)})

	_, err = s.Register(context.Background(), common.RegisterRequest{Email: "a@x.com", Name: "A", Password: "pw"})
	require.ErrorIs(t, err, common.ErrorInternal)
	assert.Equal(t, 1, repo.createCalls)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  common.RegisterRequest
		want string
	}{
		{"bad email", common.RegisterRequest{Email: "not-an-email", Name: "A", Password: "pw"}, "email must be an email"},
		{"no name", common.RegisterRequest{Email: "a@x.com", Password: "pw"}, "name is required"},
		{"no password", common.RegisterRequest{Email: "a@x.com", Name: "A"}, "password is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{findErr: common.ErrorNotFound}
			s, _ := newTestService(t, repo)

			_, err := s.Register(context.Background(), tt.req)
			require.ErrorIs(t, err, common.ErrValidation)
			requireStatus(t, err, http.StatusBadRequest, tt.want)
			assert.Zero(t, repo.createCalls)
		})
	}
}

// --- login ---

func TestLogin_Success(t *testing.T) {
	s, codec := newTestService(t, users.NewMemoryRepository())
	reg := register(t, s, "a@x.com", "A", "pw1")

	res, err := s.Login(context.Background(), common.LoginRequest{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User, res.User)

	claim, err := codec.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claim.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	s, _ := newTestService(t, users.NewMemoryRepository())
	register(t, s, "a@x.com", "A", "pw1")

	_, err := s.Login(context.Background(), common.LoginRequest{Email: "a@x.com", Password: "wrong"})
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	requireStatus(t, err, http.StatusUnauthorized, "User/Password not valid")
}

func TestLogin_UnknownEmailLooksLikeWrongPassword(t *testing.T) {
	cfg := testConfig()
	inner, err := auth.NewPasswordHasher(cfg)
	require.NoError(t, err)
	h := &countingHasher{Hasher: inner}
	s := NewUserService(users.NewMemoryRepository(), h, auth.NewTokenCodec(cfg))

	_, err = s.Login(context.Background(), common.LoginRequest{Email: "nobody@x.com", Password: "pw"})
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	requireStatus(t, err, http.StatusUnauthorized, "User/Password not valid")
	assert.Equal(t, int32(1), h.verifies.Load())
}

func TestLogin_UnknownEmailWhenHasherFails(t *testing.T) {
	h := &brokenHasher{}
	s := NewUserService(users.NewMemoryRepository(), h, auth.NewTokenCodec(testConfig()))

	_, err := s.Login(context.Background(), common.LoginRequest{Email: "nobody@x.com", Password: "pw"})
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	require.Len(t, h.digests, 1)
	assert.Equal(t, fallbackDummyDigest, h.digests[0])
}

func TestLogin_StoreFailureIsInternal(t *testing.T) {
	s, _ := newTestService(t, &fakeRepo{findErr: errors.New("db down")})

	_, err := s.Login(context.Background(), common.LoginRequest{Email: "a@x.com", Password: "pw"})
	require.ErrorIs(t, err, common.ErrorInternal)
	requireStatus(t, err, http.StatusBadRequest, "db down")
}

func TestLogin_Validation(t *testing.T) {
	s, _ := newTestService(t, users.NewMemoryRepository())

	_, err := s.Login(context.Background(), common.LoginRequest{Email: "a@x.com"})
	require.ErrorIs(t, err, common.ErrValidation)
	requireStatus(t, err, http.StatusBadRequest, "password is required")
}

// --- verify token ---

func TestVerifyToken_ReturnsFreshToken(t *testing.T) {
	s, _ := newTestService(t, users.NewMemoryRepository())
	reg := register(t, s, "a@x.com", "A", "pw1")

	res, err := s.VerifyToken(context.Background(), common.VerifyTokenRequest{Token: reg.Token})
	require.NoError(t, err)
	assert.Equal(t, reg.User, res.User)
	assert.NotEqual(t, reg.Token, res.Token)

	again, err := s.VerifyToken(context.Background(), common.VerifyTokenRequest{Token: res.Token})
	require.NoError(t, err)
	assert.Equal(t, reg.User, again.User)
}

func TestVerifyToken_DoesNotTouchStore(t *testing.T) {
	repo := &fakeRepo{findErr: errors.New("must not be called")}
	s, codec := newTestService(t, repo)

	tok, err := codec.Sign(models.Claim{ID: "u1", Email: "gone@x.com", Name: "G"})
	require.NoError(t, err)

	res, err := s.VerifyToken(context.Background(), common.VerifyTokenRequest{Token: tok})
	require.NoError(t, err)
	assert.Equal(t, "u1", res.User.ID)
}

func TestVerifyToken_Expired(t *testing.T) {
	repo := users.NewMemoryRepository()
	cfg := testConfig()
	h, err := auth.NewPasswordHasher(cfg)
	require.NoError(t, err)

	past := time.Now().Add(-61 * time.Second)
	old := NewUserService(repo, h, auth.NewTokenCodec(cfg).WithClock(func() time.Time { return past }))
	reg := register(t, old, "a@x.com", "A", "pw1")

	s := NewUserService(repo, h, auth.NewTokenCodec(cfg))
	_, err = s.VerifyToken(context.Background(), common.VerifyTokenRequest{Token: reg.Token})
	require.ErrorIs(t, err, common.ErrTokenExpired)
	requireStatus(t, err, http.StatusUnauthorized, "Token not valid")
}

func TestVerifyToken_Invalid(t *testing.T) {
	s, _ := newTestService(t, users.NewMemoryRepository())

	for _, tok := range []string{"garbage", "a.b.c"} {
		_, err := s.VerifyToken(context.Background(), common.VerifyTokenRequest{Token: tok})
		require.ErrorIs(t, err, common.ErrTokenInvalid, tok)
		requireStatus(t, err, http.StatusUnauthorized, "Token not valid")
	}
}

func TestVerifyToken_Empty(t *testing.T) {
	s, _ := newTestService(t, users.NewMemoryRepository())

	_, err := s.VerifyToken(context.Background(), common.VerifyTokenRequest{})
	require.ErrorIs(t, err, common.ErrTokenInvalid)
	requireStatus(t, err, http.StatusUnauthorized, "Token not valid")
}

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	"github.com/siakad-dev/presensi-kuliah-api/pkg/config"
	appErrors "github.com/siakad-dev/presensi-kuliah-api/pkg/errors"
)

type stubUsers struct {
	byEmail map[string]models.User
	touched []string
}

func (s *stubUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}

func (s *stubUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubUsers) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	s.touched = append(s.touched, id)
	return nil
}

func authFixture(t *testing.T, active bool) (*AuthService, *stubUsers) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia1"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &stubUsers{byEmail: map[string]models.User{
		"andi@kampus.ac.id": {
			ID:           "user-1",
			Email:        "andi@kampus.ac.id",
			PasswordHash: string(hash),
			Name:         "Andi",
			Role:         models.RoleMahasiswa,
			MemberID:     "210001",
			Kelas:        "TI-1A",
			Active:       active,
		},
	}}
	cfg := config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "presensi-kuliah-api"}
	return NewAuthService(users, cfg, nil, nil), users
}

func TestLoginIssuesTokenWithClaims(t *testing.T) {
	svc, users := authFixture(t, true)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "andi@kampus.ac.id", Password: "rahasia1"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, []string{"user-1"}, users.touched)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleMahasiswa, claims.Role)
	assert.Equal(t, "210001", claims.MemberID)
	assert.Equal(t, "TI-1A", claims.Kelas)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := authFixture(t, true)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "andi@kampus.ac.id", Password: "salah123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := authFixture(t, true)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "tidak@ada.ac.id", Password: "rahasia1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, _ := authFixture(t, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "andi@kampus.ac.id", Password: "rahasia1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := authFixture(t, true)

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc, _ := authFixture(t, true)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "andi@kampus.ac.id", Password: "rahasia1"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

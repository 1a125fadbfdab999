package user_services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyunix/go-darkbin/internal/auth"
	"github.com/iyunix/go-darkbin/internal/domain"
	"github.com/iyunix/go-darkbin/internal/repository/user"
	"github.com/iyunix/go-darkbin/internal/services"
	"github.com/iyunix/go-darkbin/internal/services/chat_services"
)

const testSecret = "test-secret"

type memoryAudit struct {
	mu      sync.Mutex
	entries []domain.SecurityLog
}

func (m *memoryAudit) Record(_ context.Context, entry *domain.SecurityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		if e.Success {
			out = append(out, e.Action+":ok")
		} else {
			out = append(out, e.Action+":fail")
		}
	}
	return out
}

func newTestService(t *testing.T) (*UserService, user.UserRepository, *memoryAudit) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "users.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	repo := user.NewGormUserRepository(db, &services.NoOpLogger{})
	audit := &memoryAudit{}
	return NewUserService(repo, audit, testSecret, &services.NoOpLogger{}), repo, audit
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	req := require.New(t)
	svc, _, audit := newTestService(t)
	ctx := context.Background()
	meta := RequestMeta{IPAddress: "10.0.0.1", UserAgent: "test"}

	created, err := svc.Register(ctx, "alice", "password123", meta)
	req.NoError(err)
	req.NotZero(created.ID)
	req.NotEqual("password123", created.Password)

	_, err = svc.Register(ctx, "alice", "password123", meta)
	req.ErrorIs(err, ErrUsernameTaken)

	_, _, err = svc.Login(ctx, "alice", "wrong-password", meta)
	req.ErrorIs(err, ErrInvalidCredentials)

	u, token, err := svc.Login(ctx, "alice", "password123", meta)
	req.NoError(err)
	req.Equal(created.ID, u.ID)

	claims, err := svc.ValidateJWTToken(token)
	req.NoError(err)
	req.Equal("alice", claims.Username)

	req.Equal([]string{"register:ok", "register:fail", "login:fail", "login:ok"}, audit.actions())
}

func TestAuthService_RegisterValidatesInput(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newTestService(t)

	for _, tc := range []struct{ username, password string }{
		{"al", "password123"},
		{"has space", "password123"},
		{"alice", "short"},
		{"", ""},
	} {
		_, err := svc.Register(context.Background(), tc.username, tc.password, RequestMeta{})
		var invalid *ValidationError
		req.ErrorAs(err, &invalid, tc.username)
		req.NotEmpty(invalid.Reason)
	}
}

func TestAuthService_BannedUserCannotLogin(t *testing.T) {
	req := require.New(t)
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, "mallory", "password123", RequestMeta{})
	req.NoError(err)
	req.NoError(repo.SetBanned(ctx, created.ID, true))

	_, _, err = svc.Login(ctx, "mallory", "password123", RequestMeta{})
	req.ErrorIs(err, ErrAccountBanned)
}

func TestIdentityService_Resolve(t *testing.T) {
	req := require.New(t)
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, "alice", "password123", RequestMeta{})
	req.NoError(err)
	token, err := auth.GenerateJWT(created.ID, created.Username, []byte(testSecret), 0)
	req.NoError(err)

	principal, err := svc.Resolve(ctx, chat_services.Credentials{Token: token})
	req.NoError(err)
	req.Equal(&domain.Principal{Username: "alice", Color: domain.DefaultUsernameColor}, principal)

	// Anonymous cases
	for _, creds := range []chat_services.Credentials{
		{},
		{Token: "garbage"},
	} {
		p, err := svc.Resolve(ctx, creds)
		req.NoError(err)
		req.Nil(p)
	}

	orphan, err := auth.GenerateJWT(999, "ghost", []byte(testSecret), 0)
	req.NoError(err)
	p, err := svc.Resolve(ctx, chat_services.Credentials{Token: orphan})
	req.NoError(err)
	req.Nil(p)

	req.NoError(repo.SetBanned(ctx, created.ID, true))
	p, err = svc.Resolve(ctx, chat_services.Credentials{Token: token})
	req.NoError(err)
	req.Nil(p)
}

func TestUserService_UpdateColor(t *testing.T) {
	req := require.New(t)
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, "alice", "password123", RequestMeta{})
	req.NoError(err)

	updated, err := svc.UpdateColor(ctx, created.ID, " #00FF7F ")
	req.NoError(err)
	req.Equal("#00ff7f", updated.UsernameColor)

	colors, err := repo.ColorsFor(ctx, []string{"alice"})
	req.NoError(err)
	req.Equal("#00ff7f", colors["alice"])

	for _, bad := range []string{"red", "#fff", "#gggggg", ""} {
		_, err = svc.UpdateColor(ctx, created.ID, bad)
		req.ErrorIs(err, ErrInvalidColor, bad)
	}

	_, err = svc.UpdateColor(ctx, 999, "#000000")
	req.True(IsNotFound(err))
}

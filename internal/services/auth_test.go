package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"hazard-admin/internal/auth"
	"hazard-admin/internal/config"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeLDAP struct {
	users   map[string]string // dn -> password
	entries []*ldap.Entry
	boundAs string
	closed  bool
}

func (f *fakeLDAP) Bind(username, password string) error {
	if pw, ok := f.users[username]; ok && pw == password {
		f.boundAs = username
		return nil
	}
	return ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("invalid credentials"))
}

func (f *fakeLDAP) Search(*ldap.SearchRequest) (*ldap.SearchResult, error) {
	return &ldap.SearchResult{Entries: f.entries}, nil
}

func (f *fakeLDAP) Close() error {
	f.closed = true
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *auth.JWTManager) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	jwtMgr := auth.NewJWTManagerFromKeys(key, &key.PublicKey, "hazard-admin")

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		AccessTokenTTL:    15 * time.Minute,
		RefreshTokenTTL:   24 * time.Hour,
		AdminEmail:        "admin@example.org",
		AdminPasswordHash: string(hash),
		LDAPServer:        "ldap://directory.test:389",
		LDAPBindDN:        "uid=%s,ou=people,dc=example,dc=org",
		LDAPBaseDN:        "dc=example,dc=org",
	}
	return NewAuthService(jwtMgr, cfg, zap.NewNop()), jwtMgr
}

func TestLoginLocal(t *testing.T) {
	svc, jwtMgr := newTestAuthService(t)

	pair, user, err := svc.LoginLocal(context.Background(), " Admin@Example.org ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "local", user.Provider)

	claims, err := jwtMgr.VerifyToken(pair.AccessToken, auth.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.org", claims.Subject)
}

func TestLoginLocal_BadCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, _, err := svc.LoginLocal(context.Background(), "admin@example.org", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.LoginLocal(context.Background(), "someone@example.org", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginLocal_NotConfigured(t *testing.T) {
	svc, _ := newTestAuthService(t)
	svc.cfg.AdminPasswordHash = ""

	_, _, err := svc.LoginLocal(context.Background(), "admin@example.org", "s3cret")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginLDAP(t *testing.T) {
	svc, _ := newTestAuthService(t)
	dir := &fakeLDAP{
		users: map[string]string{"uid=jdoe,ou=people,dc=example,dc=org": "pw"},
		entries: []*ldap.Entry{ldap.NewEntry("uid=jdoe,ou=people,dc=example,dc=org", map[string][]string{
			"mail":        {"jdoe@example.org"},
			"displayName": {"Jane Doe"},
		})},
	}
	svc.dial = func(string) (ldapConn, error) { return dir, nil }

	pair, user, err := svc.LoginLDAP(context.Background(), "jdoe", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, "Jane Doe", user.Name)
	assert.Equal(t, "jdoe@example.org", user.Email)
	assert.Equal(t, "ldap", user.Provider)
	assert.True(t, dir.closed)
}

func TestLoginLDAP_BindFails(t *testing.T) {
	svc, _ := newTestAuthService(t)
	dir := &fakeLDAP{users: map[string]string{}}
	svc.dial = func(string) (ldapConn, error) { return dir, nil }

	_, _, err := svc.LoginLDAP(context.Background(), "jdoe", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, dir.closed)
}

func TestLoginLDAP_DialFails(t *testing.T) {
	svc, _ := newTestAuthService(t)
	svc.dial = func(string) (ldapConn, error) { return nil, errors.New("connection refused") }

	_, _, err := svc.LoginLDAP(context.Background(), "jdoe", "pw")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginLDAP_EmptyPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)
	svc.dial = func(string) (ldapConn, error) {
		t.Fatal("should not dial")
		return nil, nil
	}
	_, _, err := svc.LoginLDAP(context.Background(), "jdoe", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	svc, jwtMgr := newTestAuthService(t)
	pair, _, err := svc.LoginLocal(context.Background(), "admin@example.org", "s3cret")
	require.NoError(t, err)

	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	claims, err := jwtMgr.VerifyToken(next.AccessToken, auth.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "local", claims.AuthMethod)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "pw"))
	assert.Error(t, ComparePassword(hash, "other"))
}

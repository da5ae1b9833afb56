package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hazard-admin/internal/auth"
	"hazard-admin/internal/config"

	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// ldapConn is the part of *ldap.Conn the login flow needs.
type ldapConn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

type ldapDialer func(url string) (ldapConn, error)

func dialLDAP(url string) (ldapConn, error) {
	l, err := ldap.DialURL(url)
	if err != nil {
		return nil, err
	}
	l.SetTimeout(30 * time.Second)
	return l, nil
}

type AuthService struct {
	jwt  *auth.JWTManager
	cfg  *config.Config
	logr *zap.Logger
	dial ldapDialer
}

func NewAuthService(jwt *auth.JWTManager, cfg *config.Config, logr *zap.Logger) *AuthService {
	return &AuthService{jwt: jwt, cfg: cfg, logr: logr, dial: dialLDAP}
}

// HashPassword uses bcrypt
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

type UserInfo struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Provider string   `json:"provider"`
	Roles    []string `json:"roles"`
}

// LoginLocal checks the configured admin account.
func (s *AuthService) LoginLocal(_ context.Context, email, password string) (*auth.TokenPair, *UserInfo, error) {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPasswordHash == "" {
		return nil, nil, fmt.Errorf("local login not configured")
	}
	if !strings.EqualFold(strings.TrimSpace(email), s.cfg.AdminEmail) {
		return nil, nil, ErrInvalidCredentials
	}
	if err := ComparePassword(s.cfg.AdminPasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	user := &UserInfo{
		ID:       s.cfg.AdminEmail,
		Email:    s.cfg.AdminEmail,
		Name:     "Administrator",
		Provider: "local",
		Roles:    []string{"admin"},
	}
	pair, err := s.jwt.GenerateTokenPair(user.ID, s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL, "local", user.Roles)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// LoginLDAP binds as the user and reads their directory entry.
func (s *AuthService) LoginLDAP(_ context.Context, username, password string) (*auth.TokenPair, *UserInfo, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}

	l, err := s.dial(s.cfg.LDAPServer)
	if err != nil {
		s.logr.Error("LDAP dial failed", zap.Error(err), zap.String("server", s.cfg.LDAPServer))
		return nil, nil, fmt.Errorf("ldap connection failed")
	}
	defer func() {
		if closeErr := l.Close(); closeErr != nil {
			s.logr.Debug("LDAP close error (usually harmless)", zap.Error(closeErr))
		}
	}()

	userDN := fmt.Sprintf(s.cfg.LDAPBindDN, username)
	if err := l.Bind(userDN, password); err != nil {
		s.logr.Warn("LDAP bind failed", zap.String("username", username))
		return nil, nil, ErrInvalidCredentials
	}

	user := &UserInfo{ID: username, Name: username, Provider: "ldap", Roles: []string{"admin"}}

	if s.cfg.LDAPBaseDN != "" {
		escaped := ldap.EscapeFilter(username)
		sr, err := l.Search(ldap.NewSearchRequest(
			s.cfg.LDAPBaseDN,
			ldap.ScopeWholeSubtree,
			ldap.NeverDerefAliases,
			1,
			0,
			false,
			fmt.Sprintf("(|(sAMAccountName=%s)(uid=%s))", escaped, escaped),
			[]string{"mail", "displayName", "cn"},
			nil,
		))
		if err != nil {
			s.logr.Error("LDAP search failed", zap.Error(err), zap.String("username", username))
			return nil, nil, fmt.Errorf("user lookup failed")
		}
		if len(sr.Entries) > 0 {
			entry := sr.Entries[0]
			user.Email = entry.GetAttributeValue("mail")
			if name := entry.GetAttributeValue("displayName"); name != "" {
				user.Name = name
			} else if cn := entry.GetAttributeValue("cn"); cn != "" {
				user.Name = cn
			}
		}
	}

	pair, err := s.jwt.GenerateTokenPair(user.ID, s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL, "ldap", user.Roles)
	if err != nil {
		s.logr.Error("token generation failed", zap.Error(err), zap.String("username", username))
		return nil, nil, fmt.Errorf("failed to generate tokens")
	}

	s.logr.Info("LDAP login successful", zap.String("username", username), zap.String("email", user.Email))
	return pair, user, nil
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *AuthService) Refresh(_ context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwt.VerifyToken(refreshToken, auth.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}
	return s.jwt.GenerateTokenPair(claims.Subject, s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL, claims.AuthMethod, claims.Roles)
}

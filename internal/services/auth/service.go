// Package auth issues and checks player sessions
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/killergame/internal/dependencies/clock"
	"github.com/mcoot/killergame/internal/model"
	"github.com/mcoot/killergame/internal/services/directory"
)

// ErrInvalidSession is returned for missing, malformed, expired or revoked tokens
var ErrInvalidSession = fmt.Errorf("%w: invalid or expired session", model.ErrInvalidCredentials)

// Session is an authenticated player
type Session struct {
	Token     string
	ID        string
	Nickname  string
	IsAdmin   bool
	ExpiresAt time.Time

	// Maintenance is true for the configured operator credential
	Maintenance bool
}

// Actor returns the identity passed to game operations
func (s *Session) Actor() model.Actor {
	return model.Actor{Nickname: s.Nickname, IsAdmin: s.IsAdmin}
}

// Config holds configuration for the auth service
type Config struct {
	Secret          []byte
	SessionDuration time.Duration

	// MaintenanceNickname and MaintenancePasswordHash (bcrypt) define an admin
	// login that never touches the record store. Disabled when either is empty.
	MaintenanceNickname     string
	MaintenancePasswordHash string
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 12 * time.Hour,
	}
}

type claims struct {
	Admin       bool `json:"adm,omitempty"`
	Maintenance bool `json:"mnt,omitempty"`
	jwt.RegisteredClaims
}

// Service handles authentication and session tokens
type Service struct {
	directory *directory.Service
	clock     clock.Clock
	cfg       Config
	logger    *slog.Logger

	mu      sync.Mutex
	revoked map[string]time.Time // token id -> expiry
}

// New creates a new auth Service
func New(directory *directory.Service, clock clock.Clock, cfg Config, logger *slog.Logger) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth: signing secret is required")
	}
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		directory: directory,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
		revoked:   make(map[string]time.Time),
	}, nil
}

// HashPassword produces a bcrypt hash suitable for the maintenance credential
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login authenticates a player by nickname and password. The maintenance
// credential is checked first so operators can log in while the record
// store is unreachable.
func (s *Service) Login(ctx context.Context, nickname, password string) (*Session, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || password == "" {
		return nil, model.ErrInvalidCredentials
	}

	if s.isMaintenance(nickname) {
		if bcrypt.CompareHashAndPassword([]byte(s.cfg.MaintenancePasswordHash), []byte(password)) != nil {
			s.logger.Warn("maintenance login rejected")
			return nil, model.ErrInvalidCredentials
		}
		s.logger.Info("maintenance login", slog.String("nickname", s.cfg.MaintenanceNickname))
		return s.issue(s.cfg.MaintenanceNickname, true, true)
	}

	player, err := s.directory.FindByNickname(ctx, nickname)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(player.Password, password) {
		return nil, model.ErrInvalidCredentials
	}
	return s.issue(player.Nickname, player.IsAdmin, false)
}

func (s *Service) isMaintenance(nickname string) bool {
	if s.cfg.MaintenanceNickname == "" || s.cfg.MaintenancePasswordHash == "" {
		return false
	}
	return model.SameNickname(nickname, s.cfg.MaintenanceNickname)
}

func (s *Service) issue(nickname string, admin, maintenance bool) (*Session, error) {
	now := s.clock.Now()
	id := uuid.NewString()
	expires := now.Add(s.cfg.SessionDuration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Admin:       admin,
		Maintenance: maintenance,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   nickname,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:       signed,
		ID:          id,
		Nickname:    nickname,
		IsAdmin:     admin,
		ExpiresAt:   expires,
		Maintenance: maintenance,
	}, nil
}

// ValidateToken checks a session token and returns the session it encodes
func (s *Service) ValidateToken(token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidSession
	}
	if c.Subject == "" || c.ID == "" {
		return nil, ErrInvalidSession
	}

	s.mu.Lock()
	_, revoked := s.revoked[c.ID]
	s.mu.Unlock()
	if revoked {
		return nil, ErrInvalidSession
	}

	return &Session{
		Token:       token,
		ID:          c.ID,
		Nickname:    c.Subject,
		IsAdmin:     c.Admin,
		ExpiresAt:   c.ExpiresAt.Time,
		Maintenance: c.Maintenance,
	}, nil
}

// Revoke invalidates a session until it would have expired anyway
func (s *Service) Revoke(session *Session) {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[session.ID] = session.ExpiresAt
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/N1K0232/GlowingStoreApi/pkg/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Role is the permission level of a user.
type Role string

const (
	RoleAdmin    Role = config.RoleAdmin
	RoleReadOnly Role = config.RoleReadOnly
)

// Roles lists every role, most privileged first.
func Roles() []Role {
	return []Role{RoleAdmin, RoleReadOnly}
}

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrBasicAuthDisabled is returned when basic auth is not enabled.
var ErrBasicAuthDisabled = errors.New("basic auth is not enabled")

// User is an authenticated principal.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service defines the interface for authentication operations.
type Service interface {
	// Authentication.
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// Authorization.
	HasRole(user *User, role Role) bool
	IsAdmin(user *User) bool
}

type account struct {
	user *User
	hash []byte
}

// service implements Service over the users configured in auth.basic.
type service struct {
	log      logrus.FieldLogger
	enabled  bool
	accounts map[string]*account
	// dummy is compared against for unknown users.
	dummy []byte
}

// Ensure service implements Service.
var _ Service = (*service)(nil)

// NewService creates the auth service, hashing every configured password.
func NewService(log logrus.FieldLogger, cfg config.BasicAuthConfig) (Service, error) {
	return newService(log, cfg, bcrypt.DefaultCost)
}

func newService(log logrus.FieldLogger, cfg config.BasicAuthConfig, cost int) (*service, error) {
	s := &service{
		log:      log.WithField("component", "auth"),
		enabled:  cfg.Enabled,
		accounts: make(map[string]*account, len(cfg.Users)),
	}

	if !cfg.Enabled {
		return s, nil
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, fmt.Errorf("hashing dummy password: %w", err)
	}

	s.dummy = dummy

	now := time.Now().UTC()

	for _, userCfg := range cfg.Users {
		if _, exists := s.accounts[userCfg.Username]; exists {
			return nil, fmt.Errorf("duplicate user %s", userCfg.Username)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(userCfg.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("hashing password for %s: %w", userCfg.Username, err)
		}

		role := Role(userCfg.Role)
		if role == "" {
			role = RoleReadOnly
		}

		s.accounts[userCfg.Username] = &account{
			user: &User{
				ID:        uuid.New().String(),
				Username:  userCfg.Username,
				Role:      role,
				CreatedAt: now,
			},
			hash: hash,
		}

		s.log.WithField("username", userCfg.Username).Debug("Registered basic auth user")
	}

	s.log.WithField("users", len(s.accounts)).Info("Basic auth enabled")

	return s, nil
}

// Authenticate verifies a username and password.
func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	if !s.enabled {
		return nil, ErrBasicAuthDisabled
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	acc, ok := s.accounts[username]
	if !ok {
		//nolint:errcheck // Only run for timing.
		bcrypt.CompareHashAndPassword(s.dummy, []byte(password))

		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user := *acc.user

	return &user, nil
}

// HasRole checks if a user has a specific role.
func (s *service) HasRole(user *User, role Role) bool {
	return hasRole(user, role)
}

// IsAdmin checks if a user is an admin.
func (s *service) IsAdmin(user *User) bool {
	return hasRole(user, RoleAdmin)
}

func hasRole(user *User, role Role) bool {
	if user == nil {
		return false
	}

	// Admin role has all permissions.
	if user.Role == RoleAdmin {
		return true
	}

	return user.Role == role
}

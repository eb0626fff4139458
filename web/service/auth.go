package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nbazone/nbazone/config"
	"github.com/nbazone/nbazone/database/model"
	"github.com/nbazone/nbazone/database/store"
	"github.com/nbazone/nbazone/logger"
	"github.com/nbazone/nbazone/util/crypto"
	"github.com/nbazone/nbazone/web/entity"

	"github.com/golang-jwt/jwt/v5"
)

// dummyHash is compared against when the username is unknown so that both
// failure paths cost one bcrypt comparison.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3KgfvWxUqZ7PYzFa1zB1YEq"

// UserStore is the persistence the auth service needs.
type UserStore interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	RolesOf(ctx context.Context, userID int64) ([]model.AppRole, error)
	FindRole(ctx context.Context, name model.AppRole) (*model.Role, error)
	CreateWithRoles(ctx context.Context, user *model.User, roles []model.Role) error
}

// Principal is the identity attached to an authenticated request.
type Principal struct {
	UserId   int64
	Username string
	Email    string
	Roles    []model.AppRole
}

// HasAnyRole reports whether the principal holds at least one of roles.
func (p *Principal) HasAnyRole(roles ...model.AppRole) bool {
	for _, have := range p.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

func (p *Principal) RoleNames() []string {
	names := make([]string, 0, len(p.Roles))
	for _, r := range p.Roles {
		names = append(names, string(r))
	}
	return names
}

// AuthService verifies credentials, registers users and signs session tokens.
type AuthService struct {
	users      UserStore
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

func NewAuthService(users UserStore, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		users:      users,
		secret:     []byte(cfg.JWTSecret),
		expiration: cfg.JWTExpiration,
		now:        time.Now,
	}
}

// Expiration is the lifetime of issued tokens.
func (s *AuthService) Expiration() time.Duration {
	return s.expiration
}

// SignIn checks the credentials and returns the principal with a fresh token.
// Every credential failure is reported as ErrBadCredentials.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (*Principal, string, error) {
	badCredentials := newError(ErrBadCredentials, "Bad credentials")

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		crypto.CheckPasswordHash(dummyHash, password)
		return nil, "", badCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !crypto.CheckPasswordHash(user.Password, password) {
		return nil, "", badCredentials
	}

	principal, err := s.principalOf(ctx, user)
	if err != nil {
		return nil, "", err
	}
	token, err := s.GenerateToken(user.Username)
	if err != nil {
		return nil, "", err
	}
	logger.Infof("user %s signed in", user.Username)
	return principal, token, nil
}

// SignUp registers a user. Duplicate usernames or emails are rejected before
// anything is written.
func (s *AuthService) SignUp(ctx context.Context, req *entity.SignupRequest) (*model.User, error) {
	if err := validation(req.Validate()); err != nil {
		return nil, err
	}

	taken, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, newError(ErrConflict, "Username is already taken!")
	}
	taken, err = s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, newError(ErrConflict, "Email is already in use!")
	}

	names := resolveRoles(req.Role)
	roles := make([]model.Role, 0, len(names))
	for _, name := range names {
		role, err := s.users.FindRole(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("role %s is not found: %w", name, err)
		}
		roles = append(roles, *role)
	}

	hash, err := crypto.HashPasswordAsBcrypt(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
	}
	if err := s.users.CreateWithRoles(ctx, user, roles); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, newError(ErrConflict, "Username or email is already in use!")
		}
		return nil, err
	}
	logger.Infof("user %s registered with roles %v", user.Username, names)
	return user, nil
}

// resolveRoles maps requested role names onto stored roles: "admin" is
// ROLE_ADMIN, anything else ROLE_USER, and no names at all ROLE_USER.
func resolveRoles(names []string) []model.AppRole {
	if len(names) == 0 {
		return []model.AppRole{model.RoleUser}
	}
	seen := make(map[model.AppRole]bool, 2)
	out := make([]model.AppRole, 0, 2)
	for _, name := range names {
		role := model.RoleUser
		if name == "admin" {
			role = model.RoleAdmin
		}
		if !seen[role] {
			seen[role] = true
			out = append(out, role)
		}
	}
	return out
}

// GenerateToken signs a token whose subject is username.
func (s *AuthService) GenerateToken(username string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    config.GetName(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken verifies signature, issuer and expiry and returns the username.
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.GetName()),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// ResolvePrincipal turns a token into the principal of its user.
func (s *AuthService) ResolvePrincipal(ctx context.Context, tokenString string) (*Principal, error) {
	username, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %s not found: %w", username, err)
	}
	return s.principalOf(ctx, user)
}

func (s *AuthService) principalOf(ctx context.Context, user *model.User) (*Principal, error) {
	roles, err := s.users.RolesOf(ctx, user.Id)
	if err != nil {
		return nil, err
	}
	return &Principal{
		UserId:   user.Id,
		Username: user.Username,
		Email:    user.Email,
		Roles:    roles,
	}, nil
}

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/ngocvh/backend-cho/internal/common"
	"github.com/ngocvh/backend-cho/internal/store"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 30 * 24 * time.Hour

	// Known roles. A user may carry more than one.
	RoleCustomer = "customer"
	RoleShipper  = "shipper"
	RoleAdmin    = "admin"
)

// Service coordinates credential checks, token issuance, and session rotation.
type Service struct {
	store      *store.Store
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	now        func() time.Time
	signer     jwa.SignatureAlgorithm
}

// Config configures the auth service.
type Config struct {
	Store           *store.Store
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
}

// User is the safe subset of the account returned to clients.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenPair bundles the material returned after login or refresh.
type TokenPair struct {
	AccessToken   string    `json:"access_token"`
	AccessExpiry  time.Time `json:"access_expires_at"`
	RefreshToken  string    `json:"refresh_token"`
	RefreshExpiry time.Time `json:"refresh_expires_at"`
}

// LoginResult is the response payload of a successful login.
type LoginResult struct {
	User User `json:"user"`
	TokenPair
}

// NewService constructs a Service with sane defaults.
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("auth: store is required")
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	refreshTTL := cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "backend-cho"
	}
	return &Service{
		store:      cfg.Store,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     issuer,
		now:        time.Now,
		signer:     jwa.HS256,
	}, nil
}

// WithNow allows tests to override the time provider.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Register creates a new account. Role must be customer or shipper; admins
// are provisioned out of band.
func (s *Service) Register(ctx context.Context, name, email, phone, password, role string) (User, error) {
	if strings.TrimSpace(name) == "" {
		return User{}, common.NewAppError("VALIDATION_ERROR", "name is required", http.StatusBadRequest, nil)
	}
	normalizedEmail := strings.TrimSpace(strings.ToLower(email))
	if normalizedEmail == "" {
		return User{}, common.NewAppError("VALIDATION_ERROR", "email is required", http.StatusBadRequest, nil)
	}
	if len(password) < 8 {
		return User{}, common.NewAppError("VALIDATION_ERROR", "password must be at least 8 characters", http.StatusBadRequest, nil)
	}
	if role == "" {
		role = RoleCustomer
	}
	if role != RoleCustomer && role != RoleShipper {
		return User{}, common.NewAppError("VALIDATION_ERROR", "role must be customer or shipper", http.StatusBadRequest, nil)
	}

	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.store.CreateUser(ctx, strings.TrimSpace(name), normalizedEmail, strings.TrimSpace(phone), hash, []string{role})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return User{}, common.NewAppError("EMAIL_ALREADY_USED", "email is already registered", http.StatusConflict, err)
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return toUser(created), nil
}

// Login verifies credentials and issues a new token pair.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	normalizedEmail := strings.TrimSpace(strings.ToLower(email))
	if normalizedEmail == "" || password == "" {
		return LoginResult{}, errInvalidCredentials(nil)
	}
	u, err := s.store.GetUserByEmail(ctx, normalizedEmail)
	if err != nil {
		return LoginResult{}, errInvalidCredentials(err)
	}
	ok, err := argon2id.ComparePasswordAndHash(password, u.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, errInvalidCredentials(err)
	}

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: toUser(u), TokenPair: pair}, nil
}

// Refresh rotates a refresh token and issues a fresh access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	token := strings.TrimSpace(refreshToken)
	if token == "" {
		return TokenPair{}, errUnauthorized(nil)
	}
	hashed := hashRefreshToken(token)
	session, err := s.store.GetRefreshToken(ctx, hashed)
	if err != nil {
		return TokenPair{}, errUnauthorized(err)
	}
	if session.RevokedAt != nil || s.now().After(session.ExpiresAt) {
		return TokenPair{}, errUnauthorized(nil)
	}
	u, err := s.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		return TokenPair{}, errUnauthorized(err)
	}
	if err := s.store.RevokeRefreshToken(ctx, hashed); err != nil {
		return TokenPair{}, fmt.Errorf("revoke refresh token: %w", err)
	}
	return s.issuePair(ctx, u)
}

// Logout revokes a refresh token. A missing token is a no-op.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	token := strings.TrimSpace(refreshToken)
	if token == "" {
		return nil
	}
	return s.store.RevokeRefreshToken(ctx, hashRefreshToken(token))
}

// Me fetches the current authenticated user.
func (s *Service) Me(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, errUnauthorized(nil)
	}
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return User{}, errUnauthorized(err)
	}
	return toUser(u), nil
}

// ParseAccessToken validates an access token and returns the subject and roles.
func (s *Service) ParseAccessToken(token string) (string, []string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", nil, errUnauthorized(nil)
	}
	parsed, err := jwt.ParseString(trimmed,
		jwt.WithKey(s.signer, s.secret),
		jwt.WithIssuer(s.issuer),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	)
	if err != nil {
		return "", nil, errUnauthorized(err)
	}
	var roles []string
	if raw, ok := parsed.Get("roles"); ok {
		if list, ok := raw.([]any); ok {
			for _, v := range list {
				if role, ok := v.(string); ok {
					roles = append(roles, role)
				}
			}
		}
	}
	return parsed.Subject(), roles, nil
}

func (s *Service) issuePair(ctx context.Context, u store.User) (TokenPair, error) {
	accessToken, accessExpiry, err := s.signAccessToken(u.ID, u.Roles)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, refreshExpiry, err := s.generateRefreshToken(ctx, u.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}
	return TokenPair{
		AccessToken:   accessToken,
		AccessExpiry:  accessExpiry,
		RefreshToken:  refreshToken,
		RefreshExpiry: refreshExpiry,
	}, nil
}

func (s *Service) signAccessToken(userID string, roles []string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)
	token, err := jwt.NewBuilder().
		Subject(userID).
		Issuer(s.issuer).
		IssuedAt(now).
		Expiration(expiresAt).
		Claim("roles", roles).
		Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

func (s *Service) generateRefreshToken(ctx context.Context, userID string) (string, time.Time, error) {
	token, err := generateToken(48)
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := s.now().Add(s.refreshTTL)
	if err := s.store.InsertRefreshToken(ctx, userID, hashRefreshToken(token), expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func generateToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func errInvalidCredentials(err error) error {
	return common.NewAppError("INVALID_CREDENTIALS", "invalid email or password", http.StatusUnauthorized, err)
}

func errUnauthorized(err error) error {
	return common.NewAppError("UNAUTHORIZED", "missing or invalid token", http.StatusUnauthorized, err)
}

func toUser(u store.User) User {
	return User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt,
	}
}

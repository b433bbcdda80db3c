package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aki/journal-api/internal/config"
	"github.com/aki/journal-api/internal/domain"
	"github.com/aki/journal-api/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("user with this email already exists")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrLinkTokenInvalid   = errors.New("invalid or expired token")
)

// AuthService owns password credentials and the verified session channel:
// sign-up/sign-in issue opaque session tokens stored server-side, and
// ResolveSession turns a bearer token back into an identity with exactly one
// session lookup and one user lookup. It never mutates state on resolution.
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	cfg         *config.Config
}

func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		cfg:         cfg,
	}
}

type SignUpInput struct {
	Email    string
	Name     string
	Password string
}

type SignInInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User         *domain.User
	SessionToken string
	ExpiresAt    time.Time
}

func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	if len(input.Password) < 8 {
		return nil, ErrPasswordTooShort
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	switch {
	case err == nil && existing.HasPassword():
		return nil, ErrEmailExists
	case err == nil:
		// Pre-provisioned row (admin-created or bootstrap): signing up with
		// its email claims it by setting the password.
		existing.PasswordHash = string(hashed)
		if input.Name != "" {
			existing.Name = input.Name
		}
		existing.UpdatedAt = time.Now()
		if err := s.userRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return s.createSession(ctx, existing)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.createSession(ctx, user)
}

func (s *AuthService) SignIn(ctx context.Context, input SignInInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.HasPassword() {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.createSession(ctx, user)
}

// createSession issues a fresh opaque token. A user may hold several
// concurrent sessions, so older ones are left untouched.
func (s *AuthService) createSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	token := uuid.New().String() + uuid.New().String()
	session := &domain.Session{
		ID:        uuid.New(),
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.cfg.SessionTTL),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		SessionToken: token,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

// ResolveSession validates an Authorization header and returns the verified
// identity behind it.
func (s *AuthService) ResolveSession(ctx context.Context, authorization string) (*domain.Identity, error) {
	if authorization == "" {
		return nil, domain.ErrUnauthenticated
	}

	parts := strings.Split(authorization, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, domain.ErrUnauthenticated
	}

	session, err := s.sessionRepo.GetByToken(ctx, parts[1])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	return &domain.Identity{
		ID:      user.ID,
		Email:   user.Email,
		Name:    user.Name,
		IsAdmin: user.IsAdmin,
		Source:  domain.IdentityVerified,
	}, nil
}

func (s *AuthService) SignOut(ctx context.Context, token string) error {
	return s.sessionRepo.DeleteByToken(ctx, token)
}

// SweepExpiredSessions removes sessions past their expiry. ResolveSession
// already rejects them; this keeps the table from growing without bound.
func (s *AuthService) SweepExpiredSessions(ctx context.Context) error {
	return s.sessionRepo.DeleteExpired(ctx, time.Now())
}

// AdminAuthenticate backs the admin panel's own login endpoint. A wrong
// email, a missing password hash, a failed compare and a non-admin user all
// collapse into the same rejection so none can be told apart.
func (s *AuthService) AdminAuthenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.HasPassword() || !user.IsAdmin {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.HasPassword() {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashed)
	user.UpdatedAt = time.Now()
	return s.userRepo.Update(ctx, user)
}

// LinkTokenPurpose selects the claim set of a one-time link token.
type LinkTokenPurpose string

const (
	LinkTokenPasswordReset     LinkTokenPurpose = "password-reset"
	LinkTokenEmailVerification LinkTokenPurpose = "email-verification"
)

// IssueLinkToken mints a short-lived signed token for password-reset and
// email-verification links. Delivery (mail) is outside this service.
func (s *AuthService) IssueLinkToken(userID uuid.UUID, purpose LinkTokenPurpose) (string, error) {
	claims := jwt.MapClaims{
		"sub":     userID.String(),
		"purpose": string(purpose),
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ParseLinkToken validates a link token and returns the user id it was
// issued for.
func (s *AuthService) ParseLinkToken(tokenString string, purpose LinkTokenPurpose) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}
	if p, _ := claims["purpose"].(string); p != string(purpose) {
		return uuid.Nil, fmt.Errorf("token purpose mismatch")
	}

	sub, _ := claims["sub"].(string)
	return uuid.Parse(sub)
}

// ResetPassword consumes a password-reset link token and sets the new
// password. Any parse failure, purpose mismatch or unknown user collapses
// into ErrLinkTokenInvalid.
func (s *AuthService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}

	userID, err := s.ParseLinkToken(tokenString, LinkTokenPasswordReset)
	if err != nil {
		return ErrLinkTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLinkTokenInvalid
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashed)
	user.UpdatedAt = time.Now()
	return s.userRepo.Update(ctx, user)
}

// VerifyEmail consumes an email-verification link token and marks the user
// verified.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenString string) (*domain.User, error) {
	userID, err := s.ParseLinkToken(tokenString, LinkTokenEmailVerification)
	if err != nil {
		return nil, ErrLinkTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkTokenInvalid
		}
		return nil, err
	}

	if !user.EmailVerified {
		user.EmailVerified = true
		user.UpdatedAt = time.Now()
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

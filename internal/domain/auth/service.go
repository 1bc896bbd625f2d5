// Package auth implements account signup and login with bcrypt
// password hashes and short-lived JWTs.
package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	platformerrors "github.com/aryanarora07/podlyze/internal/platform/errors"
	"github.com/aryanarora07/podlyze/internal/platform/storage"
	"github.com/aryanarora07/podlyze/internal/utils"
)

var (
	// ErrEmailTaken means signup hit an existing account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown email and bad password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Account is the public view of a user.
type Account struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Service struct {
	users    *storage.UserRepository
	secret   []byte
	tokenTTL time.Duration
	logger   *utils.Logger
}

func NewService(users *storage.UserRepository, secret string, tokenTTL time.Duration, logger *utils.Logger) *Service {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Signup creates an account and returns it with a fresh token.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*Account, string, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", platformerrors.Wrap(platformerrors.KindAuth, "auth.Signup", "hash password", err)
	}

	user := &storage.User{Name: name, Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.InfoTag("AUTH", "account created for %s", email)
	return &Account{ID: user.ID, Name: user.Name, Email: user.Email}, token, nil
}

// Login verifies credentials and returns the account with a fresh
// token.
func (s *Service) Login(ctx context.Context, email, password string) (*Account, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return &Account{ID: user.ID, Name: user.Name, Email: user.Email}, token, nil
}

// VerifyToken parses and validates a token issued by this service.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindAuth, "auth.VerifyToken", "parse token", err)
	}
	if !token.Valid {
		return nil, platformerrors.New(platformerrors.KindAuth, "auth.VerifyToken", "token invalid")
	}
	return &claims, nil
}

// Claims is the JWT payload attached to every issued token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (s *Service) issueToken(user *storage.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   jwtSubject(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", platformerrors.Wrap(platformerrors.KindAuth, "auth.issueToken", "sign token", err)
	}
	return signed, nil
}

func jwtSubject(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

package service

import (
	"errors"
	"time"

	entity "goldshop/internal/domain"
	utils "goldshop/pkg"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAuthNotConfigured  = errors.New("operator account is not configured")
)

// AuthService authenticates the single shop operator configured in the
// config file and mints their access tokens.
type AuthService struct {
	username     string
	passwordHash string
	secret       []byte
	ttl          time.Duration
}

func NewAuthService(username, passwordHash, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		username:     username,
		passwordHash: passwordHash,
		secret:       []byte(secret),
		ttl:          ttl,
	}
}

func (s *AuthService) Login(username, password string) (*entity.LoginResponse, error) {
	if s.passwordHash == "" || len(s.secret) == 0 {
		return nil, ErrAuthNotConfigured
	}
	if username != s.username || !utils.CheckPasswordHash(password, s.passwordHash) {
		return nil, ErrInvalidCredentials
	}
	token, err := utils.GenerateToken(username, s.secret, s.ttl)
	if err != nil {
		return nil, err
	}
	return &entity.LoginResponse{Token: token, Username: username}, nil
}

func (s *AuthService) Secret() []byte { return s.secret }

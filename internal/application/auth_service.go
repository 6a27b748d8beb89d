package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/user"
)

type AuthService struct {
	userRepo  user.Repository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(userRepo user.Repository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{userRepo: userRepo, jwtSecret: []byte(jwtSecret), tokenTTL: tokenTTL}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register は新しいユーザーを登録し、トークンを発行する
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (string, *user.User, error) {
	if input.Password == "" {
		return "", nil, user.ErrPasswordRequired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("パスワードハッシュ化に失敗: %w", err)
	}

	u := user.NewUser(input.Name, input.Email, string(hash))
	if err := u.Validate(); err != nil {
		return "", nil, err
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return "", nil, err
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Login はメールアドレスとパスワードを検証し、トークンを発行する
// ユーザー不在とパスワード不一致は区別せず ErrInvalidCredentials を返す
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", nil, user.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("ユーザー取得に失敗: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, user.ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// GetUser はIDからユーザーを取得する
func (s *AuthService) GetUser(ctx context.Context, id string) (*user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// issueToken はHS256署名のJWTを発行する
func (s *AuthService) issueToken(u *user.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  u.ID,
		"name": u.Name,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("トークン発行に失敗: %w", err)
	}
	return signed, nil
}

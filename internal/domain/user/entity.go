package user

import "time"

// User は認証対象のユーザーエンティティを表す
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser は新しいユーザーを作成する
func NewUser(name, email, passwordHash string) *User {
	now := time.Now()
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate はユーザーの検証を行う
func (u *User) Validate() error {
	if u.Name == "" {
		return ErrNameRequired
	}
	if u.Email == "" {
		return ErrEmailRequired
	}
	if u.PasswordHash == "" {
		return ErrPasswordRequired
	}
	return nil
}

package user

import "context"

// Repository はユーザーリポジトリのインターフェース
type Repository interface {
	// Create は新しいユーザーを作成する
	// メールアドレスが重複した場合は ErrEmailAlreadyRegistered を返す
	Create(ctx context.Context, u *User) error

	// GetByID はIDからユーザーを取得する
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail はメールアドレスからユーザーを取得する
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// Package repo is the persistence boundary. The auth service talks to it only
// through CredentialStore; the resource handlers use the gorm-backed stores
// directly.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Nekrasovv/web_store/internal/models"
)

var ErrNotFound = errors.New("record not found")

// CredentialStore holds identity and refresh-token state. A user row carries
// at most one live refresh-token value; login and refresh overwrite it,
// logout nulls it.
type CredentialStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	SetRefreshToken(ctx context.Context, id uint, token string) error
	ClearRefreshToken(ctx context.Context, id uint) error
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

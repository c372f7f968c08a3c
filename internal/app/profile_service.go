package app

import (
	"context"
	"fmt"
	"io"

	"habit_reminder_service/internal/domain/user"

	"github.com/google/uuid"
)

// FileStore persists uploaded files by name. Directory layout and creation
// are the implementation's concern.
type FileStore interface {
	Save(ctx context.Context, name string, content io.Reader) error
}

// ProfileService handles profile picture uploads. The stored name is always a
// fresh UUID plus the sanitized extension; the original client filename never
// reaches the store.
type ProfileService struct {
	userRepo user.Repository
	store    FileStore
}

func NewProfileService(ur user.Repository, store FileStore) *ProfileService {
	return &ProfileService{userRepo: ur, store: store}
}

// SavePicture stores the upload and records the generated name on the user.
// ext must already be sanitized and include the leading dot.
func (s *ProfileService) SavePicture(ctx context.Context, userID int64, ext string, content io.Reader) (string, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return "", err
	}

	storedName := uuid.New().String() + ext
	if err := s.store.Save(ctx, storedName, content); err != nil {
		return "", fmt.Errorf("failed to store profile picture: %w", err)
	}

	if err := s.userRepo.UpdateProfilePicture(ctx, userID, storedName); err != nil {
		return "", err
	}
	return storedName, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

const avatarPrefix = "avatars"

type UserService struct {
	db    *gorm.DB
	store storage.Store
}

func NewUserService(db *gorm.DB, store storage.Store) *UserService {
	return &UserService{db: db, store: store}
}

// List returns a page of users ordered by id. viewerID is 0 for anonymous
// requests.
func (s *UserService) List(ctx context.Context, viewerID uint, page Page) ([]types.UserResponse, int64, error) {
	page = page.Normalize()
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	if err := db.Order("id").Offset(page.Offset()).Limit(page.Size).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := subscribedAuthors(db, viewerID, ids)
	if err != nil {
		return nil, 0, err
	}

	result := make([]types.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, types.NewUserResponse(&users[i], subscribed[users[i].ID]))
	}
	return result, count, nil
}

// Get returns one user as seen by viewerID.
func (s *UserService) Get(ctx context.Context, viewerID, id uint) (*types.UserResponse, error) {
	db := s.db.WithContext(ctx)
	user, err := loadUser(db, id)
	if err != nil {
		return nil, err
	}
	subscribed, err := subscribedAuthors(db, viewerID, []uint{id})
	if err != nil {
		return nil, err
	}
	resp := types.NewUserResponse(user, subscribed[id])
	return &resp, nil
}

// SetAvatar stores a base64 image as the user's avatar and returns its URL.
// The previous avatar file is removed.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, encoded string) (string, error) {
	if encoded == "" {
		return "", Field("avatar", i18n.AvatarRequired)
	}
	img, err := storage.DecodeDataURI(encoded)
	if err != nil || len(img.Data) > models.MaxAvatarSizeBytes {
		return "", Field("avatar", i18n.ImageInvalid)
	}

	db := s.db.WithContext(ctx)
	user, err := loadUser(db, userID)
	if err != nil {
		return "", err
	}

	previous := user.Avatar
	url, err := s.store.Save(ctx, storage.NewKey(avatarPrefix, img.Extension), img.Data, img.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", userID).Update("avatar", url).Error; err != nil {
		discardFile(ctx, s.store, url)
		return "", fmt.Errorf("failed to update avatar: %w", err)
	}
	if previous != nil {
		discardFile(ctx, s.store, *previous)
	}
	return url, nil
}

// DeleteAvatar clears the avatar and removes the stored file.
func (s *UserService) DeleteAvatar(ctx context.Context, userID uint) error {
	db := s.db.WithContext(ctx)
	user, err := loadUser(db, userID)
	if err != nil {
		return err
	}
	if user.Avatar == nil {
		return nil
	}
	previous := *user.Avatar
	if err := db.Model(&models.User{}).Where("id = ?", userID).Update("avatar", nil).Error; err != nil {
		return fmt.Errorf("failed to clear avatar: %w", err)
	}
	discardFile(ctx, s.store, previous)
	return nil
}

// discardFile removes a stored file; failures are logged only.
func discardFile(ctx context.Context, store storage.Store, url string) {
	if err := store.Delete(ctx, url); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("url", url).Msg("failed to delete stored file")
	}
}

func loadUser(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// subscribedAuthors reports which of authorIDs viewerID follows.
func subscribedAuthors(db *gorm.DB, viewerID uint, authorIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if viewerID == 0 || len(authorIDs) == 0 {
		return result, nil
	}
	var ids []uint
	err := db.Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", viewerID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"

	"cardwallet/internal/errors"
	"cardwallet/internal/model"
	"cardwallet/internal/repository"
	"cardwallet/internal/validation"
)

// ProfileUpdate carries the self-editable profile fields.
type ProfileUpdate struct {
	Name        *string
	PhoneNumber *string
}

// UserService handles the authenticated user's own profile.
type UserService interface {
	Get(ctx context.Context, userID uint) (*model.User, error)
	Update(ctx context.Context, userID uint, update ProfileUpdate) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) Get(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, userID uint, update ProfileUpdate) (*model.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	fieldErrs := errors.FieldErrors{}
	if update.Name != nil {
		user.Name = *update.Name
		for _, msg := range validation.Name(user.Name, validation.MaxUserNameLen) {
			fieldErrs.Add("name", msg)
		}
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = *update.PhoneNumber
		for _, msg := range validation.Phone(user.PhoneNumber) {
			fieldErrs.Add("phone_number", msg)
		}
	}
	if !fieldErrs.Empty() {
		return nil, fieldErrs
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

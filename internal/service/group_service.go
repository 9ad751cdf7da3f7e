package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"

	"cardwallet/internal/errors"
	"cardwallet/internal/model"
	"cardwallet/internal/repository"
)

// GroupService exposes shop categories, read only.
type GroupService interface {
	List(ctx context.Context) ([]model.Group, error)
	Get(ctx context.Context, id uint) (*model.Group, error)
}

type groupService struct {
	groupRepo repository.GroupRepository
}

// NewGroupService creates a new group service.
func NewGroupService(groupRepo repository.GroupRepository) GroupService {
	return &groupService{groupRepo: groupRepo}
}

func (s *groupService) List(ctx context.Context) ([]model.Group, error) {
	return s.groupRepo.List(ctx)
}

func (s *groupService) Get(ctx context.Context, id uint) (*model.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrGroupNotFound
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return group, nil
}

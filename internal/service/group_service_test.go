package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"cardwallet/internal/errors"
	"cardwallet/internal/model"
)

func TestGroupService_Get(t *testing.T) {
	t.Run("returns the category", func(t *testing.T) {
		groupRepo := new(MockGroupRepository)
		groupRepo.On("FindByID", mock.Anything, uint(3)).
			Return(&model.Group{ID: 3, Name: "Grocery"}, nil)

		svc := NewGroupService(groupRepo)
		group, err := svc.Get(context.Background(), 3)
		assert.NoError(t, err)
		assert.Equal(t, "Grocery", group.Name)
	})

	t.Run("unknown category", func(t *testing.T) {
		groupRepo := new(MockGroupRepository)
		groupRepo.On("FindByID", mock.Anything, uint(99)).
			Return(nil, gorm.ErrRecordNotFound)

		svc := NewGroupService(groupRepo)
		_, err := svc.Get(context.Background(), 99)
		assert.ErrorIs(t, err, errors.ErrGroupNotFound)
	})
}

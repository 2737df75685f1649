package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	appErrors "github.com/velora-labs/velora-backend/internal/errors"
	"github.com/velora-labs/velora-backend/internal/models"
	"github.com/velora-labs/velora-backend/internal/repositories/mocks"
	service "github.com/velora-labs/velora-backend/internal/services"
)

func TestCategoryService_CreateCategory(t *testing.T) {

	ctx := context.Background()

	t.Run("Success - Sanitizes Input", func(t *testing.T) {
		// Arrange
		mockCategoryRepo := new(mocks.CategoryRepository)
		categoryService := service.NewCategoryService(mockCategoryRepo)

		mockCategoryRepo.On("CreateCategory", ctx, mock.AnythingOfType("*models.Category")).Return(nil).Once()

		// Act
		category, err := categoryService.CreateCategory(ctx, &models.CreateCategoryRequest{
			Name:        "<i>Peripherals</i>",
			Description: "Input devices",
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Peripherals", category.Name)
		mockCategoryRepo.AssertExpectations(t)
	})

	t.Run("Fail - Duplicate Name", func(t *testing.T) {
		// Arrange
		mockCategoryRepo := new(mocks.CategoryRepository)
		categoryService := service.NewCategoryService(mockCategoryRepo)

		mockCategoryRepo.On("CreateCategory", ctx, mock.Anything).
			Return(&pq.Error{Code: "23505", Constraint: "categories_name_key"}).Once()

		// Act
		_, err := categoryService.CreateCategory(ctx, &models.CreateCategoryRequest{Name: "Peripherals"})

		// Assert
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDuplicateEntry, appErr.Code)
		assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	})

	t.Run("Fail - Other Repository Error", func(t *testing.T) {
		// Arrange
		mockCategoryRepo := new(mocks.CategoryRepository)
		categoryService := service.NewCategoryService(mockCategoryRepo)

		mockCategoryRepo.On("CreateCategory", ctx, mock.Anything).Return(errors.New("insert failed")).Once()

		// Act
		_, err := categoryService.CreateCategory(ctx, &models.CreateCategoryRequest{Name: "Peripherals"})

		// Assert
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
	})
}

func TestCategoryService_GetCategoryByID(t *testing.T) {

	ctx := context.Background()
	categoryID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockCategoryRepo := new(mocks.CategoryRepository)
		categoryService := service.NewCategoryService(mockCategoryRepo)

		category := &models.Category{ID: categoryID, Name: "Peripherals"}

		mockCategoryRepo.On("GetCategoryByID", ctx, categoryID).Return(category, nil).Once()

		// Act
		got, err := categoryService.GetCategoryByID(ctx, categoryID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, category, got)
	})

	t.Run("Fail - Unknown Category", func(t *testing.T) {
		// Arrange
		mockCategoryRepo := new(mocks.CategoryRepository)
		categoryService := service.NewCategoryService(mockCategoryRepo)

		mockCategoryRepo.On("GetCategoryByID", ctx, categoryID).Return(nil, errors.New("no rows")).Once()

		// Act
		_, err := categoryService.GetCategoryByID(ctx, categoryID)

		// Assert
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestCategoryService_UpdateCategory(t *testing.T) {

	ctx := context.Background()
	categoryID := uuid.New()

	t.Run("Success - Partial Update", func(t *testing.T) {
		// Arrange
		mockCategoryRepo := new(mocks.CategoryRepository)
		categoryService := service.NewCategoryService(mockCategoryRepo)

		existing := &models.Category{ID: categoryID, Name: "Peripherals", Description: "Input devices"}
		newName := "Accessories"

		mockCategoryRepo.On("GetCategoryByID", ctx, categoryID).Return(existing, nil).Once()
		mockCategoryRepo.On("UpdateCategory", ctx, existing).Return(nil).Once()

		// Act
		updated, err := categoryService.UpdateCategory(ctx, categoryID, &models.UpdateCategoryRequest{Name: &newName})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Accessories", updated.Name)
		assert.Equal(t, "Input devices", updated.Description, "untouched fields keep their values")
		mockCategoryRepo.AssertExpectations(t)
	})
}

func TestCategoryService_DeleteCategory(t *testing.T) {

	ctx := context.Background()
	categoryID := uuid.New()

	t.Run("Fail - Unknown Category", func(t *testing.T) {
		// Arrange
		mockCategoryRepo := new(mocks.CategoryRepository)
		categoryService := service.NewCategoryService(mockCategoryRepo)

		mockCategoryRepo.On("DeleteCategory", ctx, categoryID).Return(errors.New("no rows")).Once()

		// Act
		err := categoryService.DeleteCategory(ctx, categoryID)

		// Assert
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velora-labs/velora-backend/internal/models"
	repository "github.com/velora-labs/velora-backend/internal/repositories"
)

func TestCategoryRepository_CreateCategory(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewCategoryRepo(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		category := &models.Category{Name: "Peripherals", Description: "Input devices"}

		generatedID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`INSERT INTO categories`).
			WithArgs(category.Name, category.Description).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(generatedID, now, now))

		// Act
		err := repo.CreateCategory(ctx, category)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, generatedID, category.ID)
		assert.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})
}

func TestCategoryRepository_GetCategoryByID(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewCategoryRepo(db)
	ctx := context.Background()

	categoryID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		now := time.Now()

		mock.ExpectQuery(`FROM categories`).
			WithArgs(categoryID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}).
				AddRow(categoryID, "Peripherals", "Input devices", now, now))

		// Act
		category, err := repo.GetCategoryByID(ctx, categoryID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Peripherals", category.Name)
		assert.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})

	t.Run("Fail - Unknown Category", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`FROM categories`).
			WithArgs(categoryID).
			WillReturnError(sql.ErrNoRows)

		// Act
		_, err := repo.GetCategoryByID(ctx, categoryID)

		// Assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestCategoryRepository_ListCategories(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewCategoryRepo(db)
	ctx := context.Background()

	t.Run("Success - Ordered By Name", func(t *testing.T) {
		// Arrange
		now := time.Now()

		mock.ExpectQuery(`FROM categories\s+ORDER BY name`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}).
				AddRow(uuid.New(), "Audio", "", now, now).
				AddRow(uuid.New(), "Peripherals", "Input devices", now, now))

		// Act
		categories, err := repo.ListCategories(ctx)

		// Assert
		require.NoError(t, err)
		require.Len(t, categories, 2)
		assert.Equal(t, "Audio", categories[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})

	t.Run("Success - Empty Catalog", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`FROM categories`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}))

		// Act
		categories, err := repo.ListCategories(ctx)

		// Assert
		require.NoError(t, err)
		assert.Empty(t, categories)
	})
}

func TestCategoryRepository_UpdateCategory(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewCategoryRepo(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		category := &models.Category{ID: uuid.New(), Name: "Peripherals", Description: "Updated"}

		mock.ExpectQuery(`UPDATE categories SET`).
			WithArgs(category.Name, category.Description, category.ID).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

		// Act
		err := repo.UpdateCategory(ctx, category)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})

	t.Run("Fail - Unknown Category", func(t *testing.T) {
		// Arrange
		category := &models.Category{ID: uuid.New(), Name: "Ghost"}

		mock.ExpectQuery(`UPDATE categories SET`).
			WithArgs(category.Name, category.Description, category.ID).
			WillReturnError(sql.ErrNoRows)

		// Act
		err := repo.UpdateCategory(ctx, category)

		// Assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestCategoryRepository_DeleteCategory(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewCategoryRepo(db)
	ctx := context.Background()

	categoryID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mock.ExpectExec(`DELETE FROM categories`).
			WithArgs(categoryID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act
		err := repo.DeleteCategory(ctx, categoryID)

		// Assert
		require.NoError(t, err)
	})

	t.Run("Fail - Unknown Category", func(t *testing.T) {
		// Arrange
		mock.ExpectExec(`DELETE FROM categories`).
			WithArgs(categoryID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Act
		err := repo.DeleteCategory(ctx, categoryID)

		// Assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

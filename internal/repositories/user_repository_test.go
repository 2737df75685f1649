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

func userRows(userID uuid.UUID) *sqlmock.Rows {
	now := time.Now()

	return sqlmock.NewRows([]string{
		"id", "username", "email", "password", "full_name", "address", "phone_number", "created_at", "updated_at",
	}).AddRow(userID, "ada", "ada@example.com", "$2a$10$hash", "Ada Lovelace", "12 Analytical Way", "+15550100", now, now)
}

func TestUserRepository_CreateUser(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewUserRepo(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		user := &models.User{
			Username: "ada",
			Email:    "ada@example.com",
			Password: "$2a$10$hash",
		}

		generatedID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(user.Username, user.Email, user.Password, user.FullName, user.Address, user.PhoneNumber).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(generatedID, now, now))

		// Act
		err := repo.CreateUser(ctx, user)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, generatedID, user.ID)
		assert.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})

	t.Run("Fail - Unique Constraint Violation", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(sql.ErrConnDone)

		// Act
		err := repo.CreateUser(ctx, &models.User{Username: "ada", Email: "ada@example.com"})

		// Assert
		assert.Error(t, err)
	})
}

func TestUserRepository_GetUserByEmail(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewUserRepo(db)
	ctx := context.Background()

	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`WHERE email`).
			WithArgs("ada@example.com").
			WillReturnRows(userRows(userID))

		// Act
		user, err := repo.GetUserByEmail(ctx, "ada@example.com")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "ada", user.Username)
		assert.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})

	t.Run("Fail - Unknown Email", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`WHERE email`).
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		// Act
		_, err := repo.GetUserByEmail(ctx, "nobody@example.com")

		// Assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestUserRepository_GetUserByUsername(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewUserRepo(db)
	ctx := context.Background()

	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`WHERE username`).
			WithArgs("ada").
			WillReturnRows(userRows(userID))

		// Act
		user, err := repo.GetUserByUsername(ctx, "ada")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})
}

func TestUserRepository_GetUserById(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewUserRepo(db)
	ctx := context.Background()

	userID := uuid.New()

	t.Run("Success - Password Not Selected", func(t *testing.T) {
		// Arrange
		now := time.Now()

		mock.ExpectQuery(`WHERE id`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "username", "email", "full_name", "address", "phone_number", "created_at", "updated_at",
			}).AddRow(userID, "ada", "ada@example.com", "Ada Lovelace", "12 Analytical Way", "+15550100", now, now))

		// Act
		user, err := repo.GetUserById(ctx, userID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Empty(t, user.Password, "profile lookups never load the password hash")
		assert.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})
}

func TestUserRepository_UpdateUser(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewUserRepo(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		user := &models.User{
			ID:       uuid.New(),
			Email:    "ada@example.com",
			FullName: "Ada Lovelace",
		}

		mock.ExpectQuery(`UPDATE users SET`).
			WithArgs(user.Email, user.FullName, user.Address, user.PhoneNumber, user.ID).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

		// Act
		err := repo.UpdateUser(ctx, user)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})
}

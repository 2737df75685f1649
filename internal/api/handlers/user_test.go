package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/velora-labs/velora-backend/internal/api/handlers"
	appErrors "github.com/velora-labs/velora-backend/internal/errors"
	"github.com/velora-labs/velora-backend/internal/models"
	"github.com/velora-labs/velora-backend/internal/services/mocks"
	"github.com/velora-labs/velora-backend/internal/testutils"
)

func TestUserHandler_Register(t *testing.T) {

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		handler := handlers.NewUserHandler(mockUserService)

		authResp := &models.AuthResponse{
			User:    &models.User{ID: uuid.New(), Username: "ada", Email: "ada@example.com"},
			Access:  "access-token",
			Refresh: "refresh-token",
		}

		mockUserService.On("Register", mock.Anything, mock.MatchedBy(func(req *models.RegisterRequest) bool {
			return req.Username == "ada" && req.Email == "ada@example.com"
		})).Return(authResp, nil).Once()

		body, _ := json.Marshal(models.RegisterRequest{
			Username:  "ada",
			Email:     "ada@example.com",
			Password:  "P@ssword123!",
			Password2: "P@ssword123!",
		})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/register", bytes.NewReader(body), nil)
		rr := httptest.NewRecorder()

		// Act
		handler.Register().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)

		resp := decodeAPIResponse(t, rr)
		assert.True(t, resp.Success)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Fail - Password Mismatch", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		handler := handlers.NewUserHandler(mockUserService)

		body, _ := json.Marshal(models.RegisterRequest{
			Username:  "ada",
			Email:     "ada@example.com",
			Password:  "P@ssword123!",
			Password2: "different",
		})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/register", bytes.NewReader(body), nil)
		rr := httptest.NewRecorder()

		// Act
		handler.Register().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockUserService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("Fail - Duplicate Email", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		handler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("Register", mock.Anything, mock.Anything).
			Return(nil, appErrors.DuplicateEntryError("Email already registered")).Once()

		body, _ := json.Marshal(models.RegisterRequest{
			Username:  "ada",
			Email:     "ada@example.com",
			Password:  "P@ssword123!",
			Password2: "P@ssword123!",
		})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/register", bytes.NewReader(body), nil)
		rr := httptest.NewRecorder()

		// Act
		handler.Register().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rr.Code)

		resp := decodeAPIResponse(t, rr)
		require.NotNil(t, resp.Error)
		assert.Equal(t, appErrors.ErrCodeDuplicateEntry, resp.Error.Code)
	})
}

func TestUserHandler_Login(t *testing.T) {

	loginBody := func(t *testing.T) *bytes.Reader {
		t.Helper()

		body, err := json.Marshal(models.LoginRequest{UsernameOrEmail: "ada", Password: "P@ssword123!"})
		require.NoError(t, err)

		return bytes.NewReader(body)
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		handler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("Login", mock.Anything, mock.Anything).
			Return(&models.LoginResponse{Success: true, Access: "access", Refresh: "refresh"}, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/login", loginBody(t), nil)
		rr := httptest.NewRecorder()

		// Act
		handler.Login().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		resp := decodeAPIResponse(t, rr)
		assert.True(t, resp.Success)
	})

	t.Run("Fail - Invalid Credentials", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		handler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("Login", mock.Anything, mock.Anything).
			Return(&models.LoginResponse{Success: false, Message: "Invalid credentials", RemainingTries: 3}, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/login", loginBody(t), nil)
		rr := httptest.NewRecorder()

		// Act
		handler.Login().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		var resp models.LoginResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.False(t, resp.Success)
		assert.Equal(t, 3, resp.RemainingTries)
	})

	t.Run("Fail - Rate Limited", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		handler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("Login", mock.Anything, mock.Anything).
			Return(&models.LoginResponse{Success: false, RetryAfter: 300}, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/login", loginBody(t), nil)
		rr := httptest.NewRecorder()

		// Act
		handler.Login().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	})
}

func TestUserHandler_Refresh(t *testing.T) {

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		handler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("Refresh", mock.Anything, mock.MatchedBy(func(req *models.RefreshRequest) bool {
			return req.RefreshToken == "refresh-token"
		})).Return(&models.RefreshResponse{Access: "new-access", ExpiresIn: 900}, nil).Once()

		body, _ := json.Marshal(models.RefreshRequest{RefreshToken: "refresh-token"})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/refresh", bytes.NewReader(body), nil)
		rr := httptest.NewRecorder()

		// Act
		handler.Refresh().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Fail - Invalid Refresh Token", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		handler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("Refresh", mock.Anything, mock.Anything).
			Return(nil, appErrors.UnauthorizedError("Invalid or expired refresh token")).Once()

		body, _ := json.Marshal(models.RefreshRequest{RefreshToken: "garbage"})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/refresh", bytes.NewReader(body), nil)
		rr := httptest.NewRecorder()

		// Act
		handler.Refresh().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestUserHandler_Profile(t *testing.T) {

	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		handler := handlers.NewUserHandler(mockUserService)

		mockUserService.On("GetUserByID", mock.Anything, userID).
			Return(&models.User{ID: userID, Username: "ada"}, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/users/profile", nil, userID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.Profile().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Fail - No Claims In Context", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		handler := handlers.NewUserHandler(mockUserService)

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/users/profile", nil, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.Profile().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockUserService.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})
}

func TestUserHandler_UpdateProfile(t *testing.T) {

	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		handler := handlers.NewUserHandler(mockUserService)

		fullName := "Ada Lovelace"

		mockUserService.On("UpdateProfile", mock.Anything, userID, mock.MatchedBy(func(req *models.UpdateProfileRequest) bool {
			return req.FullName != nil && *req.FullName == fullName
		})).Return(&models.User{ID: userID, FullName: fullName}, nil).Once()

		body, _ := json.Marshal(models.UpdateProfileRequest{FullName: &fullName})
		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/api/v1/users/profile", bytes.NewReader(body), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.UpdateProfile().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Fail - Invalid Email", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		handler := handlers.NewUserHandler(mockUserService)

		badEmail := "not-an-email"

		body, _ := json.Marshal(models.UpdateProfileRequest{Email: &badEmail})
		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/api/v1/users/profile", bytes.NewReader(body), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.UpdateProfile().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockUserService.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
	})
}

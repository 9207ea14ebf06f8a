package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"accounts-web-server/internal/apperrors"
	"accounts-web-server/internal/model"
	"accounts-web-server/internal/security"
	"accounts-web-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAvatarStorage
type MockAvatarStorage struct {
	mock.Mock
}

func (m *MockAvatarStorage) GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

func (m *MockAvatarStorage) GeneratePresignedPutURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

func (m *MockAvatarStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func newTestUserService() (*service.UserService, *MockUserRepository, *MockJWTRepo, *MockAvatarStorage) {
	mockUserRepo := new(MockUserRepository)
	mockJWTRepo := new(MockJWTRepo)
	mockStorage := new(MockAvatarStorage)

	svc := service.NewUserService(
		mockUserRepo,
		mockJWTRepo,
		mockStorage,
		security.NewPasswordHasher(nil),
		nil,
	)

	return svc, mockUserRepo, mockJWTRepo, mockStorage
}

func authContext(userUUID string) context.Context {
	claims := &security.Claims{UserUUID: userUUID}
	return context.WithValue(context.Background(), security.UserContextKey, claims)
}

// ===== GET USER =====

func TestGetUser_Unauthorized(t *testing.T) {
	svc, _, _, _ := newTestUserService()

	_, err := svc.GetUser(context.Background(), "u1")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

// Чужой профиль недоступен
func TestGetUser_Forbidden(t *testing.T) {
	svc, _, _, _ := newTestUserService()

	_, err := svc.GetUser(authContext("u2"), "u1")

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestGetUser_Success(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestUserService()

	mockUserRepo.On("FindByUUID", mock.Anything, "u1").
		Return(&model.User{UUID: "u1", Email: "test@example.com", Status: model.UserStatusActive}, nil)

	user, err := svc.GetUser(authContext("u1"), "u1")

	assert.NoError(t, err)
	assert.Equal(t, "u1", user.UUID)
	mockUserRepo.AssertExpectations(t)
}

// ===== UPDATE USER =====

func TestUpdateUser_InvalidEmail(t *testing.T) {
	svc, _, _, _ := newTestUserService()

	err := svc.UpdateUser(authContext("u1"), &model.User{UUID: "u1", Email: "bad email"})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateUser_Success(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestUserService()

	updated := &model.User{UUID: "u1", Email: "new@example.com"}
	mockUserRepo.On("UpdateUser", mock.Anything, updated).Return(nil)

	err := svc.UpdateUser(authContext("u1"), updated)

	assert.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
}

// ===== UPDATE PASSWORD =====

func TestUpdatePassword_WrongOldPassword(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestUserService()

	mockUserRepo.On("FindByUUID", mock.Anything, "u1").
		Return(activeUser("u1", "goodpass"), nil)

	err := svc.UpdatePassword(authContext("u1"), "u1", "badpass", "NewStr0ng!pass")

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUpdatePassword_WeakNewPassword(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestUserService()

	mockUserRepo.On("FindByUUID", mock.Anything, "u1").
		Return(activeUser("u1", "goodpass"), nil)

	err := svc.UpdatePassword(authContext("u1"), "u1", "goodpass", "weak")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

// Смена пароля отзывает все активные сессии пользователя
func TestUpdatePassword_RevokesAllSessions(t *testing.T) {
	svc, mockUserRepo, mockJWTRepo, _ := newTestUserService()

	mockUserRepo.On("FindByUUID", mock.Anything, "u1").
		Return(activeUser("u1", "goodpass"), nil)
	mockUserRepo.On("UpdatePassword", mock.Anything, "u1", mock.MatchedBy(func(hash string) bool {
		return hash != "NewStr0ng!pass"
	})).Return(nil)
	mockJWTRepo.On("RevokeAllForUser", mock.Anything, "u1").Return(nil)

	err := svc.UpdatePassword(authContext("u1"), "u1", "goodpass", "NewStr0ng!pass")

	assert.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
	mockJWTRepo.AssertExpectations(t)
}

// ===== DEACTIVATE =====

func TestDeactivateUser_Forbidden(t *testing.T) {
	svc, _, _, _ := newTestUserService()

	err := svc.DeactivateUser(authContext("u2"), "u1")

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestDeactivateUser_RevokesAllSessions(t *testing.T) {
	svc, mockUserRepo, mockJWTRepo, _ := newTestUserService()

	mockUserRepo.On("Deactivate", mock.Anything, "u1").Return(nil)
	mockJWTRepo.On("RevokeAllForUser", mock.Anything, "u1").Return(nil)

	err := svc.DeactivateUser(authContext("u1"), "u1")

	assert.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
	mockJWTRepo.AssertExpectations(t)
}

// ===== LIST =====

func TestListUsers_Unauthorized(t *testing.T) {
	svc, _, _, _ := newTestUserService()

	_, _, err := svc.ListUsers(context.Background(), "", 10)

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestListUsers_Success(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestUserService()

	users := []*model.User{{UUID: "u1"}, {UUID: "u2"}}
	mockUserRepo.On("ListUsers", mock.Anything, "", 10).Return(users, "next-cursor", nil)

	result, cursor, err := svc.ListUsers(authContext("u1"), "", 10)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, "next-cursor", cursor)
}

// ===== AVATAR =====

func TestAvatarUploadURL_Forbidden(t *testing.T) {
	svc, _, _, _ := newTestUserService()

	_, err := svc.AvatarUploadURL(authContext("u2"), "u1")

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAvatarUploadURL_Success(t *testing.T) {
	svc, mockUserRepo, _, mockStorage := newTestUserService()

	mockUserRepo.On("Exists", mock.Anything, "u1").Return(true, nil)
	mockStorage.On("GeneratePresignedPutURL", mock.Anything, "avatars/u1", mock.Anything).
		Return("https://s3.example.com/put", nil)
	mockUserRepo.On("SetAvatarKey", mock.Anything, "u1", "avatars/u1").Return(nil)

	url, err := svc.AvatarUploadURL(authContext("u1"), "u1")

	assert.NoError(t, err)
	assert.Equal(t, "https://s3.example.com/put", url)
	mockUserRepo.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestAvatarDownloadURL_NotUploaded(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestUserService()

	mockUserRepo.On("FindByUUID", mock.Anything, "u1").
		Return(&model.User{UUID: "u1", Status: model.UserStatusActive}, nil)

	_, err := svc.AvatarDownloadURL(authContext("u1"), "u1")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAvatarDownloadURL_Success(t *testing.T) {
	svc, mockUserRepo, _, mockStorage := newTestUserService()

	user := &model.User{
		UUID:      "u2",
		Status:    model.UserStatusActive,
		AvatarKey: sql.NullString{String: "avatars/u2", Valid: true},
	}

	mockUserRepo.On("FindByUUID", mock.Anything, "u2").Return(user, nil)
	mockStorage.On("GeneratePresignedGetURL", mock.Anything, "avatars/u2", mock.Anything).
		Return("https://s3.example.com/get", nil)

	// скачивание доступно любому авторизованному пользователю
	url, err := svc.AvatarDownloadURL(authContext("u1"), "u2")

	assert.NoError(t, err)
	assert.Equal(t, "https://s3.example.com/get", url)
}

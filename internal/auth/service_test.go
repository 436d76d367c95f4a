package auth

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/masonr9/CSC400Project-sub000/internal/config"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

func setupTestService(t *testing.T) (*gorm.DB, *Service, func()) {
	dbPath := "./test_auth_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	svc := NewService(db, config.Auth{
		BcryptCost:       4, // Low cost for fast tests
		MaxLoginAttempts: 3,
		LockoutDuration:  30 * time.Minute,
	})

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, svc, cleanup
}

func TestService_CreateUser(t *testing.T) {
	_, svc, cleanup := setupTestService(t)
	defer cleanup()

	user, err := svc.CreateUser("alice", "alice@example.com", "library-pass-1", entities.UserRoleMember)

	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, entities.UserRoleMember, user.Role)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "library-pass-1", user.PasswordHash)
}

func TestService_CreateUser_Validation(t *testing.T) {
	_, svc, cleanup := setupTestService(t)
	defer cleanup()

	tests := []struct {
		name     string
		username string
		email    string
		password string
		role     entities.UserRole
		wantErr  error
	}{
		{"empty username", "", "a@example.com", "library-pass-1", entities.UserRoleMember, ErrUsernameRequired},
		{"empty email", "alice", "", "library-pass-1", entities.UserRoleMember, ErrEmailRequired},
		{"empty password", "alice", "a@example.com", "", entities.UserRoleMember, ErrPasswordRequired},
		{"bad username", "a!", "a@example.com", "library-pass-1", entities.UserRoleMember, ErrUsernameInvalid},
		{"bad email", "alice", "not-an-email", "library-pass-1", entities.UserRoleMember, ErrEmailInvalid},
		{"bad role", "alice", "a@example.com", "library-pass-1", entities.UserRole("superuser"), ErrInvalidRole},
		{"short password", "alice", "a@example.com", "short", entities.UserRoleMember, ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(tt.username, tt.email, tt.password, tt.role)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_CreateUser_Duplicate(t *testing.T) {
	_, svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.CreateUser("alice", "alice@example.com", "library-pass-1", entities.UserRoleMember)
	require.NoError(t, err)

	_, err = svc.CreateUser("alice", "other@example.com", "library-pass-1", entities.UserRoleMember)
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = svc.CreateUser("bob", "alice@example.com", "library-pass-1", entities.UserRoleMember)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_Authenticate(t *testing.T) {
	_, svc, cleanup := setupTestService(t)
	defer cleanup()

	created, err := svc.CreateUser("alice", "alice@example.com", "library-pass-1", entities.UserRoleLibrarian)
	require.NoError(t, err)

	user, err := svc.Authenticate("alice", "library-pass-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, entities.UserRoleLibrarian, user.Role)

	// Email works as login identifier too
	user, err = svc.Authenticate("alice@example.com", "library-pass-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}

func TestService_Authenticate_WrongPassword(t *testing.T) {
	_, svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.CreateUser("alice", "alice@example.com", "library-pass-1", entities.UserRoleMember)
	require.NoError(t, err)

	_, err = svc.Authenticate("alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestService_Authenticate_UnknownUser(t *testing.T) {
	_, svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.Authenticate("ghost", "library-pass-1")

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_Authenticate_Lockout(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.CreateUser("alice", "alice@example.com", "library-pass-1", entities.UserRoleMember)
	require.NoError(t, err)

	// MaxLoginAttempts is 3 in the test config
	for i := 0; i < 3; i++ {
		_, err = svc.Authenticate("alice", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	}

	var user entities.User
	db.Where("username = ?", "alice").First(&user)
	require.NotNil(t, user.LockedUntil)
	assert.True(t, user.LockedUntil.After(time.Now()))

	// Even the right password is refused while locked
	_, err = svc.Authenticate("alice", "library-pass-1")
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestService_Authenticate_SuccessResetsCounter(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.CreateUser("alice", "alice@example.com", "library-pass-1", entities.UserRoleMember)
	require.NoError(t, err)

	_, err = svc.Authenticate("alice", "wrong-password")
	assert.Error(t, err)

	_, err = svc.Authenticate("alice", "library-pass-1")
	require.NoError(t, err)

	var user entities.User
	db.Where("username = ?", "alice").First(&user)
	assert.Equal(t, 0, user.FailedLoginCount)
	assert.Nil(t, user.LockedUntil)
	assert.NotNil(t, user.LastLoginAt)
}

func TestService_ChangePassword(t *testing.T) {
	_, svc, cleanup := setupTestService(t)
	defer cleanup()

	user, err := svc.CreateUser("alice", "alice@example.com", "library-pass-1", entities.UserRoleMember)
	require.NoError(t, err)

	err = svc.ChangePassword(user.ID, "library-pass-1", "library-pass-2")
	require.NoError(t, err)

	_, err = svc.Authenticate("alice", "library-pass-2")
	assert.NoError(t, err)
}

func TestService_ChangePassword_WrongOldPassword(t *testing.T) {
	_, svc, cleanup := setupTestService(t)
	defer cleanup()

	user, err := svc.CreateUser("alice", "alice@example.com", "library-pass-1", entities.UserRoleMember)
	require.NoError(t, err)

	err = svc.ChangePassword(user.ID, "wrong-password", "library-pass-2")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestService_HasUsers(t *testing.T) {
	_, svc, cleanup := setupTestService(t)
	defer cleanup()

	hasUsers, err := svc.HasUsers()
	require.NoError(t, err)
	assert.False(t, hasUsers)

	_, err = svc.CreateUser("alice", "alice@example.com", "library-pass-1", entities.UserRoleAdmin)
	require.NoError(t, err)

	hasUsers, err = svc.HasUsers()
	require.NoError(t, err)
	assert.True(t, hasUsers)
}

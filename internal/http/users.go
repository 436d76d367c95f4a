package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/masonr9/CSC400Project-sub000/internal/audit"
	"github.com/masonr9/CSC400Project-sub000/internal/auth"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

// UserStore is the user-administration view of the user repository. Account
// creation goes through the auth service so passwords are hashed and
// validated in one place.
type UserStore interface {
	ListUsers(role entities.UserRole) ([]entities.User, error)
	GetUserByID(id uint) (*entities.User, error)
	UpdateRole(userID uint, role entities.UserRole) (int64, error)
	DeactivateUser(userID uint) error
}

type UsersController struct {
	authService *auth.Service
	store       UserStore
	auditor     *audit.Service
	sessions    *auth.SessionManager
}

func NewUsersController(authService *auth.Service, store UserStore, auditor *audit.Service, sessions *auth.SessionManager) *UsersController {
	return &UsersController{
		authService: authService,
		store:       store,
		auditor:     auditor,
		sessions:    sessions,
	}
}

// ListPage renders all accounts, optionally filtered by role.
// GET /manage/users (admin)
func (uc *UsersController) ListPage(c *gin.Context) {
	role := entities.UserRole(c.Query("role"))

	users, err := uc.store.ListUsers(role)
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
		return
	}

	renderPage(c, uc.sessions, http.StatusOK, "manage-users", gin.H{
		"Users": users,
		"Role":  string(role),
	})
}

// Create adds an account with the given role.
// POST /manage/users (admin)
func (uc *UsersController) Create(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	role := entities.UserRole(c.DefaultPostForm("role", string(entities.UserRoleMember)))

	user, err := uc.authService.CreateUser(username, email, password, role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists),
			errors.Is(err, auth.ErrInvalidRole),
			errors.Is(err, auth.ErrUsernameRequired),
			errors.Is(err, auth.ErrUsernameInvalid),
			errors.Is(err, auth.ErrEmailRequired),
			errors.Is(err, auth.ErrEmailInvalid),
			errors.Is(err, auth.ErrPasswordRequired),
			errors.Is(err, auth.ErrPasswordTooShort):
			flashError(c, uc.sessions, err.Error())
			c.Redirect(http.StatusSeeOther, "/manage/users")
		default:
			respondInternalError(c, err, "create user")
		}
		return
	}

	uc.auditor.LogAuth(GetUserID(c), "user_created", c.ClientIP(), true)
	flashSuccess(c, uc.sessions, "Account \""+user.Username+"\" created as "+string(user.Role)+".")
	c.Redirect(http.StatusSeeOther, "/manage/users")
}

// ChangeRole moves an account to a different role. Admins cannot change
// their own role; demoting the last admin would lock everyone out.
// POST /manage/users/:id/role (admin)
func (uc *UsersController) ChangeRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if id == GetUserID(c) {
		flashError(c, uc.sessions, "You cannot change your own role.")
		c.Redirect(http.StatusSeeOther, "/manage/users")
		return
	}

	role := entities.UserRole(c.PostForm("role"))
	switch role {
	case entities.UserRoleMember, entities.UserRoleLibrarian, entities.UserRoleAdmin:
	default:
		respondBadRequest(c, "invalid role")
		return
	}

	rows, err := uc.store.UpdateRole(id, role)
	if err != nil {
		respondInternalError(c, err, "change role")
		return
	}
	if rows == 0 {
		respondNotFound(c, "user")
		return
	}

	uc.auditor.LogAuth(GetUserID(c), "user_role_changed", c.ClientIP(), true)
	flashSuccess(c, uc.sessions, "Role updated to "+string(role)+".")
	c.Redirect(http.StatusSeeOther, "/manage/users")
}

// Deactivate soft-deletes an account so it can no longer sign in. Existing
// loans and fines stay on record.
// POST /manage/users/:id/deactivate (admin)
func (uc *UsersController) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if id == GetUserID(c) {
		flashError(c, uc.sessions, "You cannot deactivate your own account.")
		c.Redirect(http.StatusSeeOther, "/manage/users")
		return
	}

	user, err := uc.store.GetUserByID(id)
	if err != nil {
		respondNotFound(c, "user")
		return
	}

	if err := uc.store.DeactivateUser(id); err != nil {
		respondInternalError(c, err, "deactivate user")
		return
	}

	uc.auditor.LogAuth(GetUserID(c), "user_deactivated", c.ClientIP(), true)
	flashSuccess(c, uc.sessions, "Account \""+user.Username+"\" deactivated.")
	c.Redirect(http.StatusSeeOther, "/manage/users")
}

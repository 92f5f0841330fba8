package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"dentserver/config"
	"dentserver/db"
	"dentserver/models"
	"dentserver/utils"
)

// LoginRequest carries the credential pair plus the role picked on the
// login form. The role is matched against the account's role here, at the
// call site, not inside the identity service.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"` // "Admin" or "Patient"; empty skips the check
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// LoginHandler authenticates a credential pair and issues a token.
// @Summary      Log In
// @Description  Checks the email/password pair against the user accounts (the store is seeded with a default Admin and a default Patient account on first use). On success the session is persisted and a Bearer token is returned.
// @Description
// @Description  If a `role` is supplied it must match the account's role. A role mismatch is reported distinctly (403) from bad credentials (401), and no session is left behind in either case.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials body LoginRequest true "Email, password and the role selected on the login form."
// @Success      200  {object}  LoginResponse  "Logged in. The response carries the Bearer token and the user record."
// @Failure      400  {object}  utils.APIError "Bad Request: malformed body or missing email/password."
// @Failure      401  {object}  utils.APIError "Unauthorized: the email/password pair matches no account."
// @Failure      403  {object}  utils.APIError "Forbidden: the credentials are valid but the selected role does not match the account."
// @Failure      429  {object}  utils.APIError "Too Many Requests: login attempts from this address are rate limited."
// @Router       /auth/login [post]
func LoginHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	user, err := database.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, db.ErrInvalidCredentials) {
			utils.GinUnauthorized(c, "Invalid email or password.")
			return
		}
		utils.GinInternalServerError(c, fmt.Sprintf("Login failed: %v", err))
		return
	}

	// The role check belongs to this call site. Authenticate has already
	// persisted the session, so a mismatch must clear it again: an auth
	// failure never leaves a session change behind.
	if req.Role != "" && user.Role != req.Role {
		database.ClearSession()
		utils.GinForbidden(c, "Selected role does not match user credentials.")
		return
	}

	token, err := utils.GenerateJWT(&user, cfg)
	if err != nil {
		utils.GinInternalServerError(c, fmt.Sprintf("Failed to generate token: %v", err))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, User: user.Redacted()})
}

// LogoutHandler clears the persisted session.
// @Summary      Log Out
// @Description  Clears the persisted session. Always succeeds, whether or not anyone was logged in. The Bearer token itself simply expires.
// @Tags         Auth
// @Security     BearerAuth
// @Success      204  "Logged out."
// @Failure      401  {object}  utils.APIError "Unauthorized: missing or invalid token."
// @Router       /auth/logout [post]
func LogoutHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	database.ClearSession()
	c.Status(http.StatusNoContent)
}

// SessionHandler reports the persisted session, if any.
// @Summary      Current Session
// @Description  Returns the user persisted by the last successful login, or 404 when nobody is logged in. This is what a reloading client uses to restore its state.
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  models.User    "The active session's user."
// @Failure      404  {object}  utils.APIError "Not Found: no active session."
// @Router       /auth/session [get]
func SessionHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	user, ok := database.CurrentSession()
	if !ok {
		utils.GinNotFound(c, "No active session.")
		return
	}
	c.JSON(http.StatusOK, user.Redacted())
}

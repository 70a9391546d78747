package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PixelBoard/internal/pkg/policy"
)

// UserContext represents the complete user context for a request
type UserContext struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsAdmin    bool   `json:"is_admin"`
}

// Caller converts the context into the identity used by authorization checks.
func (u UserContext) Caller() policy.Caller {
	if !u.IsLoggedIn {
		return policy.Caller{}
	}
	return policy.Caller{ID: u.UserID, Role: u.Role}
}

// SetUserContext stores the context for later handlers.
func SetUserContext(c *fiber.Ctx, u UserContext) {
	c.Locals(KeyUserContext, u)
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return ctx
	}
	return UserContext{IsLoggedIn: false, IsAdmin: false}
}

// GetUserID returns the current user's ID, or 0 if not logged in
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}

// GetCaller returns the caller identity of the request.
func GetCaller(c *fiber.Ctx) policy.Caller {
	return GetUserContext(c).Caller()
}

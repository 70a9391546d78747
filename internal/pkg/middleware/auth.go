package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PixelBoard/app/models"
	"github.com/ManuelReschke/PixelBoard/app/repository"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/policy"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/security"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/usercontext"
)

// Authenticator resolves the bearer token of a request into a user context.
// The role is taken from the stored user, so a demoted or deleted account
// loses access before its token expires.
type Authenticator struct {
	signer *security.Signer
	users  repository.UserRepository
}

func NewAuthenticator(signer *security.Signer, users repository.UserRepository) *Authenticator {
	return &Authenticator{signer: signer, users: users}
}

// OptionalAuth sets the user context when a valid token is present and
// continues anonymously otherwise.
func (a *Authenticator) OptionalAuth(c *fiber.Ctx) error {
	if token := extractBearerToken(c); token != "" {
		if user, err := a.resolve(token); err == nil {
			usercontext.SetUserContext(c, contextFor(user))
		}
	}
	return c.Next()
}

// RequireAuth returns JSON 401 unless the request carries a valid token for
// an existing user.
func (a *Authenticator) RequireAuth(c *fiber.Ctx) error {
	token := extractBearerToken(c)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "Authorization token required",
		})
	}

	user, err := a.resolve(token)
	if err != nil {
		if errors.Is(err, security.ErrInvalidToken) || errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "Invalid or expired token",
			})
		}
		log.Errorf("[Auth] user lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "Token verification failed",
		})
	}

	usercontext.SetUserContext(c, contextFor(user))
	return c.Next()
}

// RequireAdmin must run after RequireAuth. It applies the admin gate before
// any handler logic.
func RequireAdmin(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	decision := policy.AdminGate(uc.Caller())
	if !decision.Allowed {
		log.Warnf("[Auth] admin access denied for user %d (%s): %s", uc.UserID, uc.Username, decision.Reason)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": decision.Reason,
		})
	}
	return c.Next()
}

func (a *Authenticator) resolve(token string) (*models.User, error) {
	claims, err := a.signer.Parse(token)
	if err != nil {
		return nil, err
	}
	return a.users.GetByID(claims.UserID)
}

func contextFor(user *models.User) usercontext.UserContext {
	return usercontext.UserContext{
		UserID:     user.ID,
		Username:   user.Username,
		Role:       user.Role,
		IsLoggedIn: true,
		IsAdmin:    user.IsAdmin(),
	}
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PixelBoard/internal/pkg/accounts"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/apperror"
)

type AuthController struct {
	accounts *accounts.Service
}

func NewAuthController(accounts *accounts.Service) *AuthController {
	return &AuthController{accounts: accounts}
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// loginRequest accepts either username or email as the login name.
type loginRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email" validate:"required_without=Username"`
	Password string `json:"password" validate:"required"`
}

func (ac *AuthController) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		return apperror.Respond(c, err)
	}

	user, err := ac.accounts.Register(req.Username, req.Email, req.Password)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(NewUserResponse(*user))
}

func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		return apperror.Respond(c, err)
	}

	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}
	result, err := ac.accounts.Login(identifier, req.Password)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{
		"token": result.Token,
		"user":  NewUserResponse(*result.User),
	})
}

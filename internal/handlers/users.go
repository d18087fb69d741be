// users.go
//
// DD Property listing API
// Copyright (c) 2026 DD Property Co., Ltd.
//
// This file is part of ddproperty-api.
// ddproperty-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ddproperty-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ddproperty-api.
// If not, see <https://www.gnu.org/licenses/>.

package handlers

import (
	"github.com/ddproperty/ddproperty-api/internal/middleware"
	"github.com/ddproperty/ddproperty-api/internal/services"
	"github.com/ddproperty/ddproperty-api/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles sign up and login
type AuthHandler struct {
	Auth         *services.AuthService
	SecureCookie bool
}

// Register handles POST /api/auth/register
// @Summary Register
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Account"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.Auth.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	h.setCookie(c, res)
	return utils.SuccessResponse(c, res, fiber.StatusCreated)
}

// Login handles POST /api/auth/login
// @Summary Login
// @Description Returns a bearer token and sets it as the token cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Credentials"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in services.LoginInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.Auth.Login(c.UserContext(), in)
	if err != nil {
		return err
	}
	h.setCookie(c, res)
	return utils.SuccessResponse(c, res, fiber.StatusOK)
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Clears the token cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.MessageResponseStruct
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.TokenCookie)
	return utils.MessageResponse(c, "Logged out")
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, res *services.AuthResult) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    res.Token,
		Expires:  res.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// UserHandler handles account routes
type UserHandler struct {
	Users *services.UserService
}

// Me handles GET /api/users/me
// @Summary My account
// @Tags Users
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Security BearerAuth
// @Router /users/me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	u, err := h.Users.Me(c.UserContext(), middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, u, fiber.StatusOK)
}

// ChangePassword handles PUT /api/users/me/password
// @Summary Change my password
// @Tags Users
// @Accept json
// @Produce json
// @Param body body services.PasswordChange true "Passwords"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/me/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var in services.PasswordChange
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if err := h.Users.ChangePassword(c.UserContext(), middleware.ActorFrom(c), in); err != nil {
		return err
	}
	return utils.MessageResponse(c, "Password updated successfully")
}

// List handles GET /api/users
// @Summary List users
// @Tags Users
// @Produce json
// @Param search query string false "Name or email"
// @Param role query string false "USER, AGENT or ADMIN"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} utils.PagedResponseStruct
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	page, err := h.Users.List(c.UserContext(), middleware.ActorFrom(c), queryMap(c))
	if err != nil {
		return err
	}
	return utils.PagedResponse(c, page.Data, page.Meta)
}

// Get handles GET /api/users/:id
// @Summary Get a user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.Users.Get(c.UserContext(), middleware.ActorFrom(c), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, u, fiber.StatusOK)
}

// Create handles POST /api/users
// @Summary Create a user
// @Tags Users
// @Accept json
// @Produce json
// @Param body body services.UserInput true "Account"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in services.UserInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	u, err := h.Users.Create(c.UserContext(), middleware.ActorFrom(c), in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, u, fiber.StatusCreated)
}

// Update handles PUT /api/users/:id
// @Summary Update a user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param body body services.UserInput true "Fields to change"
// @Success 200 {object} utils.SuccessResponseStruct
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in services.UserInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	u, err := h.Users.Update(c.UserContext(), middleware.ActorFrom(c), id, in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, u, fiber.StatusOK)
}

// Delete handles DELETE /api/users/:id
// @Summary Delete a user
// @Description Users that still own properties cannot be deleted
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Users.Delete(c.UserContext(), middleware.ActorFrom(c), id); err != nil {
		return err
	}
	return utils.MessageResponse(c, "User deleted successfully")
}

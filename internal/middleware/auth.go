// auth.go
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

package middleware

import (
	"crypto/subtle"
	"slices"
	"strings"

	"github.com/ddproperty/ddproperty-api/internal/services"
	"github.com/ddproperty/ddproperty-api/internal/types"
	"github.com/gofiber/fiber/v2"
)

const actorKey = "actor"

// TokenCookie is the cookie the login endpoint sets.
const TokenCookie = "token"

// TokenParser verifies an access token.
type TokenParser interface {
	Parse(token string) (services.Actor, error)
}

// Authenticate requires a valid bearer token or token cookie and stores the
// actor for the handlers.
func Authenticate(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			token = c.Cookies(TokenCookie)
		}
		if token == "" {
			return types.Unauthorized("Authentication required")
		}

		actor, err := parser.Parse(token)
		if err != nil {
			return types.Unauthorized("Invalid or expired token")
		}
		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// RequireRole admits only actors holding one of roles. It must follow
// Authenticate.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFrom(c)
		if !actor.Authenticated() {
			return types.Unauthorized("Authentication required")
		}
		if !slices.Contains(roles, actor.Role) {
			return types.Forbidden("You do not have permission to access this resource")
		}
		return c.Next()
	}
}

// APIKey requires the X-API-Key header to match key. With no key configured
// every request is refused.
func APIKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		given := c.Get("X-API-Key")
		if key == "" || given == "" {
			return types.Unauthorized("API key required")
		}
		if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			return types.Forbidden("Invalid API key")
		}
		return c.Next()
	}
}

// ActorFrom returns the authenticated actor, or the zero Actor.
func ActorFrom(c *fiber.Ctx) services.Actor {
	actor, _ := c.Locals(actorKey).(services.Actor)
	return actor
}

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

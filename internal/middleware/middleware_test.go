package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/services"
	"github.com/ddproperty/ddproperty-api/internal/types"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubParser map[string]services.Actor

func (s stubParser) Parse(token string) (services.Actor, error) {
	if a, ok := s[token]; ok {
		return a, nil
	}
	return services.Actor{}, errors.New("bad token")
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(statusOf(err)).SendString(err.Error())
		},
	})
}

func TestAuthenticate(t *testing.T) {
	parser := stubParser{
		"user-token":  {ID: 1, Role: models.RoleUser},
		"admin-token": {ID: 2, Role: models.RoleAdmin},
	}
	app := newApp()
	app.Get("/me", Authenticate(parser), func(c *fiber.Ctx) error {
		return c.JSON(ActorFrom(c))
	})
	app.Get("/admin", Authenticate(parser), RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	cases := []struct {
		name   string
		path   string
		header string
		cookie string
		want   int
	}{
		{"no credentials", "/me", "", "", http.StatusUnauthorized},
		{"bad token", "/me", "Bearer nope", "", http.StatusUnauthorized},
		{"bearer", "/me", "Bearer user-token", "", http.StatusOK},
		{"lowercase scheme", "/me", "bearer user-token", "", http.StatusOK},
		{"cookie", "/me", "", "user-token", http.StatusOK},
		{"wrong role", "/admin", "Bearer user-token", "", http.StatusForbidden},
		{"admin", "/admin", "Bearer admin-token", "", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tc.cookie})
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestAPIKey(t *testing.T) {
	app := newApp()
	app.Get("/feed", APIKey("k3y"), func(c *fiber.Ctx) error { return c.SendString("ok") })
	closed := newApp()
	closed.Get("/feed", APIKey(""), func(c *fiber.Ctx) error { return c.SendString("ok") })

	for _, tc := range []struct {
		app  *fiber.App
		key  string
		want int
	}{
		{app, "", http.StatusUnauthorized},
		{app, "wrong", http.StatusForbidden},
		{app, "k3y", http.StatusOK},
		{closed, "anything", http.StatusUnauthorized},
	} {
		req := httptest.NewRequest(http.MethodGet, "/feed", nil)
		if tc.key != "" {
			req.Header.Set("X-API-Key", tc.key)
		}
		resp, err := tc.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, tc.key)
	}
}

func TestVersionMiddleware(t *testing.T) {
	app := newApp()
	app.Use(VersionMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(APIVersion(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Api-Version", "v1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, CurrentAPIVersion, resp.Header.Get("X-Api-Version"))

	body := make([]byte, 16)
	n, _ := resp.Body.Read(body)
	assert.Equal(t, "1.0.0", string(body[:n]))
}

func TestRequestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := newApp()
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return types.NotFound("nothing here") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.EqualValues(t, 404, entries[1].ContextMap()["status"])
}

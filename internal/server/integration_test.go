package server_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/ddproperty/ddproperty-api/internal/database"
	"github.com/ddproperty/ddproperty-api/internal/server"
	"github.com/ddproperty/ddproperty-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestMariaDB runs the property flow against a real MariaDB container.
func TestMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()
	if !testdb.DockerAvailable(ctx) {
		t.Skip("docker is not available")
	}

	mdb, err := testdb.StartMariaDB(ctx, testdb.MariaDBOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { mdb.Terminate(context.Background()) })

	cfg := mdb.Config()
	cfg.BaseURL = "http://api.test"
	cfg.APIKey = "feed-key"
	cfg.JWTExpiryHours = 1
	cfg.UploadDir = t.TempDir()
	cfg.MaxUploadMB = 1

	db, err := database.Connect(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	require.NoError(t, database.AutoMigrate(db))

	srv, err := server.New(server.Deps{Config: cfg, DB: db})
	require.NoError(t, err)
	h := &harness{t: t, cfg: cfg, db: db, srv: srv}

	owner := h.register("owner@example.com")
	for _, title := range []string{"First", "Second"} {
		resp, env := h.request(http.MethodPost, "/api/properties", owner, map[string]interface{}{
			"propertyType": "CONDO", "title": title, "price": 1000000,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	}

	resp, env := h.request(http.MethodGet, "/api/properties?sortBy=price&sortOrder=asc", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), env.Meta.Total)

	resp, env = h.request(http.MethodGet, "/api/properties/price-types", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	resp, _ = h.request(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory/internal/config"
	"inventory/internal/logger"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	v := viper.New()
	v.Set("DATABASE_DRIVER", "sqlite")
	v.Set("DATABASE_DSN", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	v.Set("RABBITMQ_URL", "")
	v.Set("STORE_TIMEOUT", "2s")
	cfg := config.Load(v)

	app, err := NewApp(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func TestNewAppHealthCheck(t *testing.T) {
	app := newTestApp(t)
	assert.Nil(t, app.MQClient)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "disabled", body["rabbitMQ"])
}

func TestNewAppServesProducts(t *testing.T) {
	app := newTestApp(t)

	payload := []byte(`{
		"name": "Widget",
		"sku": "W-1",
		"price": 12.5,
		"amountInStock": 10,
		"manufacturer": {
			"name": "Acme",
			"country": "Sweden",
			"address": "Storgatan 1",
			"contact": {"name": "Anna Svensson", "email": "anna@acme.test", "phone": "+46 70 123 45 67"}
		}
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Fiber.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/products?limit=5", nil)
	resp, err = app.Fiber.Test(req, int(5*time.Second/time.Millisecond))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Items []map[string]interface{} `json:"items"`
		Total int                      `json:"total"`
		Limit int                      `json:"limit"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 5, page.Limit)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "W-1", page.Items[0]["sku"])
}

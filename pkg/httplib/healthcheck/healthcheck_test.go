package healthcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeHTTP(t *testing.T) {
	t.Run("all checks healthy", func(t *testing.T) {
		hc := New(time.Second)
		hc.Register("postgresql", func(ctx context.Context) error { return nil })
		hc.Register("redis", func(ctx context.Context) error { return nil })

		rec := httptest.NewRecorder()
		hc.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "ok", resp.Checks["postgresql"])
		assert.Equal(t, "ok", resp.Checks["redis"])
	})

	t.Run("failing check degrades status", func(t *testing.T) {
		hc := New(time.Second)
		hc.Register("postgresql", func(ctx context.Context) error { return nil })
		hc.Register("redis", func(ctx context.Context) error {
			return errors.New("connection refused")
		})

		rec := httptest.NewRecorder()
		hc.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "connection refused", resp.Checks["redis"])
		assert.Equal(t, "ok", resp.Checks["postgresql"])
	})
}

func TestHandler(t *testing.T) {
	hc := New(time.Second)
	hc.Register("postgresql", func(ctx context.Context) error { return nil })

	var passedThrough bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		passedThrough = true
	})

	handler := hc.Handler(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, passedThrough)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.True(t, passedThrough)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(g *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthEndpoints(t *testing.T) {
	g := gin.New()
	RegisterHealth(g, time.Now())

	w := get(g, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Banner, w.Body.String())

	w = get(g, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", w.Body.String())

	w = get(g, "/api/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Server is running"}`, w.Body.String())
}

func TestReadyReportsDependencies(t *testing.T) {
	storeUp := true
	g := gin.New()
	RegisterHealth(g, time.Now(),
		Dependency{Name: "store", Required: true, Check: func(context.Context) error {
			if storeUp {
				return nil
			}
			return errors.New("connection refused")
		}},
		Dependency{Name: "mail", Check: func(context.Context) error { return errors.New("no relay") }},
	)

	w := get(g, "/ready")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string          `json:"status"`
		Deps   map[string]bool `json:"deps"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, map[string]bool{"store": true, "mail": false}, body.Deps)

	storeUp = false
	w = get(g, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itakarlapalli/subcentre/internal/patient"
	"github.com/itakarlapalli/subcentre/internal/patient/service"
)

func init() { gin.SetMode(gin.TestMode) }

func do(g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	g.ServeHTTP(w, req)
	return w
}

func TestPatientHandler_CRUD(t *testing.T) {
	g := gin.New()
	RegisterPatientRoutes(g, service.NewMemoryService())

	// create
	w := do(g, http.MethodPost, "/api/patients", `{"name":"Asha","age":"34","village":"Itakarlapalli"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id, ok := created["id"].(float64)
	require.True(t, ok, "id must be numeric: %v", created["id"])
	assert.Equal(t, "Asha", created["name"])
	assert.Equal(t, 34.0, created["age"])
	assert.Equal(t, "Itakarlapalli", created["village"])
	assert.NotEmpty(t, created["createdAt"])

	// list
	w = do(g, http.MethodGet, "/api/patients", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []patient.Patient
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, int64(id), list[0].ID)

	// update
	w = do(g, http.MethodPut, fmt.Sprintf("/api/patients/%d", int64(id)), `{"name":"Asha","age":35,"village":"Garbham"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated patient.Patient
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, 35, updated.Age)
	assert.Equal(t, "Garbham", updated.Village)

	w = do(g, http.MethodGet, "/api/patients", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Garbham", list[0].Village)

	// delete
	w = do(g, http.MethodDelete, fmt.Sprintf("/api/patients/%d", int64(id)), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Patient deleted successfully"}`, w.Body.String())

	w = do(g, http.MethodGet, "/api/patients", "")
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(g, http.MethodDelete, fmt.Sprintf("/api/patients/%d", int64(id)), "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatientHandler_UpdateUnknownID(t *testing.T) {
	g := gin.New()
	RegisterPatientRoutes(g, service.NewMemoryService())

	w := do(g, http.MethodPut, "/api/patients/999999", `{"name":"Asha","age":"34","village":"Itakarlapalli"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "Patient with ID 999999 not found."}`, w.Body.String())
}

func TestPatientHandler_ValidationDoesNotMutate(t *testing.T) {
	g := gin.New()
	svc := service.NewMemoryService()
	RegisterPatientRoutes(g, svc)

	bodies := []string{
		`{"age":"34","village":"Itakarlapalli"}`,
		`{"name":"Asha","village":"Itakarlapalli"}`,
		`{"name":"Asha","age":"34"}`,
		`{"name":"Asha","age":"-2","village":"Itakarlapalli"}`,
		`{"name":"Asha","age":"old","village":"Itakarlapalli"}`,
		`not json`,
		``,
	}
	for _, b := range bodies {
		w := do(g, http.MethodPost, "/api/patients", b)
		assert.Equal(t, http.StatusBadRequest, w.Code, b)
		assert.Contains(t, w.Body.String(), `"error"`, b)
	}

	w := do(g, http.MethodPost, "/api/patients", `{"name":"Asha","age":34,"village":"Itakarlapalli"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var p patient.Patient
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))

	w = do(g, http.MethodPut, fmt.Sprintf("/api/patients/%d", p.ID), `{"name":"","age":34,"village":"Itakarlapalli"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"name is required","field":"name"}`, w.Body.String())

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Asha", list[0].Name)
}

func TestPatientHandler_InvalidPathID(t *testing.T) {
	g := gin.New()
	RegisterPatientRoutes(g, service.NewMemoryService())

	w := do(g, http.MethodDelete, "/api/patients/abc", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = do(g, http.MethodPut, "/api/patients/1.5", `{"name":"a","age":1,"village":"v"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatientHandler_NewestFirst(t *testing.T) {
	g := gin.New()
	RegisterPatientRoutes(g, service.NewMemoryService())
	for _, n := range []string{"first", "second", "third"} {
		w := do(g, http.MethodPost, "/api/patients", fmt.Sprintf(`{"name":%q,"age":1,"village":"v"}`, n))
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := do(g, http.MethodGet, "/api/patients", "")
	var list []patient.Patient
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Name)
	assert.Equal(t, "first", list[2].Name)
}

// brokenService fails every call with a storage error.
type brokenService struct{ service.Service }

func (brokenService) List(context.Context) ([]*patient.Patient, error) {
	return nil, &patient.StorageError{Op: "list", Err: errors.New("db down")}
}

func (brokenService) Create(context.Context, patient.Input) (*patient.Patient, error) {
	return nil, &patient.StorageError{Op: "create", Err: errors.New("db down")}
}

func (brokenService) Delete(context.Context, int64) error {
	return &patient.StorageError{Op: "delete", Err: errors.New("db down")}
}

func TestPatientHandler_StorageErrors(t *testing.T) {
	g := gin.New()
	RegisterPatientRoutes(g, brokenService{})

	w := do(g, http.MethodGet, "/api/patients", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to retrieve patients data"}`, w.Body.String())

	w = do(g, http.MethodPost, "/api/patients", `{"name":"a","age":1,"village":"v"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")

	w = do(g, http.MethodDelete, "/api/patients/3", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGetDecodesEnvelope(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects", r.URL.Path)
		assert.Equal(t, "demo", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":0,"message":"success","data":{"total":3}}`))
	}))
	defer backend.Close()

	c := NewClient(backend.URL)
	var out struct {
		Total int64 `json:"total"`
	}
	q := url.Values{}
	q.Set("q", "demo")
	require.NoError(t, c.Get("/projects", q, "", &out))
	assert.EqualValues(t, 3, out.Total)
}

func TestClientForwardsBearerToken(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Write([]byte(`{"code":0,"message":"success","data":null}`))
	}))
	defer backend.Close()

	c := NewClient(backend.URL)
	require.NoError(t, c.Get("/auth/me", nil, "tok-123", nil))
}

func TestClientSurfacesBackendErrors(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":40430,"message":"Ресторан не знайдено","data":null}`))
	}))
	defer backend.Close()

	c := NewClient(backend.URL)
	err := c.Get("/restaurants/99", nil, "", nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, 40430, apiErr.Code)
	assert.Equal(t, "Ресторан не знайдено", apiErr.Message)
}

func TestClientPostJSON(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"code":0,"message":"success","data":{"id":1}}`))
	}))
	defer backend.Close()

	c := NewClient(backend.URL)
	var out struct {
		ID uint `json:"id"`
	}
	require.NoError(t, c.PostJSON("/users", map[string]string{"name": "x"}, "", &out))
	assert.EqualValues(t, 1, out.ID)
}

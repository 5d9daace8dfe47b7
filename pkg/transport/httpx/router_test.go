package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChiRouter_MethodsAndParams(t *testing.T) {
	r := NewChi()
	r.Get("/booking/list/{date}", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(URLParam(req, "date")))
	}))
	r.Handle(http.MethodPatch, "/x", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/booking/list/2024-05-01", nil))
	assert.Equal(t, "2024-05-01", rec.Body.String())

	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/x", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/booking/list/2024-05-01", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

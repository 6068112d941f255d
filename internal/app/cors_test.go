package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	tests := []struct {
		name       string
		origins    []string
		origin     string
		preflight  bool
		wantStatus int
		wantOrigin string
	}{
		{name: "no origin header", origins: []string{"http://a.test"}, wantStatus: http.StatusTeapot},
		{name: "allowed origin", origins: []string{"http://a.test"}, origin: "http://a.test", wantStatus: http.StatusTeapot, wantOrigin: "http://a.test"},
		{name: "unknown origin", origins: []string{"http://a.test"}, origin: "http://b.test", wantStatus: http.StatusTeapot},
		{name: "wildcard", origins: []string{"*"}, origin: "http://b.test", wantStatus: http.StatusTeapot, wantOrigin: "*"},
		{name: "preflight", origins: []string{" http://a.test "}, origin: "http://a.test", preflight: true, wantStatus: http.StatusNoContent, wantOrigin: "http://a.test"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			method := http.MethodGet
			if tc.preflight {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "/api/auth/me", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			}
			rec := httptest.NewRecorder()
			CORS(tc.origins)(ok).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	http_handler "github.com/Notifuse/emailbuilder/internal/http"
	"github.com/Notifuse/emailbuilder/pkg/logger"
)

type staticSessions int

func (s staticSessions) OpenSessions() int {
	return int(s)
}

func TestRootHandler(t *testing.T) {
	mux := newTestMux(http_handler.NewRootHandler(logger.NewTestLogger(t), "1.2.3", staticSessions(4)))

	t.Run("service info", func(t *testing.T) {
		rec := doRequest(t, mux, http.MethodGet, "/", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "emailbuilder", body["service"])
		assert.Equal(t, "1.2.3", body["version"])
	})

	t.Run("health", func(t *testing.T) {
		rec := doRequest(t, mux, http.MethodGet, "/api/health", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, float64(4), body["open_sessions"])
	})

	t.Run("unknown path", func(t *testing.T) {
		rec := doRequest(t, mux, http.MethodGet, "/api/unknown", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

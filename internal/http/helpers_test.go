package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/emailbuilder/internal/http/middleware"
	pkgmocks "github.com/Notifuse/emailbuilder/pkg/mocks"
)

var testJWTSecret = []byte("test-jwt-secret-key-for-testing-32bytes")

func getTestSecret() ([]byte, error) {
	return testJWTSecret, nil
}

func newMockLogger(ctrl *gomock.Controller) *pkgmocks.MockLogger {
	mockLogger := pkgmocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().WithField(gomock.Any(), gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().WithFields(gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()
	return mockLogger
}

func createTestToken(t *testing.T) string {
	token, err := middleware.SignToken("test-user", "test@example.com", testJWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

type routes interface {
	RegisterRoutes(mux *http.ServeMux)
}

func newTestMux(handlers ...routes) *http.ServeMux {
	mux := http.NewServeMux()
	for _, h := range handlers {
		h.RegisterRoutes(mux)
	}
	return mux
}

// doRequest sends a request through mux. A string body is sent as is, other
// values are encoded to JSON.
func doRequest(t *testing.T, mux *http.ServeMux, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

package common_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/branch-digest/internal/common"
)

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	require.Equal(t, "192.0.2.7", common.ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	require.Equal(t, "198.51.100.2", common.ClientIP(req))

	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	require.Equal(t, "203.0.113.9", common.ClientIP(req))

	require.Empty(t, common.ClientIP(nil))
}

func TestParseIntDefault(t *testing.T) {
	require.Equal(t, 7, common.ParseIntDefault("", 7))
	require.Equal(t, 7, common.ParseIntDefault("seven", 7))
	require.Equal(t, 12, common.ParseIntDefault(" 12 ", 7))
}

func TestWriteError(t *testing.T) {
	appErr := common.NewAppError("VALIDATION_FAILED", "please enter all values correctly", http.StatusBadRequest, nil)
	appErr.Details = map[string]string{"qty": "required"}

	rec := httptest.NewRecorder()
	common.WriteError(rec, appErr)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error common.ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "VALIDATION_FAILED", body.Error.Code)
	require.Equal(t, map[string]any{"qty": "required"}, body.Error.Details)

	rec = httptest.NewRecorder()
	common.WriteError(rec, errors.New("disk on fire"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "disk on fire")
}

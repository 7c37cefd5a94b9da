package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var errStockGone = errors.New("stock gone")

func serve(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/probe", handler)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	router.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestRespondError_UnexpectedIsGeneric(t *testing.T) {
	rec, body := serve(t, func(c *gin.Context) {
		NewResponder("").RespondError(c, errors.New("pq: connection refused to 10.0.0.7"))
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	require.Equal(t, false, body["success"])
	require.Equal(t, "Server error", body["message"])
	require.NotContains(t, rec.Body.String(), "10.0.0.7")
}

func TestChainedResponder_UsesMapper(t *testing.T) {
	responder := NewChainedResponder("", func(err error) (ProblemDetail, bool) {
		if errors.Is(err, errStockGone) {
			return ErrStock.WithDetail("Insufficient quantity for Rice"), true
		}
		return ProblemDetail{}, false
	})

	rec, body := serve(t, func(c *gin.Context) {
		responder.RespondError(c, fmt.Errorf("reserve: %w", errStockGone))
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Insufficient quantity for Rice", body["message"])
	require.Equal(t, TypeStock, body["type"])
	require.Equal(t, "/probe", body["instance"])
}

func TestWithExtension_DoesNotShareTemplateMap(t *testing.T) {
	first := ErrValidation.WithExtension("fields", map[string]string{"a": "b"})
	second := ErrValidation.WithExtension("other", 1)

	require.Len(t, first.Extensions, 1)
	require.Len(t, second.Extensions, 1)
	require.Nil(t, ErrValidation.Extensions)
}

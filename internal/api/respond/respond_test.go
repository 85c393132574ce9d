package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClassify(t *testing.T) {
	type payload struct {
		To string `validate:"required"`
	}
	validationErr := Validate(&payload{})

	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: expired", apperrors.ErrUnauthenticated), http.StatusUnauthorized},
		{apperrors.ErrInvalidParticipant, http.StatusBadRequest},
		{apperrors.ErrEmptyMessage, http.StatusBadRequest},
		{validationErr, http.StatusBadRequest},
		{apperrors.ErrNotFound, http.StatusNotFound},
		{apperrors.Persistence("insert", errors.New("down")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, _ := Classify(tt.err)
			require.Equal(t, tt.status, status)
		})
	}
}

func TestError_Hides_Internal_Detail(t *testing.T) {
	req := require.New(t)
	w := httptest.NewRecorder()

	Error(w, zap.NewNop(), errors.New("secret connection string"))

	req.Equal(http.StatusInternalServerError, w.Code)
	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	req.NoError(json.NewDecoder(w.Body).Decode(&body))
	req.Equal("internal", body.Error.Type)
	req.NotContains(body.Error.Message, "secret")
}

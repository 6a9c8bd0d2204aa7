package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recicla-soft/recicla/internal/shared"
)

func TestRespondErrorMapsKinds(t *testing.T) {
	cases := []struct {
		kind   shared.ErrorKind
		status int
	}{
		{shared.KindInvalidInput, http.StatusBadRequest},
		{shared.KindDuplicateName, http.StatusConflict},
		{shared.KindUnknownMaterial, http.StatusUnprocessableEntity},
		{shared.KindInvalidTransaction, http.StatusUnprocessableEntity},
		{shared.KindForbidden, http.StatusForbidden},
		{shared.KindNotFound, http.StatusNotFound},
		{shared.KindUnauthorized, http.StatusUnauthorized},
		{shared.KindStorage, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, shared.NewError(tc.kind, "boom"))
			require.Equal(t, tc.status, rec.Code)

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, string(tc.kind), body.Error.Kind)
			require.Equal(t, "boom", body.Error.Message)
		})
	}
}

func TestRespondErrorHidesUnclassifiedErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("pg: connection reset"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "internal", body.Error.Kind)
	require.NotContains(t, body.Error.Message, "pg:")
}

func TestRespondErrorKeepsWrappedKind(t *testing.T) {
	rec := httptest.NewRecorder()
	err := shared.WrapError(shared.KindStorage, "ledger store unavailable", errors.New("dial tcp: refused"))
	RespondError(rec, err)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ledger store unavailable", body.Error.Message)
	require.NotContains(t, body.Error.Message, "dial tcp")
}

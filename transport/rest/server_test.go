package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRoomLister struct {
	rooms []string
}

func (that *staticRoomLister) ListJoinableRooms(_ context.Context) ([]string, error) {
	return that.rooms, nil
}

func TestPingHandler(t *testing.T) {
	recorder := httptest.NewRecorder()

	pingHandler(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))

	body, err := io.ReadAll(recorder.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "pong", string(body))
}

func TestRoomsHandler(t *testing.T) {
	t.Run("Returns the joinable listing as JSON", func(t *testing.T) {
		// Given: two advertised rooms
		handler := roomsHandler(&staticRoomLister{rooms: []string{"ab12cd34", "ef56gh78"}})
		recorder := httptest.NewRecorder()

		// When: the listing is requested
		handler(recorder, httptest.NewRequest(http.MethodGet, "/rooms", nil))

		// Then: both ids come back under the rooms key
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

		var response map[string][]string
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
		assert.Equal(t, []string{"ab12cd34", "ef56gh78"}, response["rooms"])
	})

	t.Run("Empty listing is still valid JSON", func(t *testing.T) {
		handler := roomsHandler(&staticRoomLister{})
		recorder := httptest.NewRecorder()

		handler(recorder, httptest.NewRequest(http.MethodGet, "/rooms", nil))

		require.Equal(t, http.StatusOK, recorder.Code)

		var response map[string][]string
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
		assert.Empty(t, response["rooms"])
	})
}

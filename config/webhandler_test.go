package config

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigHandler_Get(t *testing.T) {
	configFile := createConfigFile(t, getBaseConfig())
	handler := ConfigHandler(configFile)

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got RuntimeConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []string{"2,2:SE:IA", "2,1:E:WF", "1,1:U:WFT"}, got.Strip.Leds)
	assert.True(t, got.Strip.Animation)
}

func TestConfigHandler_SetValidation(t *testing.T) {
	configFile := createConfigFile(t, getBaseConfig())

	tests := []struct {
		name         string
		payload      RuntimeConfig
		wantStatus   int
		wantErrorMsg string
		shouldModify bool
	}{
		{
			name: "Valid Update",
			payload: RuntimeConfig{Strip: StripConfig{
				Leds:      []string{"0,0:N:F", "1,0:N:F", "2,0::T"},
				Colors:    []string{"0,0,0"},
				Animation: false,
			}},
			wantStatus:   http.StatusOK,
			shouldModify: true,
		},
		{
			name: "Back To Defaults",
			payload: RuntimeConfig{Strip: StripConfig{
				Animation: true,
			}},
			wantStatus:   http.StatusOK,
			shouldModify: true,
		},
		{
			name: "Missing Separator",
			payload: RuntimeConfig{Strip: StripConfig{
				Leds: []string{"0,0:N"},
			}},
			wantStatus:   http.StatusBadRequest,
			wantErrorMsg: "separator missing",
		},
		{
			name: "Hue Out Of Range",
			payload: RuntimeConfig{Strip: StripConfig{
				Colors: []string{"360,0,0"},
			}},
			wantStatus:   http.StatusBadRequest,
			wantErrorMsg: "out of range",
		},
		{
			name: "Too Many Leds",
			payload: RuntimeConfig{Strip: StripConfig{
				Leds: make([]string, 33),
			}},
			wantStatus:   http.StatusBadRequest,
			wantErrorMsg: "at most 32",
		},
	}

	handler := ConfigHandler(configFile)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := ReadConfig(configFile)
			require.NoError(t, err)

			body, _ := json.Marshal(tt.payload)
			req := httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewBuffer(body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			var result UpdateResult
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
			if tt.wantErrorMsg != "" {
				require.NotEmpty(t, result.Errors)
				assert.Contains(t, result.Errors[0], tt.wantErrorMsg)
				assert.Nil(t, result.Strip)
			} else {
				assert.NotNil(t, result.Strip)
			}

			current, err := ReadConfig(configFile)
			require.NoError(t, err)
			if tt.shouldModify {
				if len(tt.payload.Strip.Leds) == 0 {
					assert.Empty(t, current.Strip.Leds)
				} else {
					assert.Equal(t, tt.payload.Strip.Leds, current.Strip.Leds)
				}
				assert.Equal(t, tt.payload.Strip.Animation, current.Strip.Animation)
			} else {
				assert.Equal(t, before.Strip, current.Strip, "file must not change")
			}
			// the rest of the file survives the rewrite
			assert.Equal(t, before.Hardware, current.Hardware)
			assert.Equal(t, before.Simulation, current.Simulation)
		})
	}
}

func TestConfigHandler_ReportsStrip(t *testing.T) {
	configFile := createConfigFile(t, getBaseConfig())
	handler := ConfigHandler(configFile)

	post := func(payload RuntimeConfig) (int, UpdateResult) {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewBuffer(body)))
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var result UpdateResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		return w.Code, result
	}

	status, result := post(RuntimeConfig{Strip: StripConfig{
		Leds:      []string{"0,0:N:IF", "3,0:N:IF"},
		Colors:    []string{"10,0,0"},
		Animation: true,
	}})
	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, result.Strip)
	assert.Equal(t, StripSummary{Leds: 2, Width: 4, Height: 1, Colors: 1, Animation: true}, *result.Strip)

	status, result = post(RuntimeConfig{})
	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, result.Strip)
	assert.True(t, result.Strip.Defaults)
	assert.Equal(t, 12, result.Strip.Leds)

	// a broken descriptor and a broken color are both reported
	status, result = post(RuntimeConfig{Strip: StripConfig{
		Leds:   []string{"0,0:N:F", "1,1"},
		Colors: []string{"0,256,0"},
	}})
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Strip.Leds[1]")
	assert.Contains(t, result.Errors[1], "Strip.Colors[0]")
}

func TestConfigHandler_BadRequests(t *testing.T) {
	configFile := createConfigFile(t, getBaseConfig())
	handler := ConfigHandler(configFile)

	req := httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/config", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	require.NoError(t, os.Remove(configFile))
	req = httptest.NewRequest(http.MethodGet, "/api/config", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

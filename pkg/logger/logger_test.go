package logger

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		opts          Options
		expectedLevel logrus.Level
		expectJSON    bool
	}{
		{
			name:          "production defaults to info json",
			expectedLevel: logrus.InfoLevel,
			expectJSON:    true,
		},
		{
			name:          "development defaults to debug text",
			opts:          Options{Development: true},
			expectedLevel: logrus.DebugLevel,
			expectJSON:    false,
		},
		{
			name:          "development with json format",
			opts:          Options{Level: "warn", Format: "JSON", Development: true},
			expectedLevel: logrus.WarnLevel,
			expectJSON:    true,
		},
		{
			name:          "production with text format",
			opts:          Options{Format: FormatText},
			expectedLevel: logrus.InfoLevel,
			expectJSON:    false,
		},
		{
			name:          "invalid level defaults to info",
			opts:          Options{Level: "invalid"},
			expectedLevel: logrus.InfoLevel,
			expectJSON:    true,
		},
		{
			name:          "case insensitive level",
			opts:          Options{Level: "ERROR"},
			expectedLevel: logrus.ErrorLevel,
			expectJSON:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Output = &bytes.Buffer{}
			log := New(tt.opts)
			require.NotNil(t, log)
			assert.Equal(t, tt.expectedLevel, log.GetLevel())

			_, isJSON := log.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.expectJSON, isJSON)
		})
	}
}

func TestInitLoggerSetsGlobal(t *testing.T) {
	Logger = nil
	t.Cleanup(func() { Logger = nil })

	var buf bytes.Buffer
	log := InitLogger(Options{Output: &buf})
	assert.Same(t, log, GetLogger())

	log.Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	return entry
}

func TestWithRunContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf})

	WithRunContext(log, "run-1", 500, 12).Info("simulation started")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, float64(500), entry["num_simulations"])
	assert.Equal(t, float64(12), entry["num_teams"])
	assert.Equal(t, "simulation started", entry["msg"])
}

func TestWithHTTPContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf})

	req := httptest.NewRequest("POST", "/api/v1/simulate?x=1", nil)
	req.Header.Set("User-Agent", "draft-client/1.0")

	WithHTTPContext(log, req).Info("request")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "POST", entry["http_method"])
	assert.Equal(t, "/api/v1/simulate", entry["http_path"])
	assert.Equal(t, "draft-client/1.0", entry["http_user_agent"])
}

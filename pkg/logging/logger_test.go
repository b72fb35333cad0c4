package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/steemit/topics/pkg/config"
)

func newTestLogger(buf *bytes.Buffer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "timestamp",
		LevelKey:      "level",
		MessageKey:    "message",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(NewScalyrEncoder(encoderConfig), zapcore.AddSync(buf), zapcore.InfoLevel)
	return zap.New(core)
}

func TestInitLogger(t *testing.T) {
	oldLogger := Logger
	defer func() { Logger = oldLogger }()

	for _, format := range []string{"json", "text"} {
		for _, scalyr := range []bool{true, false} {
			err := InitLogger(&config.LoggingConfig{Level: "INFO", Format: format, ScalyrFormat: scalyr})
			require.NoError(t, err)
			assert.NotNil(t, GetLogger())
		}
	}
}

func TestScalyrEncoder(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.Info("test message",
		zap.String("key", "value"),
		zap.Int("count", 3),
		zap.Bool("ok", true),
		zap.Float64("ratio", 0.5),
		zap.Duration("took", 2*time.Second),
		zap.Error(errors.New("boom")),
	)

	var logObj map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logObj))

	assert.Equal(t, "test message", logObj["message"])
	assert.Equal(t, "value", logObj["key"])
	assert.Equal(t, float64(3), logObj["count"])
	assert.Equal(t, true, logObj["ok"])
	assert.Equal(t, 0.5, logObj["ratio"])
	assert.Equal(t, "2s", logObj["took"])
	assert.Equal(t, "boom", logObj["error"])
	assert.Contains(t, logObj, "timestamp")
}

func TestScalyrEncoderKeepsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf).With(zap.String("component", "listing"))

	logger.Info("first")
	logger.Info("second")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	for _, line := range lines {
		var logObj map[string]interface{}
		require.NoError(t, json.Unmarshal(line, &logObj))
		assert.Equal(t, "listing", logObj["component"])
	}
}

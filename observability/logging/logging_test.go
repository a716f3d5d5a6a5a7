package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupRenamesCoreKeys(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := setup(&buf, "loyaltyd", "test")
	logger.Info("operation committed", "op", "initMerchant")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "operation committed", line["message"])
	require.Equal(t, "INFO", line["severity"])
	require.Equal(t, "loyaltyd", line["service"])
	require.Equal(t, "test", line["env"])
	require.Contains(t, line, "timestamp")
}

func TestSetupWithFileOutput(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "loyaltyd.log")
	logger := Setup("loyaltyd", "", &FileOutput{Path: path, MaxSizeMB: 1})
	require.NotNil(t, logger)
	logger.Info("hello")
	require.FileExists(t, path)
}

func TestMaskField(t *testing.T) {
	require.Equal(t, RedactedValue, MaskField("authorization", "Bearer abc").Value.String())
	require.Equal(t, "loyalty_getMerchant", MaskField("method", "loyalty_getMerchant").Value.String())
	require.Equal(t, "", MaskField("authorization", "").Value.String())
}

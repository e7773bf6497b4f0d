package config

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch(t *testing.T) {
	configFile := createConfigFile(t, getBaseConfig())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	changes := make(chan *Config, 4)
	require.NoError(t, Watch(ctx, configFile, func(c *Config) { changes <- c }))

	// an invalid write is skipped
	broken := strings.Replace(getBaseConfig(), "LEDType: APA102", "LEDType: NONE", 1)
	require.NoError(t, os.WriteFile(configFile, []byte(broken), 0o644))
	select {
	case <-changes:
		t.Fatal("invalid config must not be delivered")
	case <-time.After(3 * settleDelay):
	}

	updated := strings.Replace(getBaseConfig(), "Animation: true", "Animation: false", 1)
	require.NoError(t, os.WriteFile(configFile, []byte(updated), 0o644))

	select {
	case c := <-changes:
		assert.False(t, c.Strip.Animation)
	case <-time.After(2 * time.Second):
		t.Fatal("no config change delivered")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), "/does/not/exist/config.yml", func(*Config) {})
	assert.Error(t, err)
}

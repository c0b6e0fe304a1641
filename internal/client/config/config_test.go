package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "nats://127.0.0.1:4222", c.NatsURL)
	assert.Equal(t, "auth", c.SubjectPrefix)
	assert.Empty(t, c.EndpointAddrGRPC)
	assert.Equal(t, 5*time.Second, c.Timeout)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authctl.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nats_url":"nats://json:4222","subject_prefix":"json","timeout":"9s"}`), 0o600))

	tests := []struct {
		name     string
		args     []string
		expected *Config
		rest     []string
		wantErr  bool
	}{
		{
			name:     "defaults",
			args:     []string{"login", "a@x.com"},
			expected: &Config{NatsURL: "nats://127.0.0.1:4222", SubjectPrefix: "auth", Timeout: 5 * time.Second},
			rest:     []string{"login", "a@x.com"},
		},
		{
			name:     "flags",
			args:     []string{"-n", "nats://flag:4222", "-g", "127.0.0.1:50051", "-t", "2", "verify", "tok"},
			expected: &Config{NatsURL: "nats://flag:4222", SubjectPrefix: "auth", EndpointAddrGRPC: "127.0.0.1:50051", Timeout: 2 * time.Second},
			rest:     []string{"verify", "tok"},
		},
		{
			name:     "json then flags",
			args:     []string{"-c", path, "-p", "flag", "register"},
			expected: &Config{NatsURL: "nats://json:4222", SubjectPrefix: "flag", Timeout: 9 * time.Second},
			rest:     []string{"register"},
		},
		{
			name:    "bad timeout",
			args:    []string{"-t", "abc"},
			wantErr: true,
		},
		{
			name:    "missing file",
			args:    []string{"-c", filepath.Join(t.TempDir(), "nope.json")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, rest, err := LoadConfig(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
			assert.Equal(t, tt.rest, rest)
		})
	}
}

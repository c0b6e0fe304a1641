package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{
				"-n", "nats://n:4222", "-x", "idp", "-q", "grp", "-a", ":50051", "-m", ":9100",
				"-k", "memory", "-d", "db", "-o", "mongodb://m", "-b", "mdb", "-s", "secret",
				"-t", "120", "-w", "argon2id", "-i", "12", "-r", "3", "-l", "debug", "-f", "text",
			},
			expected: &Config{
				NatsURL:               "nats://n:4222",
				SubjectPrefix:         "idp",
				QueueGroup:            "grp",
				EndpointAddrGRPC:      ":50051",
				MetricsAddr:           ":9100",
				StoreDriver:           StoreMemory,
				DatabaseDSN:           "db",
				MongoURI:              "mongodb://m",
				MongoDatabase:         "mdb",
				SecretKey:             "secret",
				TokenValidityDuration: 120 * time.Second,
				PasswordScheme:        SchemeArgon2id,
				BcryptCost:            12,
				RequestTimeout:        3 * time.Second,
				LogLevel:              "debug",
				LogFormat:             "text",
			},
		},
		{
			name: "foreign flags are ignored",
			args: []string{"-c", "cfg.json", "-s", "k"},
			expected: &Config{
				SecretKey:             "k",
				TokenValidityDuration: 1500 * time.Millisecond,
			},
		},
		{
			name:    "bad integer",
			args:    []string{"-t", "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{TokenValidityDuration: 1500 * time.Millisecond}

			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

// Package config loads settings for the authctl command.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags.
//
// # JSON schema
//
//	{
//	  "nats_url": "nats://127.0.0.1:4222",
//	  "subject_prefix": "auth",
//	  "endpoint_addr_grpc": "",
//	  "timeout": "5s"
//	}
package config

import "time"

// Config holds runtime settings for authctl. When EndpointAddrGRPC is set
// the gRPC transport is used instead of NATS.
type Config struct {
	NatsURL          string
	SubjectPrefix    string
	EndpointAddrGRPC string
	Timeout          time.Duration
}

func (c *Config) LoadDefaults() {
	c.NatsURL = "nats://127.0.0.1:4222"
	c.SubjectPrefix = "auth"
	c.EndpointAddrGRPC = ""
	c.Timeout = 5 * time.Second
}

// LoadConfig applies defaults, the JSON file and flags from args, and returns
// the positional arguments left after the flags.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, nil, err
	}

	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is used only for unmarshalling; Timeout accepts "5s" or
// integer nanoseconds.
type JsonConfig struct {
	NatsURL          string         `json:"nats_url"`
	SubjectPrefix    string         `json:"subject_prefix"`
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	Timeout          timex.Duration `json:"timeout"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if jc.NatsURL != "" {
		cfg.NatsURL = jc.NatsURL
	}
	if jc.SubjectPrefix != "" {
		cfg.SubjectPrefix = jc.SubjectPrefix
	}
	if jc.EndpointAddrGRPC != "" {
		cfg.EndpointAddrGRPC = jc.EndpointAddrGRPC
	}
	if jc.Timeout.Duration > 0 {
		cfg.Timeout = jc.Timeout.Duration
	}
	return nil
}

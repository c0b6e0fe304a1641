package config

import (
	"flag"
	"io"
	"time"
)

// parseFlags reads the authctl flags:
//
//	-n string   NATS server URL
//	-p string   subject prefix
//	-g string   gRPC endpoint; switches the transport to gRPC
//	-t int      request timeout (seconds)
//	-c string   JSON config file (read by parseJson)
func parseFlags(cfg *Config, args []string) ([]string, error) {
	fs := flag.NewFlagSet("authctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.NatsURL, "n", cfg.NatsURL, "NATS server URL")
	fs.StringVar(&cfg.SubjectPrefix, "p", cfg.SubjectPrefix, "subject prefix")
	fs.StringVar(&cfg.EndpointAddrGRPC, "g", cfg.EndpointAddrGRPC, "gRPC endpoint address (uses gRPC instead of NATS)")
	timeout := fs.Int("t", int(cfg.Timeout.Seconds()), "request timeout (in seconds)")

	var ignored string
	fs.StringVar(&ignored, "c", "", "path to config file (short)")
	fs.StringVar(&ignored, "config", "", "path to config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Timeout = time.Duration(*timeout) * time.Second
	return fs.Args(), nil
}

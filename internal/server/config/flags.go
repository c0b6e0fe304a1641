package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

var knownFlags = []string{"-n", "-x", "-q", "-a", "-m", "-k", "-d", "-o", "-b", "-s", "-t", "-w", "-i", "-r", "-l", "-f"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-n string   NATS server URL
//	-x string   subject prefix (default "auth")
//	-q string   NATS queue group
//	-a string   gRPC bind address, empty disables the gRPC endpoint
//	-m string   metrics bind address, empty disables /metrics
//	-k string   store driver: postgres, mongo, memory
//	-d string   PostgreSQL DSN
//	-o string   MongoDB URI
//	-b string   MongoDB database name
//	-s string   JWT HMAC secret key
//	-t int      token validity, seconds
//	-w string   password scheme: bcrypt, argon2id
//	-i int      bcrypt cost
//	-r int      request timeout, seconds
//	-l string   log level
//	-f string   log format: json, text
//
// Only the flags listed above are picked out of args, so the -c/-config
// flag handled by parseJson does not collide.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("gophauth", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.NatsURL, "n", config.NatsURL, "NATS server URL")
	fs.StringVar(&config.SubjectPrefix, "x", config.SubjectPrefix, "subject prefix")
	fs.StringVar(&config.QueueGroup, "q", config.QueueGroup, "NATS queue group")
	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics address and port")
	fs.StringVar(&config.StoreDriver, "k", config.StoreDriver, "store driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "o", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.MongoDatabase, "b", config.MongoDatabase, "MongoDB database")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Seconds()), "token validity (in seconds)")
	fs.StringVar(&config.PasswordScheme, "w", config.PasswordScheme, "password hashing scheme")
	fs.IntVar(&config.BcryptCost, "i", config.BcryptCost, "bcrypt cost")
	requestTimeout := fs.Int("r", int(config.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	// Durations are only touched when given, so values such as "1500ms" coming
	// from the environment are not truncated to whole seconds.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Second
		case "r":
			config.RequestTimeout = time.Duration(*requestTimeout) * time.Second
		}
	})
	return nil
}

// Package cli implements authctl, a small command-line client for the
// identity service.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

const usage = `usage: authctl [flags] <command>

commands:
  register [email] [name]   create an account (password is prompted)
  login [email]             log in (password is prompted)
  verify [token]            check a token and print a refreshed one

flags:
  -n url     NATS server URL
  -p prefix  subject prefix
  -g addr    use the gRPC endpoint at addr instead of NATS
  -t secs    request timeout
  -c file    JSON config file`

var ErrUsage = errors.New(usage)

type App struct {
	client  client.Client
	timeout time.Duration
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(c client.Client, timeout time.Duration, in io.Reader, out io.Writer) *App {
	return &App{client: c, timeout: timeout, reader: bufio.NewReader(in), out: out}
}

// Dial opens the transport selected by cfg.
func Dial(cfg *config.Config) (client.Client, error) {
	if cfg.EndpointAddrGRPC != "" {
		return client.DialGRPC(cfg.EndpointAddrGRPC)
	}
	return client.DialNATS(cfg.NatsURL, cfg.SubjectPrefix)
}

// Run executes one command and prints the result as JSON.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]

	var (
		res *common.AuthResult
		err error
	)
	switch cmd {
	case "register":
		res, err = a.register(ctx, rest)
	case "login":
		res, err = a.login(ctx, rest)
	case "verify":
		res, err = a.verify(ctx, rest)
	case "help":
		_, err = fmt.Fprintln(a.out, usage)
		return err
	default:
		return fmt.Errorf("unknown command %q\n%w", cmd, ErrUsage)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func (a *App) register(ctx context.Context, args []string) (*common.AuthResult, error) {
	email, err := a.arg(args, 0, "Email")
	if err != nil {
		return nil, err
	}
	name, err := a.arg(args, 1, "Name")
	if err != nil {
		return nil, err
	}
	pw, err := GetPassword(a.out)
	if err != nil {
		return nil, err
	}
	defer wipe(pw)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.client.Register(ctx, common.RegisterRequest{Email: email, Name: name, Password: string(pw)})
}

func (a *App) login(ctx context.Context, args []string) (*common.AuthResult, error) {
	email, err := a.arg(args, 0, "Email")
	if err != nil {
		return nil, err
	}
	pw, err := GetPassword(a.out)
	if err != nil {
		return nil, err
	}
	defer wipe(pw)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.client.Login(ctx, common.LoginRequest{Email: email, Password: string(pw)})
}

func (a *App) verify(ctx context.Context, args []string) (*common.AuthResult, error) {
	token, err := a.arg(args, 0, "Token")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.client.VerifyToken(ctx, common.VerifyTokenRequest{Token: token})
}

// arg returns args[i], prompting for it when absent.
func (a *App) arg(args []string, i int, prompt string) (string, error) {
	if i < len(args) {
		return args[i], nil
	}
	return GetSimpleText(a.reader, prompt, a.out)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

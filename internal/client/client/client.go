// Package client talks to a running gophauth service, either over NATS
// request/reply or over the gRPC mirror.
package client

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Client is implemented by NATSClient and GRPCClient. Service failures are
// returned as *common.StatusError.
type Client interface {
	Register(ctx context.Context, req common.RegisterRequest) (*common.AuthResult, error)
	Login(ctx context.Context, req common.LoginRequest) (*common.AuthResult, error)
	VerifyToken(ctx context.Context, req common.VerifyTokenRequest) (*common.AuthResult, error)
	Close() error
}

package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/nats-io/nats.go"
)

type NATSClient struct {
	nc     *nats.Conn
	prefix string
}

// DialNATS connects to url. prefix selects the subjects, e.g. "auth".
func DialNATS(url, prefix string) (*NATSClient, error) {
	nc, err := nats.Connect(url, nats.Name("authctl"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSClient{nc: nc, prefix: prefix}, nil
}

func (c *NATSClient) Register(ctx context.Context, req common.RegisterRequest) (*common.AuthResult, error) {
	return c.request(ctx, common.OpRegister, req)
}

func (c *NATSClient) Login(ctx context.Context, req common.LoginRequest) (*common.AuthResult, error) {
	return c.request(ctx, common.OpLogin, req)
}

func (c *NATSClient) VerifyToken(ctx context.Context, req common.VerifyTokenRequest) (*common.AuthResult, error) {
	return c.request(ctx, common.OpVerifyToken, req)
}

func (c *NATSClient) Close() error {
	c.nc.Close()
	return nil
}

// request needs a deadline on ctx.
func (c *NATSClient) request(ctx context.Context, op string, payload any) (*common.AuthResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	msg, err := c.nc.RequestWithContext(ctx, common.Subject(c.prefix, op), data)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", op, err)
	}
	return decodeReply(msg.Data)
}

// decodeReply tells an error reply from a bare result by the "error" key.
func decodeReply(data []byte) (*common.AuthResult, error) {
	var probe struct {
		Error *common.StatusError `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	if probe.Error != nil {
		return nil, probe.Error
	}

	var res common.AuthResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return &res, nil
}

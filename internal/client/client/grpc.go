package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/authrpc"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type GRPCClient struct {
	conn   *grpc.ClientConn
	client *authrpc.AuthClient
}

func DialGRPC(addr string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{conn: conn, client: authrpc.NewAuthClient(conn)}, nil
}

func (c *GRPCClient) Register(ctx context.Context, req common.RegisterRequest) (*common.AuthResult, error) {
	return invoke(ctx, req, c.client.Register)
}

func (c *GRPCClient) Login(ctx context.Context, req common.LoginRequest) (*common.AuthResult, error) {
	return invoke(ctx, req, c.client.Login)
}

func (c *GRPCClient) VerifyToken(ctx context.Context, req common.VerifyTokenRequest) (*common.AuthResult, error) {
	return invoke(ctx, req, c.client.VerifyToken)
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

type rpcCall func(context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error)

func invoke(ctx context.Context, req any, call rpcCall) (*common.AuthResult, error) {
	in, err := authrpc.ToStruct(req)
	if err != nil {
		return nil, err
	}

	out, err := call(ctx, in)
	if err != nil {
		return nil, fromStatus(err)
	}

	var res common.AuthResult
	if err := authrpc.FromStruct(out, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return &common.StatusError{Status: http.StatusBadRequest, Message: st.Message()}
	case codes.Unauthenticated:
		return &common.StatusError{Status: http.StatusUnauthorized, Message: st.Message()}
	}
	return err
}

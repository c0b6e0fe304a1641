package grpc

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/authrpc"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service is the identity logic served over gRPC.
type Service interface {
	Register(ctx context.Context, req common.RegisterRequest) (*common.AuthResult, error)
	Login(ctx context.Context, req common.LoginRequest) (*common.AuthResult, error)
	VerifyToken(ctx context.Context, req common.VerifyTokenRequest) (*common.AuthResult, error)
}

func (s *GRPCServer) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(ctx, in, s.service.Register)
}

func (s *GRPCServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(ctx, in, s.service.Login)
}

func (s *GRPCServer) VerifyToken(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(ctx, in, s.service.VerifyToken)
}

func call[Req any](ctx context.Context, in *structpb.Struct, fn func(context.Context, Req) (*common.AuthResult, error)) (*structpb.Struct, error) {
	var req Req
	if err := authrpc.FromStruct(in, &req); err != nil {
		return nil, toStatus(common.NewValidationError("malformed request payload"))
	}

	res, err := fn(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := authrpc.ToStruct(res)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func toStatus(err error) error {
	se := common.ToStatusError(err)
	code := codes.InvalidArgument
	if se.Status == http.StatusUnauthorized {
		code = codes.Unauthenticated
	}
	return status.Error(code, se.Message)
}

// httpStatus maps a reply code back to the status reported by NATS.
func httpStatus(c codes.Code) int {
	switch c {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/authrpc"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var operations = map[string]string{
	authrpc.FullMethod(authrpc.MethodRegister):    common.OpRegister,
	authrpc.FullMethod(authrpc.MethodLogin):       common.OpLogin,
	authrpc.FullMethod(authrpc.MethodVerifyToken): common.OpVerifyToken,
}

// observeInterceptor logs and counts every unary call.
func (s *GRPCServer) observeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	elapsed := time.Since(start)

	op, ok := operations[info.FullMethod]
	if !ok {
		op = info.FullMethod
	}
	code := status.Code(err)
	st := httpStatus(code)

	s.metrics.Observe(metrics.TransportGRPC, op, st, elapsed)

	log := s.logger.With("method", info.FullMethod, "request_id", uuid.NewString(), "code", code.String(), "duration", elapsed)
	if err != nil {
		log.Warn(ctx, "request failed")
	} else {
		log.Info(ctx, "request served")
	}

	return resp, err
}

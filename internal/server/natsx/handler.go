package natsx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Service is the identity logic served over NATS.
type Service interface {
	Register(ctx context.Context, req common.RegisterRequest) (*common.AuthResult, error)
	Login(ctx context.Context, req common.LoginRequest) (*common.AuthResult, error)
	VerifyToken(ctx context.Context, req common.VerifyTokenRequest) (*common.AuthResult, error)
}

var errMalformed = common.NewValidationError("malformed request payload")

// Handle runs op against the service and returns the encoded reply with its
// status: 200 for a bare AuthResult, otherwise the error status.
func Handle(ctx context.Context, svc Service, op string, data []byte) ([]byte, int) {
	res, err := dispatch(ctx, svc, op, data)
	if err != nil {
		se := common.ToStatusError(err)
		return encode(common.ErrorReply{Error: se}), se.Status
	}
	return encode(res), http.StatusOK
}

func dispatch(ctx context.Context, svc Service, op string, data []byte) (*common.AuthResult, error) {
	switch op {
	case common.OpRegister:
		var req common.RegisterRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, errMalformed
		}
		return svc.Register(ctx, req)
	case common.OpLogin:
		var req common.LoginRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, errMalformed
		}
		return svc.Login(ctx, req)
	case common.OpVerifyToken:
		var req common.VerifyTokenRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, errMalformed
		}
		return svc.VerifyToken(ctx, req)
	}
	return nil, common.NewValidationError("unknown operation " + op)
}

func encode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"error":{"status":400,"message":"reply encoding failed"}}`)
	}
	return b
}

// Package services contains the identity logic: registration, credential
// checks and token issuance.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/go-playground/validator/v10"
)

// Hasher turns passwords into digests and checks them.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenCodec signs identity claims and verifies them back.
type TokenCodec interface {
	Sign(claim models.Claim) (string, error)
	Verify(token string) (models.Claim, error)
}

// UserService is safe for concurrent use.
type UserService struct {
	repo     users.Repository
	hasher   Hasher
	codec    TokenCodec
	validate *validator.Validate

	dummyOnce   sync.Once
	dummyDigest string
}

func NewUserService(repo users.Repository, hasher Hasher, codec TokenCodec) *UserService {
	return &UserService{
		repo:     repo,
		hasher:   hasher,
		codec:    codec,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register creates the account and returns it with a fresh token.
// If signing fails after the user is stored, the user is kept.
func (s *UserService) Register(ctx context.Context, req common.RegisterRequest) (*common.AuthResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	_, err := s.repo.FindUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateUser
	case !errors.Is(err, common.ErrorNotFound):
		return nil, common.NewInternalFailure(err)
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, common.NewInternalFailure(err)
	}

	user, err := s.repo.CreateUser(ctx, req.Email, digest, req.Name)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			return nil, common.ErrDuplicateUser
		}
		return nil, common.NewInternalFailure(err)
	}

	return s.issue(user.Claim())
}

// Login checks the credentials. Unknown email and wrong password are
// reported identically.
func (s *UserService) Login(ctx context.Context, req common.LoginRequest) (*common.AuthResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	user, err := s.repo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn comparable time so missing accounts are not observable
			s.hasher.Verify(req.Password, s.dummy())
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.NewInternalFailure(err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	return s.issue(user.Claim())
}

// VerifyToken checks the token and issues a fresh one for the same claim.
// The store is not consulted. An empty token is an invalid token.
func (s *UserService) VerifyToken(ctx context.Context, req common.VerifyTokenRequest) (*common.AuthResult, error) {
	if req.Token == "" {
		return nil, common.ErrTokenInvalid
	}

	claim, err := s.codec.Verify(req.Token)
	if err != nil {
		return nil, err
	}

	return s.issue(claim)
}

func (s *UserService) issue(claim models.Claim) (*common.AuthResult, error) {
	token, err := s.codec.Sign(claim)
	if err != nil {
		return nil, common.NewInternalFailure(err)
	}
	return &common.AuthResult{User: claim.Public(), Token: token}, nil
}

// fallbackDummyDigest is a well-formed cost-10 bcrypt digest matching no
// password the service issues. Used when the hasher cannot produce one.
const fallbackDummyDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("gophauth-dummy-password")
		if err != nil || digest == "" {
			digest = fallbackDummyDigest
		}
		s.dummyDigest = digest
	})
	return s.dummyDigest
}

func (s *UserService) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return common.NewValidationError(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return common.NewValidationError(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be an email"
	}
	return fmt.Sprintf("%s failed %q check", field, fe.Tag())
}

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Argon2Params controls Argon2id hashing cost. Memory is in KiB.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params follows the OWASP baseline.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// PasswordHasher produces salted one-way digests and checks passwords
// against them. New digests use the configured scheme; Verify accepts any
// supported scheme, recognised by the digest prefix.
type PasswordHasher struct {
	scheme     string
	bcryptCost int
	argon      Argon2Params
}

func NewPasswordHasher(cfg *config.Config) (*PasswordHasher, error) {
	switch cfg.PasswordScheme {
	case config.SchemeBcrypt:
		if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d..%d]", cfg.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case config.SchemeArgon2id:
	default:
		return nil, fmt.Errorf("unknown password scheme %q", cfg.PasswordScheme)
	}

	return &PasswordHasher{
		scheme:     cfg.PasswordScheme,
		bcryptCost: cfg.BcryptCost,
		argon:      DefaultArgon2Params(),
	}, nil
}

// WithArgon2Params returns a copy of h using p for new argon2id digests.
func (h *PasswordHasher) WithArgon2Params(p Argon2Params) *PasswordHasher {
	c := *h
	c.argon = p
	return &c
}

// Hash returns the digest of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if h.scheme == config.SchemeArgon2id {
		return h.hashArgon2(password)
	}

	b, err := bcrypt.GenerateFromPassword(bcryptInput(password), h.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether password produces digest. Malformed or unknown
// digests never match.
func (h *PasswordHasher) Verify(password, digest string) bool {
	if strings.HasPrefix(digest, "$argon2id$") {
		return h.verifyArgon2(password, digest)
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), bcryptInput(password)) == nil
}

// bcryptMaxInput is the longest input bcrypt accepts.
const bcryptMaxInput = 72

var bcryptPrehashKey = []byte("gophauth/bcrypt-prehash/v1")

// bcryptInput returns password unchanged when bcrypt can take it whole.
// Longer passwords are reduced to a base64 HMAC-SHA256 of 44 bytes, so every
// byte still counts.
func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxInput {
		return []byte(password)
	}
	mac := hmac.New(sha256.New, bcryptPrehashKey)
	mac.Write([]byte(password))
	sum := mac.Sum(nil)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum)
	return out
}

func (h *PasswordHasher) hashArgon2(password string) (string, error) {
	salt := make([]byte, h.argon.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.argon.Iterations, h.argon.Memory, h.argon.Parallelism, h.argon.KeyLength)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.argon.Memory,
		h.argon.Iterations,
		h.argon.Parallelism,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	), nil
}

func (h *PasswordHasher) verifyArgon2(password, digest string) bool {
	params, salt, expected, ok := decodeArgon2(digest)
	if !ok {
		return false
	}

	// Refuse attacker-sized parameters.
	if params.Memory > h.argon.Memory*2 || params.Iterations > h.argon.Iterations*2 || params.Parallelism > h.argon.Parallelism*2 {
		return false
	}

	key := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1
}

// decodeArgon2 parses $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt>$<key>.
func decodeArgon2(encoded string) (Argon2Params, []byte, []byte, bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Argon2Params{}, nil, nil, false
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return Argon2Params{}, nil, nil, false
	}

	var mem, it, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &it, &par); err != nil {
		return Argon2Params{}, nil, nil, false
	}
	if mem == 0 || it == 0 || par == 0 || par > 255 {
		return Argon2Params{}, nil, nil, false
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) < 8 {
		return Argon2Params{}, nil, nil, false
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) < 16 || len(key) > 128 {
		return Argon2Params{}, nil, nil, false
	}

	return Argon2Params{Memory: mem, Iterations: it, Parallelism: uint8(par)}, salt, key, true
}

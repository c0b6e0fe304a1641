// Package common contains shared constants, wire messages and sentinel errors
// used by both the gophauth server and its clients.
package common

// DefaultSubjectPrefix is the subject namespace the service listens on.
const DefaultSubjectPrefix = "auth"

// Operation names. Each one is published on its own subject, see Subject.
const (
	OpRegister    = "register"
	OpLogin       = "login"
	OpVerifyToken = "verify_token"
)

// Operations lists every operation the service answers.
var Operations = []string{OpRegister, OpLogin, OpVerifyToken}

// Subject builds the message subject for op, e.g. "auth.login".
func Subject(prefix, op string) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return prefix + "." + op
}

package token

import "errors"

// Domain errors. Each maps to a distinct deny reason; callers must not
// collapse them.
var (
	ErrTokenMissing = errors.New("no token presented")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
	ErrWrongType    = errors.New("wrong token type")
)

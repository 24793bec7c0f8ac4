// Package auth issues and validates the signed session tokens that tie a
// browser to its conversation. Tokens are HS256 JWTs carrying the session
// ID in the "sid" claim and the fixed type "session".
package auth

// Package jwt provides JSON Web Token utilities for the DareMatch API.
//
// The jwt package handles RS256 signing, validation, and claims extraction.
// The server normally runs in verification-only mode: tokens are issued by
// the external identity provider and validated here against its public key.
//
// # Token Validation
//
//	service, err := jwt.NewService(jwt.Config{
//	    PublicKeyPath: "/etc/darematch/jwt.pub",
//	    Issuer:        "darematch-identity",
//	})
//
//	claims, err := service.Validate(tokenString)
//	if err != nil {
//	    // Invalid or expired token
//	}
//	userID := claims.UserID
//
// # Token Signing
//
// Signing requires a private key and is only used by local development
// tooling (cmd/dev-token); production tokens come from the identity
// provider:
//
//	token, err := service.Sign(jwt.Claims{UserID: "user:123"})
package jwt

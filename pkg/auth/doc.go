// Package auth provides identity types, bearer-token structural
// validation, and the session cookie surface for the Classgate gateway.
//
// # Token Validation
//
// Tokens are signed by the external identity provider; Classgate never
// holds the signing secret. Validator decodes the payload without
// verifying the signature so the route guard can shed obviously-dead
// tokens (missing claims, expired) without a network round trip:
//
//	v := auth.NewValidator()
//	result := v.ValidateStructure(token)
//	if !result.Valid { /* clear cookie, redirect to login */ }
//
// A structurally valid token is NOT proof of identity. Any operation that
// trusts the identity must additionally succeed the provider's
// /users/me check, which verifies the signature server-side.
//
// # Session Cookie
//
// The bearer token lives in an HttpOnly, SameSite=Lax cookie with a
// 7-day lifetime (Secure in production). There is no server-side session
// store; the cookie is the only session state.
package auth

// Package auth is the verification library shared by every service in the
// platform. It mints and verifies HS256-signed access tokens, derives a
// request-scoped Principal from a bearer credential, and carries that
// principal through context for both HTTP and gRPC transports.
//
// Verification is pure CPU work over the shared signing secret; no service
// calls back to the issuer. A service that holds the same secret bytes can
// authenticate requests entirely on its own.
package auth

package common

// AuthorizationHeader is the HTTP header carrying the bearer credential.
const AuthorizationHeader = "Authorization"

// AuthorizationMetadataKey is the gRPC metadata key carrying the bearer
// credential. Metadata keys are lower-cased by the transport.
const AuthorizationMetadataKey = "authorization"

// BearerPrefix precedes the token in the authorization header value.
const BearerPrefix = "Bearer "

package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// IssuerKeyHeaderName is the gRPC metadata key carrying the shared key of the
// credential-verification service allowed to call Issue.
const IssuerKeyHeaderName = "issuer_key"

// Package auth owns credential handling and request authentication:
// peppered Argon2id password hashing, signed bearer-token issuance, the
// per-request authentication guard, and the login/registration flow.
//
// Every externally observable authentication failure collapses into the same
// uniform rejection; the concrete cause (missing header, bad signature, wrong
// issuer, expired token, unknown user, wrong password) is only ever logged
// server-side. Failed logins are additionally held to a minimum response
// duration so the two failure branches cannot be told apart by latency.
package auth

// Package auth implements the identity and access core for the user service:
// stateless JWT session tokens, single-use email verification tokens, a
// request authentication gate, and role based access control over the
// VISITOR, PROPOSER, and ADMIN roles.
package auth

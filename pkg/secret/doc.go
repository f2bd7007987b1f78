// Package secret serializes the provisioning bundle an authenticator is
// restored from: the shared HMAC key plus its digit count, hash algorithm,
// period and optional device serial.
//
// The current encoding is hex(secret) TAB digits TAB algorithm TAB period,
// optionally followed by "|" + hex(serial bytes). Decode additionally
// accepts two older shapes still found in user exports: a bare hex blob
// with the secret occupying the first 40 characters, and a three-segment
// form whose middle segment is obsolete. The shape that matched is reported
// as a Format value rather than being inferred silently by callers.
package secret

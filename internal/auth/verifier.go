// Package auth verifies that inbound webhook requests originate from the
// messaging platform. The platform signs each request with
// "v0=" + hex(HMAC-SHA256(secret, "v0:<timestamp>:<body>")) and sends the
// timestamp and signature as headers alongside the raw body.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

// ReplayWindow is the maximum allowed skew between the request timestamp and
// the receiving clock. Requests outside the window are rejected even if their
// signature is valid, limiting signature replay.
const ReplayWindow = 300 * time.Second

const signatureVersion = "v0"

var (
	ErrMissingHeaders    = errors.New("missing timestamp or signature header")
	ErrStaleTimestamp    = errors.New("stale request timestamp")
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// Verifier validates request signatures against a shared signing secret.
// It has no side effects; verification is a pure function of the inputs and
// the current time.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier creates a Verifier for the given signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// NewVerifierAt creates a Verifier with a fixed clock. Test seam.
func NewVerifierAt(secret string, now func() time.Time) *Verifier {
	return &Verifier{secret: []byte(secret), now: now}
}

// Verify checks the signature over the raw request body. The timestamp and
// signature arguments are the literal header values. A nil return means the
// request is authentic and fresh.
func (v *Verifier) Verify(timestamp, signature string, body []byte) error {
	if timestamp == "" || signature == "" {
		return ErrMissingHeaders
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		// A timestamp we cannot parse cannot be shown fresh.
		return ErrStaleTimestamp
	}
	skew := v.now().Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > ReplayWindow {
		return ErrStaleTimestamp
	}

	expected := v.Sign(timestamp, body)
	// Constant-time comparison to prevent timing attacks.
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return ErrSignatureMismatch
	}
	return nil
}

// Sign computes the versioned signature for a timestamp and body. The
// basestring binds the signature to both freshness and the exact payload.
func (v *Verifier) Sign(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(signatureVersion + ":" + timestamp + ":"))
	mac.Write(body)
	return signatureVersion + "=" + hex.EncodeToString(mac.Sum(nil))
}

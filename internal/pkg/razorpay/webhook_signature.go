package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the
// exact raw request body. The signature is an HMAC-SHA256 of the body keyed
// with the shared webhook secret, hex encoded. Comparison must happen over
// the un-parsed body bytes; re-serializing the JSON can reorder fields and
// invalidate the digest.
func VerifyWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || secret == "" {
		return false
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), decodedSig)
}

// SignPayload computes the webhook signature for a body, used by tests and
// by the internal replay queue when re-signing is possible.
func SignPayload(payload []byte, webhookSecret string) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

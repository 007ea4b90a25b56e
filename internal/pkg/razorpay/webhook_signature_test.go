package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"event":"subscription.charged"}`)
	secret := "whsec_test"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	validSig := hex.EncodeToString(mac.Sum(nil))

	if !VerifyWebhookSignature(payload, validSig, secret) {
		t.Fatalf("expected signature to validate")
	}
	if VerifyWebhookSignature(payload, validSig, "other-secret") {
		t.Fatalf("expected signature to fail with wrong secret")
	}
	if VerifyWebhookSignature(payload, "deadbeef", secret) {
		t.Fatalf("expected invalid signature to fail")
	}
	if VerifyWebhookSignature(payload, "not-hex!", secret) {
		t.Fatalf("expected non-hex signature to fail")
	}
	if VerifyWebhookSignature(payload, "", secret) {
		t.Fatalf("expected empty signature to fail")
	}
	if VerifyWebhookSignature(payload, validSig, "") {
		t.Fatalf("expected empty secret to fail")
	}
}

func TestVerifyWebhookSignature_BodySensitivity(t *testing.T) {
	secret := "whsec_test"
	sig := SignPayload([]byte(`{"a":1}`), secret)

	if !VerifyWebhookSignature([]byte(`{"a":1}`), sig, secret) {
		t.Fatalf("expected signature to validate over the signed body")
	}
	// The signature covers the raw bytes; any mutation invalidates it.
	if VerifyWebhookSignature([]byte(`{"a": 1}`), sig, secret) {
		t.Fatalf("expected signature over a different body to fail")
	}
}

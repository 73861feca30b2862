//go:build !integration

// File: internal/infra/payment/webhook_signature_test.go
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"testing"
)

func paystackSign(secret string, body []byte) string {
	h := hmac.New(sha512.New, []byte(secret))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func flutterwaveSign(secret string, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func TestVerifyPaystackSignature(t *testing.T) {
	secret := "sk_test_abc123"
	body := []byte(`{"event":"charge.success","data":{"reference":"TRX-1"}}`)

	t.Run("accepts the correct signature", func(t *testing.T) {
		if !VerifyPaystackSignature(secret, body, paystackSign(secret, body)) {
			t.Error("expected a valid signature to pass")
		}
	})

	t.Run("rejects a tampered body", func(t *testing.T) {
		sig := paystackSign(secret, body)
		tampered := []byte(`{"event":"charge.success","data":{"reference":"TRX-2"}}`)
		if VerifyPaystackSignature(secret, tampered, sig) {
			t.Error("a signature over a different body must fail")
		}
	})

	t.Run("rejects a wrong secret", func(t *testing.T) {
		if VerifyPaystackSignature(secret, body, paystackSign("sk_other", body)) {
			t.Error("a signature from another secret must fail")
		}
	})

	t.Run("rejects an empty signature", func(t *testing.T) {
		if VerifyPaystackSignature(secret, body, "") {
			t.Error("an empty signature must fail")
		}
	})
}

func TestVerifyFlutterwaveSignature(t *testing.T) {
	secret := "flw-webhook-secret"
	body := []byte(`{"event":"charge.completed","data":{"tx_ref":"TRX-1"}}`)

	t.Run("accepts the correct signature", func(t *testing.T) {
		if !VerifyFlutterwaveSignature(secret, body, flutterwaveSign(secret, body)) {
			t.Error("expected a valid signature to pass")
		}
	})

	t.Run("rejects a tampered body", func(t *testing.T) {
		sig := flutterwaveSign(secret, body)
		if VerifyFlutterwaveSignature(secret, append(body, ' '), sig) {
			t.Error("a signature over a different body must fail")
		}
	})
}

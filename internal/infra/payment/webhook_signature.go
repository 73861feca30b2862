package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
)

// VerifyPaystackSignature checks the X-Paystack-Signature header:
// hex(HMAC-SHA512(secret, raw body)).
func VerifyPaystackSignature(secret string, body []byte, signature string) bool {
	h := hmac.New(sha512.New, []byte(secret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyFlutterwaveSignature checks the Verif-Hash header:
// hex(HMAC-SHA256(secret, raw body)).
func VerifyFlutterwaveSignature(secret string, body []byte, signature string) bool {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

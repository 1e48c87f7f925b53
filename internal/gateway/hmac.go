package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Hmac256 returns the hex-encoded HMAC-SHA256 of body under key.
func Hmac256(body, key []byte) string {
	h := hmac.New(sha256.New, key)
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Sign produces the payment confirmation signature over
// "orderID|paymentID".
func Sign(orderID, paymentID string, secret []byte) string {
	return Hmac256([]byte(orderID+"|"+paymentID), secret)
}

// VerifySign compares a supplied signature against the recomputed one
// in constant time.
func VerifySign(orderID, paymentID, signature string, secret []byte) bool {
	expected := Sign(orderID, paymentID, secret)
	return hmac.Equal([]byte(signature), []byte(expected))
}

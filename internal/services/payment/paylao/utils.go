package paylao

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// randomNumber returns an 18-digit numeric reference.
func randomNumber() (string, error) {
	min := big.NewInt(100000000000000000)
	max := big.NewInt(999999999999999999)
	n, err := rand.Int(rand.Reader, new(big.Int).Sub(max, min))
	if err != nil {
		return "", err
	}

	n.Add(n, min)
	return n.String(), nil
}

// CompareHash checks a bcrypt credential hash against a candidate.
func CompareHash(hash, candidate []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, candidate) == nil
}

// GenerateHash bcrypt-hashes a credential for at-rest storage.
func GenerateHash(credential []byte) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(credential, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Hmac256 signs body with key using HMAC-SHA256, hex encoded.
func Hmac256(body, key []byte) string {
	h := hmac.New(sha256.New, key)
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyHmac256 checks a received signature against the expected one in
// constant time.
func VerifyHmac256(body, key []byte, signature string) bool {
	expected := Hmac256(body, key)
	return hmac.Equal([]byte(expected), []byte(signature))
}

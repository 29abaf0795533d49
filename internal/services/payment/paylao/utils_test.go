package paylao

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHmac256_Deterministic(t *testing.T) {
	body := []byte(`{"refNo":"123","txnAmount":1000}`)
	key := []byte("signing-key")

	sig1 := Hmac256(body, key)
	sig2 := Hmac256(body, key)

	assert.Equal(t, sig1, sig2)
	assert.Len(t, sig1, 64) // hex-encoded SHA-256
}

func TestHmac256_KeySensitive(t *testing.T) {
	body := []byte("payload")

	assert.NotEqual(t, Hmac256(body, []byte("key-a")), Hmac256(body, []byte("key-b")))
}

func TestVerifyHmac256(t *testing.T) {
	body := []byte(`{"refNo":"123"}`)
	key := []byte("signing-key")

	sig := Hmac256(body, key)
	assert.True(t, VerifyHmac256(body, key, sig))
	assert.False(t, VerifyHmac256(body, key, sig+"00"))
	assert.False(t, VerifyHmac256([]byte("tampered"), key, sig))
	assert.False(t, VerifyHmac256(body, []byte("wrong-key"), sig))
}

func TestGenerateHash_RoundTrip(t *testing.T) {
	credential := []byte("client-secret")

	hash, err := GenerateHash(credential)
	require.NoError(t, err)

	assert.True(t, CompareHash([]byte(hash), credential))
	assert.False(t, CompareHash([]byte(hash), []byte("wrong-secret")))
}

func TestRandomNumber(t *testing.T) {
	ref, err := randomNumber()
	require.NoError(t, err)
	assert.Len(t, ref, 18)

	other, err := randomNumber()
	require.NoError(t, err)
	assert.NotEqual(t, ref, other)
}

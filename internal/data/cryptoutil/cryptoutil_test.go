package cryptoutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestNewAESGCMEncryptor_KeySize(t *testing.T) {
	_, err := NewAESGCMEncryptor([]byte("short"))
	require.Error(t, err)

	_, err = NewAESGCMEncryptor(testKey())
	require.NoError(t, err)
}

func TestAESGCM_RoundTrip(t *testing.T) {
	enc, err := NewAESGCMEncryptor(testKey())
	require.NoError(t, err)

	plaintext := []byte("Slayer of dragons, drinker of coffee.")
	ct, err := enc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ct, "v1:"))
	assert.NotContains(t, ct, string(plaintext))

	pt, err := enc.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, plaintext, pt)
}

func TestAESGCM_EmptyInputPassthrough(t *testing.T) {
	enc, err := NewAESGCMEncryptor(testKey())
	require.NoError(t, err)

	ct, err := enc.Encrypt(nil)
	require.NoError(t, err)
	assert.Equal(t, "", ct)

	pt, err := enc.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, pt)
}

func TestAESGCM_NoncesDiffer(t *testing.T) {
	enc, err := NewAESGCMEncryptor(testKey())
	require.NoError(t, err)

	a, err := enc.Encrypt([]byte("same input"))
	require.NoError(t, err)
	b, err := enc.Encrypt([]byte("same input"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestAESGCM_RejectsUnknownPrefix(t *testing.T) {
	enc, err := NewAESGCMEncryptor(testKey())
	require.NoError(t, err)

	_, err = enc.Decrypt("v9:whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown ciphertext version")
}

func TestAESGCM_RejectsTamperedCiphertext(t *testing.T) {
	enc, err := NewAESGCMEncryptor(testKey())
	require.NoError(t, err)

	ct, err := enc.Encrypt([]byte("original"))
	require.NoError(t, err)

	tampered := ct[:len(ct)-2] + "AA"
	_, err = enc.Decrypt(tampered)
	require.Error(t, err)
}

func TestAESGCM_DecryptsNoopValues(t *testing.T) {
	noopCT, err := NoopEncryptor{}.Encrypt([]byte("pre-key bio"))
	require.NoError(t, err)

	enc, err := NewAESGCMEncryptor(testKey())
	require.NoError(t, err)

	pt, err := enc.Decrypt(noopCT)
	require.NoError(t, err)
	assert.Equal(t, []byte("pre-key bio"), pt)
}

func TestNoop_RoundTrip(t *testing.T) {
	enc := NoopEncryptor{}

	ct, err := enc.Encrypt([]byte("hello"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ct, "noop:"))

	pt, err := enc.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), pt)
}

func TestNoop_EmptyInputPassthrough(t *testing.T) {
	enc := NoopEncryptor{}

	ct, err := enc.Encrypt(nil)
	require.NoError(t, err)
	assert.Equal(t, "", ct)

	pt, err := enc.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, pt)
}

func TestNoop_RejectsForeignValues(t *testing.T) {
	_, err := NoopEncryptor{}.Decrypt("v1:abc")
	require.Error(t, err)
}

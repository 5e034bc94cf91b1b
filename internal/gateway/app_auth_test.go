package gateway

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestKey(t *testing.T, pkcs8 bool) (string, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	var block *pem.Block
	if pkcs8 {
		der, err := x509.MarshalPKCS8PrivateKey(key)
		require.NoError(t, err)
		block = &pem.Block{Type: "PRIVATE KEY", Bytes: der}
	} else {
		block = &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	}

	path := filepath.Join(t.TempDir(), "app.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))
	return path, key
}

func TestNewAppAuthAcceptsBothKeyEncodings(t *testing.T) {
	for _, pkcs8 := range []bool{false, true} {
		path, _ := writeTestKey(t, pkcs8)
		auth, err := NewAppAuth(12345, path)
		require.NoError(t, err)
		assert.NotNil(t, auth.privateKey)
	}
}

func TestNewAppAuthRejectsBadKeyFiles(t *testing.T) {
	_, err := NewAppAuth(12345, filepath.Join(t.TempDir(), "missing.pem"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "junk.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a key"), 0o600))
	_, err = NewAppAuth(12345, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PEM")
}

func TestSignJWTCarriesAppID(t *testing.T) {
	path, key := writeTestKey(t, false)
	auth, err := NewAppAuth(98765, path)
	require.NoError(t, err)

	signed, err := auth.signJWT()
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(signed, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(*jwt.RegisteredClaims)
	assert.Equal(t, "98765", claims.Issuer)
	assert.NotNil(t, claims.ExpiresAt)
}

package gateway

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// AppAuth exchanges GitHub App credentials for an installation access
// token, for runs configured with an App instead of a personal token.
type AppAuth struct {
	appID      int64
	privateKey *rsa.PrivateKey
}

// NewAppAuth loads the App's RSA private key from privateKeyPath.
// Both PKCS#1 and PKCS#8 encodings are accepted, matching the formats
// GitHub hands out for App keys.
func NewAppAuth(appID int64, privateKeyPath string) (*AppAuth, error) {
	keyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read app private key: %w", err)
	}

	block, _ := pem.Decode(keyData)
	if block == nil {
		return nil, fmt.Errorf("app private key %s is not PEM encoded", privateKeyPath)
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		parsed, err8 := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err8 != nil {
			return nil, fmt.Errorf("parse app private key: %w", err)
		}
		rsaKey, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("app private key is not an RSA key")
		}
		key = rsaKey
	}

	return &AppAuth{appID: appID, privateKey: key}, nil
}

// signJWT mints the short-lived RS256 token GitHub requires for
// App-level API calls.
func (a *AppAuth) signJWT() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		Issuer:    strconv.FormatInt(a.appID, 10),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(a.privateKey)
}

// InstallationToken creates an access token scoped to the given
// installation, suitable for the same API calls a personal token
// covers.
func (a *AppAuth) InstallationToken(ctx context.Context, installationID int64) (string, error) {
	signed, err := a.signJWT()
	if err != nil {
		return "", fmt.Errorf("sign app JWT: %w", err)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: signed})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	token, _, err := client.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return "", fmt.Errorf("create installation token: %w", err)
	}
	return token.GetToken(), nil
}

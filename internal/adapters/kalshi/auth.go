package kalshi

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"strconv"
	"time"
)

// wsPath es el path que se firma en el handshake del WebSocket.
const wsPath = "/trade-api/ws/v2"

// Credentials firma las requests con la API key de Kalshi.
type Credentials struct {
	KeyID      string
	PrivateKey *rsa.PrivateKey
	now        func() time.Time
}

// LoadCredentials lee la clave privada PEM (PKCS#8 o PKCS#1) de keyFile.
func LoadCredentials(keyID, keyFile string) (*Credentials, error) {
	if keyID == "" {
		return nil, fmt.Errorf("kalshi.LoadCredentials: key id is required")
	}
	if keyFile == "" {
		return nil, fmt.Errorf("kalshi.LoadCredentials: key file is required")
	}
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("kalshi.LoadCredentials: read key file: %w", err)
	}
	key, err := ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("kalshi.LoadCredentials: %w", err)
	}
	return &Credentials{KeyID: keyID, PrivateKey: key}, nil
}

// ParsePrivateKey decodifica una clave RSA en PEM.
func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("key is not an RSA private key")
		}
		return rsaKey, nil
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

// SignRequest devuelve las cabeceras KALSHI-ACCESS-* para method y path.
// El mensaje firmado es timestamp_ms + method + path (RSA-PSS, SHA-256).
func (c *Credentials) SignRequest(method, path string) (map[string]string, error) {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	ts := strconv.FormatInt(now().UnixMilli(), 10)
	hashed := sha256.Sum256([]byte(ts + method + path))
	sig, err := rsa.SignPSS(rand.Reader, c.PrivateKey, crypto.SHA256, hashed[:],
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash})
	if err != nil {
		return nil, fmt.Errorf("sign message: %w", err)
	}
	return map[string]string{
		"KALSHI-ACCESS-KEY":       c.KeyID,
		"KALSHI-ACCESS-TIMESTAMP": ts,
		"KALSHI-ACCESS-SIGNATURE": base64.StdEncoding.EncodeToString(sig),
	}, nil
}

package services

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"vsal/api/models"

	"github.com/Jeffail/gabs"
	"github.com/golang-jwt/jwt/v5"
)

// accepted clock skew between the issuer and this service
const jwtLeeway = 12 * time.Second

type (
	// JwtService verifies bearer tokens against the issuer's published
	// signing key and checks dataset-scoped access claims.
	JwtService struct {
		issuer      string
		accessClaim string
		jwksUrl     string

		keyMux     sync.Mutex
		signingKey *rsa.PublicKey
	}
)

func NewJwtService(cfg *models.Config) *JwtService {
	return &JwtService{
		issuer:      cfg.AuthX.JwtIssuer,
		accessClaim: cfg.AuthX.JwtAccessClaim,
		jwksUrl:     cfg.AuthX.PublicJwksUrl,
	}
}

// fetchSigningKey pulls the issuer's JWKS document and builds an RSA
// public key from the first key entry.
func (j *JwtService) fetchSigningKey() (*rsa.PublicKey, error) {
	resp, err := http.Get(j.jwksUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jwks from %s : %w", j.jwksUrl, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("jwks endpoint %s returned %d", j.jwksUrl, resp.StatusCode)
	}

	jwksJson, err := gabs.ParseJSONBuffer(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jwks document : %w", err)
	}

	firstKey := jwksJson.Path("keys").Index(0)
	modulus, modOk := firstKey.Path("n").Data().(string)
	exponent, expOk := firstKey.Path("e").Data().(string)
	if !modOk || !expOk {
		return nil, errors.New("jwks document carries no usable rsa key")
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(modulus)
	if err != nil {
		return nil, fmt.Errorf("invalid jwks modulus : %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(exponent)
	if err != nil {
		return nil, fmt.Errorf("invalid jwks exponent : %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}

// key returns the cached signing key, fetching it on first use.
func (j *JwtService) key() (*rsa.PublicKey, error) {
	j.keyMux.Lock()
	defer j.keyMux.Unlock()

	if j.signingKey != nil {
		return j.signingKey, nil
	}

	signingKey, err := j.fetchSigningKey()
	if err != nil {
		return nil, err
	}
	j.signingKey = signingKey
	return signingKey, nil
}

// Verify validates the token signature, issuer and expiry, then
// requires the configured access-claim array to carry the dataset
// scoped claim, e.g. "demo/gt".
func (j *JwtService) Verify(tokenString string, requiredClaim string) error {
	if tokenString == "" {
		return errors.New("missing token")
	}

	signingKey, err := j.key()
	if err != nil {
		fmt.Printf("[%s] - failed to obtain jwt signing key : %s\n", time.Now(), err)
		return err
	}

	token, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
			}
			return signingKey, nil
		},
		jwt.WithIssuer(j.issuer),
		jwt.WithLeeway(jwtLeeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("invalid token : %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return errors.New("invalid token : unreadable claims")
	}

	grantedAny, ok := claims[j.accessClaim]
	if !ok {
		return fmt.Errorf("token carries no %s claim", j.accessClaim)
	}
	granted, ok := grantedAny.([]interface{})
	if !ok {
		return fmt.Errorf("token claim %s is not an array", j.accessClaim)
	}
	for _, g := range granted {
		if s, sok := g.(string); sok && s == requiredClaim {
			return nil
		}
	}

	return fmt.Errorf("token not authorized for %s", requiredClaim)
}

package jwt

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/bobinette/paperlog/errors"
)

const issuer = "paperlog"

// DefaultTTL is the validity of the tokens issued by the cli.
const DefaultTTL = 60 * 24 * time.Hour

type Claims struct {
	jwt.StandardClaims
}

type EncodeDecoder struct {
	key []byte
}

func NewEncodeDecoder(key []byte) *EncodeDecoder {
	return &EncodeDecoder{
		key: key,
	}
}

// Encode signs a token for subject, valid for ttl.
func (e *EncodeDecoder) Encode(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(e.key)
}

// Decode returns the subject of a valid token.
func (e *EncodeDecoder) Decode(bearer string) (string, error) {
	claims := Claims{}

	token, err := jwt.ParseWithClaims(bearer, &claims, keyFunc(e.key))
	if err != nil {
		return "", errors.New("invalid token", errors.Unauthorized(), errors.WithCause(err))
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims.Subject, nil
	}

	return "", errors.New("could not get claims", errors.Unauthorized())
}

func keyFunc(key []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method", errors.Unauthorized())
		}
		return key, nil
	}
}

// ReadKey loads the signing key from a json file of the form {"k": "..."}.
func ReadKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("could not open key file", errors.WithCause(err))
	}

	var key struct {
		Key string `json:"k"`
	}
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, errors.New("could not read key file", errors.WithCause(err))
	}
	if key.Key == "" {
		return nil, errors.New("empty key in " + path)
	}

	return []byte(key.Key), nil
}

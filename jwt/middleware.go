package jwt

import (
	"context"

	"github.com/dgrijalva/jwt-go"

	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/go-kit/kit/endpoint"

	"github.com/bobinette/paperlog/errors"
)

// endpointError marks the errors returned by the wrapped endpoint, to tell
// them apart from the ones of the token parser.
type endpointError struct {
	err error
}

func (e endpointError) Error() string { return e.err.Error() }

// Middleware rejects the requests that do not carry a valid token with a
// 401. The token is read from the context, where kitjwt.HTTPToContext puts
// it.
func Middleware(key []byte) endpoint.Middleware {
	parser := kitjwt.NewParser(keyFunc(key), jwt.SigningMethodHS256, func() jwt.Claims {
		return &Claims{}
	})

	return func(next endpoint.Endpoint) endpoint.Endpoint {
		parsed := parser(func(ctx context.Context, request interface{}) (interface{}, error) {
			res, err := next(ctx, request)
			if err != nil {
				return res, endpointError{err: err}
			}
			return res, nil
		})

		return func(ctx context.Context, request interface{}) (interface{}, error) {
			res, err := parsed(ctx, request)
			if err == nil {
				return res, nil
			}

			if e, ok := err.(endpointError); ok {
				return res, e.err
			}
			return nil, errors.New("unauthorized: "+err.Error(), errors.Unauthorized(), errors.WithCause(err))
		}
	}
}

// Subject returns the subject of the token validated by Middleware.
func Subject(ctx context.Context) (string, bool) {
	claims, ok := ctx.Value(kitjwt.JWTClaimsContextKey).(*Claims)
	if !ok {
		return "", false
	}
	return claims.Subject, true
}

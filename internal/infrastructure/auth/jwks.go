package auth

import (
	"errors"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/taskhub/student-task-service/internal/entity"
)

// JWKSVerifier проверяет bearer-токены внешнего identity-провайдера
// по его JWKS endpoint (https://<domain>/.well-known/jwks.json).
// Идентификатором вызывающего служит claim "sub".
type JWKSVerifier struct {
	jwks     *keyfunc.JWKS
	audience string
	issuer   string
}

func NewJWKSVerifier(jwksURL, audience, issuer string) (*JWKSVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
	if err != nil {
		return nil, err
	}
	return &JWKSVerifier{
		jwks:     jwks,
		audience: audience,
		issuer:   issuer,
	}, nil
}

func (v *JWKSVerifier) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc)
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return "", entity.ErrTokenExpired
		}
		return "", entity.ErrTokenInvalid
	}
	if !token.Valid {
		return "", entity.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", entity.ErrTokenInvalid
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, false) {
		return "", entity.ErrTokenInvalid
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, false) {
		return "", entity.ErrTokenInvalid
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", entity.ErrTokenInvalid
	}
	return sub, nil
}

func (v *JWKSVerifier) Close() {
	v.jwks.EndBackground()
}

package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "scouthub/pkg/domain"
	dErrors "scouthub/pkg/domain-errors"
)

// registeredClaimKeys are stripped from the payload before it is handed to
// the principal validator, which enforces a strict shape over the remainder.
var registeredClaimKeys = []string{"iss", "aud", "exp", "iat", "nbf", "jti"}

// JWTService handles access token creation and validation. Token issuance
// normally belongs to the identity provider; this service exists for dev and
// test parity and for validating inbound tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

func (s *JWTService) GenerateAccessToken(
	userID id.UserID,
	role id.Role,
	email string,
	username string,
	expiresIn time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": string(role),
		"exp":  jwt.NewNumericDate(time.Now().Add(expiresIn)),
		"iat":  jwt.NewNumericDate(time.Now()),
		"iss":  s.issuer,
		"aud":  s.audience,
		"jti":  uuid.NewString(),
	}
	if email != "" {
		claims["email"] = email
	}
	if username != "" {
		claims["preferred_username"] = username
	}

	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// ValidateToken verifies the signature and registered claims, then returns
// the remaining payload as an untyped map for principal validation.
func (s *JWTService) ValidateToken(tokenString string) (map[string]any, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthenticated, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid token claims")
	}

	payload := make(map[string]any, len(claims))
	for k, v := range claims {
		payload[k] = v
	}
	for _, k := range registeredClaimKeys {
		delete(payload, k)
	}
	return payload, nil
}

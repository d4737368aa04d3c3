package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Ayu-zh/placement-connector/internal/model"
)

// Claims carries the session reference inside a signed token.
// The session ID travels as jti and the identity ID as sub.
type Claims struct {
	jwt.RegisteredClaims
}

func (s *Service) signToken(session *model.AuthSession) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        string(session.ID),
			Subject:   string(session.IdentityID),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(s.clock.Now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	})
	return token.SignedString(s.cfg.TokenSecret)
}

// parseToken verifies the signature and standard claims. When verifyExpiry
// is false an expired but authentic token is still accepted, which lets
// sign-out revoke sessions whose token has already lapsed.
func (s *Service) parseToken(tokenString string, verifyExpiry bool) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithLeeway(0),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	if !verifyExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.cfg.TokenSecret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Join(model.ErrInvalidSession, err)
	}
	if !token.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, model.ErrInvalidSession
	}
	return claims, nil
}

func grantFor(token string, session *model.AuthSession) *model.Grant {
	return &model.Grant{
		Token:      token,
		SessionID:  session.ID,
		IdentityID: session.IdentityID,
		ExpiresAt:  session.ExpiresAt,
	}
}

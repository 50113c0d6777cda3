package otpgate

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// A reset ticket proves that OTP verification succeeded for an identity.
// The reset flow spans two calls (verify the code, then mutate the
// credential) and credential mutation belongs to the host application, so
// the engine hands back a short-lived signed claim instead of keeping
// "verified" state around.
type resetTicketManager struct {
	config ResetTicketConfig
}

type resetTicketClaims struct {
	jwt.RegisteredClaims
	Purpose string `json:"purpose"`
}

const resetTicketPurpose = "password_reset"

func newResetTicketManager(cfg ResetTicketConfig) *resetTicketManager {
	if !cfg.Enabled {
		return nil
	}
	return &resetTicketManager{config: cfg}
}

// Mint signs a ticket for the identity. The jti makes individual tickets
// distinguishable in downstream logs; the engine itself does not track use.
func (m *resetTicketManager) Mint(identity string) (string, error) {
	if m == nil {
		return "", ErrTicketDisabled
	}

	now := time.Now()
	claims := resetTicketClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			Issuer:    m.config.Issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
		Purpose: resetTicketPurpose,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.config.SigningKey)
	if err != nil {
		return "", fmt.Errorf("sign reset ticket: %w", err)
	}
	return signed, nil
}

// Validate checks signature, expiry, and purpose, and returns the identity
// the ticket was minted for.
func (m *resetTicketManager) Validate(ticket string) (string, error) {
	if m == nil {
		return "", ErrTicketDisabled
	}

	var claims resetTicketClaims
	_, err := jwt.ParseWithClaims(
		ticket,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return m.config.SigningKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTicketInvalid, err)
	}

	if claims.Purpose != resetTicketPurpose || claims.Subject == "" {
		return "", ErrTicketInvalid
	}
	if m.config.Issuer != "" && claims.Issuer != m.config.Issuer {
		return "", ErrTicketInvalid
	}

	return claims.Subject, nil
}

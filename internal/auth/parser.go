package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"freight-pricing-service/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the access-token payload issued by the identity service.
type Claims struct {
	UserID           uuid.UUID  `json:"user_id"`
	BusinessEntityID *uuid.UUID `json:"business_entity_id,omitempty"`
	Role             string     `json:"role"`
	jwt.RegisteredClaims
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user_id", ErrInvalidToken)
	}
	switch claims.Role {
	case model.RoleAdmin, model.RolePlanner, model.RoleViewer:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return claims, nil
}

func (c *Claims) Principal() model.Principal {
	return model.Principal{
		UserID:           c.UserID,
		BusinessEntityID: c.BusinessEntityID,
		Role:             c.Role,
	}
}

// Sign issues an HS256 token; used by tests and local tooling.
func (p *Parser) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

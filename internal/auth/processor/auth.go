package processor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"matchbet-server/internal/clock"
	"matchbet-server/internal/observability"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer   = "matchbet-server"
	audience = "matchbet-server"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrInvalidJWTToken = errors.New("invalid jwt token")
	ErrParseJWTToken   = errors.New("failed to parse jwt token")
	ErrExpiredToken    = errors.New("token expired")
	ErrMissingSubject  = errors.New("token has no valid subject")
	ErrFailedSignIn    = errors.New("failed to sign token")
)

// BaseClaims are the claims carried by access tokens. Tokens are issued by
// the account service; this server only validates them.
type BaseClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Identity is the authenticated caller.
type Identity struct {
	UserID  uuid.UUID
	IsAdmin bool
}

type AuthProcessor struct {
	jwtSecret []byte
	admins    []string
	clock     clock.Clock
	logger    *observability.Logger
}

// New creates an AuthProcessor. adminUserIDs are treated as admins whatever
// role their token carries.
func New(jwtSecret string, adminUserIDs []string, clk clock.Clock, logger *observability.Logger) AuthProcessor {
	return AuthProcessor{
		jwtSecret: []byte(jwtSecret),
		admins:    adminUserIDs,
		clock:     clk,
		logger:    logger,
	}
}

// ValidateJWTToken checks signature, expiry, issuer and audience and returns
// the caller's identity.
func (p *AuthProcessor) ValidateJWTToken(ctx context.Context, token string) (Identity, error) {
	var claims BaseClaims
	t, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.jwtSecret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(p.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			p.logger.Info(ctx, "token expired")
			return Identity{}, ErrExpiredToken
		}
		p.logger.InfoWithError(ctx, "failed to parse token", err)
		return Identity{}, ErrParseJWTToken
	}
	if !t.Valid {
		return Identity{}, ErrInvalidJWTToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, ErrMissingSubject
	}

	return Identity{
		UserID:  userID,
		IsAdmin: claims.Role == RoleAdmin || slices.Contains(p.admins, userID.String()),
	}, nil
}

// IssueToken signs a token for userID. Used by tooling and tests; production
// tokens come from the account service with the same secret.
func (p *AuthProcessor) IssueToken(ctx context.Context, userID uuid.UUID, role string, ttl time.Duration) (string, error) {
	now := p.clock.Now()
	claims := BaseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.jwtSecret)
	if err != nil {
		p.logger.Error(ctx, "failed to sign token", err)
		return "", ErrFailedSignIn
	}
	return tokenString, nil
}

package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"garmentscore/internal/cache"
	"garmentscore/internal/config"
	"garmentscore/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNotApproved        = errors.New("client is not approved")
)

// AuthService handles admin and client authentication
type AuthService struct {
	adminUsername  string
	adminPassword  string
	jwtSecret      []byte
	clientTokenTTL time.Duration
	approvals      cache.ApprovalCache
	now            func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(cfg *config.Config, approvals cache.ApprovalCache) *AuthService {
	ttl := cfg.ClientTokenTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &AuthService{
		adminUsername:  cfg.AdminUsername,
		adminPassword:  cfg.AdminPassword,
		jwtSecret:      []byte(cfg.JWTSecret),
		clientTokenTTL: ttl,
		approvals:      approvals,
		now:            time.Now,
	}
}

// Login validates admin credentials and returns a 24h token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}

	adminID := "admin_" + uuid.New().String()[:8]
	now := s.now()

	claims := &model.AdminClaims{
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:   tokenString,
		AdminID: adminID,
	}, nil
}

// ValidateAdminToken validates an admin JWT and returns claims
func (s *AuthService) ValidateAdminToken(tokenString string) (*model.AdminClaims, error) {
	claims := &model.AdminClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.AdminID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueClientToken approves a client and returns a client-scoped token.
// Issuing again replaces the previous approval, which revokes the old token.
func (s *AuthService) IssueClientToken(ctx context.Context, adminID, clientID string) (*model.ClientTokenResponse, error) {
	now := s.now()
	tokenID := uuid.NewString()

	claims := &model.ClientClaims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   clientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.clientTokenTTL)),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	approval := &cache.Approval{
		ClientID:   clientID,
		TokenID:    tokenID,
		ApprovedBy: adminID,
		ApprovedAt: now,
	}
	if err := s.approvals.Set(ctx, approval, s.clientTokenTTL); err != nil {
		return nil, fmt.Errorf("store approval: %w", err)
	}

	return &model.ClientTokenResponse{
		ClientID: clientID,
		Token:    tokenString,
	}, nil
}

// RevokeClient withdraws a client's approval
func (s *AuthService) RevokeClient(ctx context.Context, clientID string) error {
	return s.approvals.Delete(ctx, clientID)
}

// ValidateClientToken validates a client JWT against the live approval
func (s *AuthService) ValidateClientToken(ctx context.Context, tokenString string) (*model.ClientClaims, error) {
	claims := &model.ClientClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.ClientID == "" {
		return nil, ErrInvalidToken
	}

	approval, err := s.approvals.Get(ctx, claims.ClientID)
	if err != nil {
		return nil, fmt.Errorf("load approval: %w", err)
	}
	if approval == nil || approval.TokenID != claims.ID {
		return nil, ErrNotApproved
	}
	return claims, nil
}

func (s *AuthService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
)

// AuthConfig defines configuration for operator tokens.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// IssueTokenRequest describes the operator a token is minted for.
type IssueTokenRequest struct {
	UserID string              `json:"user_id"`
	Name   string              `json:"name" validate:"required,max=120"`
	Role   models.OperatorRole `json:"role" validate:"required,oneof=ADMIN RECEPTION COACH"`
	TTL    time.Duration       `json:"-"`
}

// IssuedToken is a signed access token.
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService signs and validates operator access tokens. Operators are provisioned
// outside the back office, so there is no login flow here.
type AuthService struct {
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 12 * time.Hour
	}
	return &AuthService{validator: validate, logger: logger, config: config, now: time.Now}
}

// IssueToken signs an HS256 access token for an operator.
func (s *AuthService) IssueToken(req IssueTokenRequest) (*IssuedToken, error) {
	req.Role = models.OperatorRole(strings.ToUpper(strings.TrimSpace(string(req.Role))))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid token request")
	}
	if s.config.AccessTokenSecret == "" {
		return nil, appErrors.Clone(appErrors.ErrInternal, "token secret is not configured")
	}
	if req.UserID == "" {
		req.UserID = uuid.NewString()
	}
	ttl := req.TTL
	if ttl <= 0 {
		ttl = s.config.AccessTokenExpiry
	}

	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl)
	claims := &models.JWTClaims{
		UserID: req.UserID,
		Role:   req.Role,
		Name:   strings.TrimSpace(req.Name),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   req.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	s.logger.Info("operator token issued", zap.String("user_id", req.UserID), zap.String("role", string(req.Role)), zap.Time("expires_at", expiresAt))
	return &IssuedToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown operator role")
	}
	return claims, nil
}

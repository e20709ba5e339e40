package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Tokens are issued by the identity service; this package verifies them and
// reads the claims the attendance core relies on. GenerateAccessToken exists
// for local tooling and tests.
type Service interface {
	GenerateAccessToken(actor Actor) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(actor Actor) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":     actor.UserID,
		"employee_id": returnValueOrNil(actor.EmployeeID),
		"company_id":  returnValueOrNil(actor.CompanyID),
		"role":        string(actor.Role),
		"type":        "access",
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func returnValueOrNil(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

var ErrMissingClaims = errors.New("token claims are missing or invalid")

// Actor is the authenticated caller as carried by the access token.
type Actor struct {
	UserID     string
	EmployeeID string
	CompanyID  string
	Role       user.Role
}

// IsManager reports whether the actor may act on other employees' records.
func (a Actor) IsManager() bool {
	return a.Role.IsManager()
}

// ActorFromContext reads the verified claims stored by jwtauth.Verifier.
func ActorFromContext(ctx context.Context) (Actor, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Actor{}, err
	}
	if claims == nil {
		return Actor{}, ErrMissingClaims
	}

	actor := Actor{}
	actor.UserID, _ = claims["user_id"].(string)
	actor.EmployeeID, _ = claims["employee_id"].(string)
	actor.CompanyID, _ = claims["company_id"].(string)
	role, _ := claims["role"].(string)
	actor.Role = user.Role(role)

	if actor.UserID == "" || actor.CompanyID == "" {
		return Actor{}, ErrMissingClaims
	}
	return actor, nil
}

// ContextWithActor returns ctx carrying a freshly signed token for actor, as
// the Verifier middleware would have produced. Used by tests and tooling.
func ContextWithActor(ctx context.Context, ja *jwtauth.JWTAuth, actor Actor) (context.Context, error) {
	token, _, err := ja.Encode(map[string]interface{}{
		"user_id":     actor.UserID,
		"employee_id": returnValueOrNil(actor.EmployeeID),
		"company_id":  returnValueOrNil(actor.CompanyID),
		"role":        string(actor.Role),
		"type":        "access",
	})
	if err != nil {
		return nil, err
	}
	return jwtauth.NewContext(ctx, token, nil), nil
}

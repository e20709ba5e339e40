package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAccessToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "15m")

	token, expiresAt, err := svc.GenerateAccessToken(Actor{
		UserID:     "user-1",
		EmployeeID: "emp-1",
		CompanyID:  "company-1",
		Role:       user.RoleEmployee,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, expiresAt, int64(0))

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "emp-1", claims["employee_id"])
	assert.Equal(t, "access", claims["type"])
}

func TestJWTService_GenerateAccessToken_InvalidDuration(t *testing.T) {
	svc := NewJWTService("test-secret", "forever")

	_, _, err := svc.GenerateAccessToken(Actor{UserID: "user-1", CompanyID: "company-1"})
	assert.Error(t, err)
}

func TestActorFromContext(t *testing.T) {
	svc := NewJWTService("test-secret", "15m")

	ctx, err := ContextWithActor(context.Background(), svc.JWTAuth(), Actor{
		UserID:    "user-1",
		CompanyID: "company-1",
		Role:      user.RoleManager,
	})
	require.NoError(t, err)

	actor, err := ActorFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", actor.UserID)
	assert.Equal(t, "", actor.EmployeeID)
	assert.True(t, actor.IsManager())
}

func TestActorFromContext_MissingToken(t *testing.T) {
	_, err := ActorFromContext(context.Background())
	assert.ErrorIs(t, err, ErrMissingClaims)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garmentscore/internal/config"
	"garmentscore/internal/memstore"
)

func newTestAuth() (*AuthService, *memstore.Approvals) {
	approvals := memstore.NewApprovals()
	svc := NewAuthService(&config.Config{
		AdminUsername:  "admin",
		AdminPassword:  "s3cret",
		JWTSecret:      "test-secret",
		ClientTokenTTL: time.Hour,
	}, approvals)
	return svc, approvals
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuth()

	resp, err := svc.Login("admin", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Contains(t, resp.AdminID, "admin_")

	claims, err := svc.ValidateAdminToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.AdminID, claims.AdminID)

	_, err = svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login("", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateAdminToken_Rejects(t *testing.T) {
	svc, _ := newTestAuth()

	_, err := svc.ValidateAdminToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService(&config.Config{AdminUsername: "admin", AdminPassword: "s3cret", JWTSecret: "other"}, memstore.NewApprovals())
	resp, err := other.Login("admin", "s3cret")
	require.NoError(t, err)
	_, err = svc.ValidateAdminToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	client, err := svc.IssueClientToken(context.Background(), "admin_1", "client-1")
	require.NoError(t, err)
	_, err = svc.ValidateAdminToken(client.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClientToken_Lifecycle(t *testing.T) {
	svc, approvals := newTestAuth()
	ctx := context.Background()

	first, err := svc.IssueClientToken(ctx, "admin_1", "client-1")
	require.NoError(t, err)
	assert.Equal(t, "client-1", first.ClientID)
	approval, err := approvals.Get(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, "admin_1", approval.ApprovedBy)

	claims, err := svc.ValidateClientToken(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, "client-1", claims.ClientID)

	// reissue replaces the approval
	second, err := svc.IssueClientToken(ctx, "admin_1", "client-1")
	require.NoError(t, err)
	_, err = svc.ValidateClientToken(ctx, first.Token)
	assert.ErrorIs(t, err, ErrNotApproved)
	_, err = svc.ValidateClientToken(ctx, second.Token)
	assert.NoError(t, err)

	require.NoError(t, svc.RevokeClient(ctx, "client-1"))
	_, err = svc.ValidateClientToken(ctx, second.Token)
	assert.ErrorIs(t, err, ErrNotApproved)
}

func TestClientToken_Expires(t *testing.T) {
	svc, _ := newTestAuth()
	ctx := context.Background()

	resp, err := svc.IssueClientToken(ctx, "admin_1", "client-1")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateClientToken(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	admin, err := newTestAuthLogin(t)
	require.NoError(t, err)
	_, err = svc.ValidateClientToken(ctx, admin)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func newTestAuthLogin(t *testing.T) (string, error) {
	t.Helper()
	svc, _ := newTestAuth()
	resp, err := svc.Login("admin", "s3cret")
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

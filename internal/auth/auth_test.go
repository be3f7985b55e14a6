package auth

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/stay-service/internal/domain"
	apperrors "github.com/spec-kit/stay-service/pkg/util/errorutil"
)

type mockAccounts struct {
	mock.Mock
}

func (m *mockAccounts) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	account, _ := args.Get(0).(*domain.Account)
	return account, args.Error(1)
}

const (
	accountID = "0b8f6c3e-2d41-4a7e-9c1f-5e6d7a8b9c01"
	ghostID   = "0b8f6c3e-2d41-4a7e-9c1f-5e6d7a8b9c02"
	custID    = "0b8f6c3e-2d41-4a7e-9c1f-5e6d7a8b9c03"
	adminID   = "0b8f6c3e-2d41-4a7e-9c1f-5e6d7a8b9c04"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)

	token, expiresAt, err := tm.GenerateToken(accountID, domain.RoleHost)
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, accountID, claims.Subject)
	assert.Equal(t, domain.RoleHost, claims.Role)

	_, err = NewTokenManager("other", 5).ParseToken(token)
	assert.Error(t, err)
}

func newTestApp(m *AuthMiddleware, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	handlers := append([]fiber.Handler{m.Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(actor.AccountID + ":" + string(actor.Role))
	})
	app.Get("/me", handlers...)
	return app
}

func call(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthMiddleware_ResolvesActorFromAccount(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	accounts := &mockAccounts{}
	// token says CUSTOMER, account was promoted since
	accounts.On("GetByID", mock.Anything, accountID).Return(&domain.Account{ID: accountID, Role: domain.RoleHost}, nil)

	token, _, err := tm.GenerateToken(accountID, domain.RoleCustomer)
	require.NoError(t, err)

	status, body := call(t, newTestApp(NewAuthMiddleware(tm, accounts)), "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, accountID+":HOST", body)
	accounts.AssertExpectations(t)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	accounts := &mockAccounts{}
	accounts.On("GetByID", mock.Anything, ghostID).Return(nil, pgx.ErrNoRows)

	ghostToken, _, err := tm.GenerateToken(ghostID, domain.RoleCustomer)
	require.NoError(t, err)
	legacyToken, _, err := tm.GenerateToken("acc-1", domain.RoleCustomer)
	require.NoError(t, err)

	app := newTestApp(NewAuthMiddleware(tm, accounts))
	for name, header := range map[string]string{
		"missing header":    "",
		"wrong scheme":      "Basic abc",
		"garbage token":     "Bearer not-a-jwt",
		"unknown account":   "Bearer " + ghostToken,
		"malformed subject": "Bearer " + legacyToken,
	} {
		t.Run(name, func(t *testing.T) {
			status, body := call(t, app, header)
			assert.Equal(t, fiber.StatusUnauthorized, status)
			assert.Equal(t, apperrors.CodeUnauthorized, body)
		})
	}
	accounts.AssertNotCalled(t, "GetByID", mock.Anything, "acc-1")
}

func TestRequireRole(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	accounts := &mockAccounts{}
	accounts.On("GetByID", mock.Anything, custID).Return(&domain.Account{ID: custID, Role: domain.RoleCustomer}, nil)
	accounts.On("GetByID", mock.Anything, adminID).Return(&domain.Account{ID: adminID, Role: domain.RoleAdmin}, nil)

	app := newTestApp(NewAuthMiddleware(tm, accounts), RequireRole(domain.RoleAdmin))

	custToken, _, _ := tm.GenerateToken(custID, domain.RoleCustomer)
	status, body := call(t, app, "Bearer "+custToken)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, apperrors.CodeForbidden, body)

	adminToken, _, _ := tm.GenerateToken(adminID, domain.RoleAdmin)
	status, _ = call(t, app, "Bearer "+adminToken)
	assert.Equal(t, fiber.StatusOK, status)
}

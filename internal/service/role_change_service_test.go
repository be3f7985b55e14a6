package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/stay-service/internal/domain"
	"github.com/spec-kit/stay-service/internal/events"
	apperrors "github.com/spec-kit/stay-service/pkg/util/errorutil"
)

type roleChangeFixture struct {
	store      *memStore
	dispatcher *recordingDispatcher
	service    *RoleChangeService
	requester  domain.Actor
	admin      domain.Actor
}

func newRoleChangeFixture() *roleChangeFixture {
	store := newMemStore()
	f := &roleChangeFixture{store: store, dispatcher: &recordingDispatcher{}}
	f.requester = domain.Actor{AccountID: store.addAccount("0", domain.RoleCustomer), Role: domain.RoleCustomer}
	f.admin = domain.Actor{AccountID: store.addAccount("0", domain.RoleAdmin), Role: domain.RoleAdmin}
	f.service = NewRoleChangeService(RoleChangeDependencies{
		TxManager:      &memTx{store: store},
		RoleChangeRepo: memRoleChanges{store},
		AccountRepo:    memAccounts{store},
		Dispatcher:     f.dispatcher,
		Clock:          func() time.Time { return testToday },
	})
	return f
}

func (f *roleChangeFixture) role(t *testing.T, id string) domain.Role {
	t.Helper()
	account, err := memAccounts{f.store}.GetByID(context.Background(), id)
	require.NoError(t, err)
	return account.Role
}

func TestRoleChange_AcceptPromotes(t *testing.T) {
	f := newRoleChangeFixture()
	ctx := context.Background()

	request, err := f.service.Submit(ctx, f.requester, RoleChangeSubmitInput{Motivation: "I own a cabin"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleHost, request.RequestedRole)
	assert.Len(t, f.dispatcher.ofType(events.EventRoleChangeRequested), 1)

	result, err := f.service.Accept(ctx, f.admin, request.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, domain.RoleChangeAccepted, result.Request.Status)
	assert.Equal(t, f.admin.AccountID, *result.Request.FulfilledBy)
	assert.Equal(t, domain.RoleHost, f.role(t, f.requester.AccountID))
	assert.Len(t, f.dispatcher.ofType(events.EventRoleChangeAccepted), 1)
}

func TestRoleChange_AcceptTwiceIsAlreadyProcessed(t *testing.T) {
	f := newRoleChangeFixture()
	ctx := context.Background()

	request, err := f.service.Submit(ctx, f.requester, RoleChangeSubmitInput{})
	require.NoError(t, err)
	_, err = f.service.Accept(ctx, f.admin, request.ID)
	require.NoError(t, err)

	// demote out of band to prove a second accept does not touch the role
	require.NoError(t, memAccounts{f.store}.UpdateRole(ctx, f.requester.AccountID, domain.RoleCustomer))

	result, err := f.service.Accept(ctx, f.admin, request.ID)
	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)
	assert.Equal(t, AlreadyProcessedMessage, result.Message)
	assert.Equal(t, domain.RoleCustomer, f.role(t, f.requester.AccountID))
	assert.Len(t, f.dispatcher.ofType(events.EventRoleChangeAccepted), 1)

	result, err = f.service.Reject(ctx, f.admin, request.ID)
	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)
	assert.Equal(t, domain.RoleChangeAccepted, result.Request.Status)
	assert.Empty(t, f.dispatcher.ofType(events.EventRoleChangeRejected))
}

func TestRoleChange_Reject(t *testing.T) {
	f := newRoleChangeFixture()
	ctx := context.Background()

	request, err := f.service.Submit(ctx, f.requester, RoleChangeSubmitInput{})
	require.NoError(t, err)

	result, err := f.service.Reject(ctx, f.admin, request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleChangeRejected, result.Request.Status)
	assert.Equal(t, domain.RoleCustomer, f.role(t, f.requester.AccountID))
	assert.Len(t, f.dispatcher.ofType(events.EventRoleChangeRejected), 1)
}

func TestRoleChange_OnlyAdminsDecide(t *testing.T) {
	f := newRoleChangeFixture()
	ctx := context.Background()
	moderator := domain.Actor{AccountID: f.store.addAccount("0", domain.RoleModerator), Role: domain.RoleModerator}

	request, err := f.service.Submit(ctx, f.requester, RoleChangeSubmitInput{})
	require.NoError(t, err)

	_, err = f.service.Accept(ctx, moderator, request.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	_, err = f.service.Accept(ctx, f.requester, request.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	assert.Equal(t, domain.RoleCustomer, f.role(t, f.requester.AccountID))

	_, err = f.service.Accept(ctx, f.admin, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestRoleChange_SubmitValidation(t *testing.T) {
	f := newRoleChangeFixture()
	ctx := context.Background()

	_, err := f.service.Submit(ctx, f.requester, RoleChangeSubmitInput{RequestedRole: "OWNER"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.service.Submit(ctx, f.requester, RoleChangeSubmitInput{RequestedRole: domain.RoleCustomer})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

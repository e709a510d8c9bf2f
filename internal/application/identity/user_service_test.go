package identity

import (
	"context"
	"testing"
	"time"

	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/infrastructure/auth"
	"github.com/monartisan/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserService() (*UserService, *testutil.MockUserRepository, *auth.MemoryRevocationStore, *testutil.RecordingPublisher) {
	users := new(testutil.MockUserRepository)
	revocations := auth.NewMemoryRevocationStore()
	events := &testutil.RecordingPublisher{}
	return NewUserService(users, newTestJWTService(), revocations, events, zap.NewNop()), users, revocations, events
}

func TestUserService_InviteUser(t *testing.T) {
	ctx := context.Background()
	artisan, owner := newTestAccount(t)

	t.Run("owner invites employee", func(t *testing.T) {
		svc, users, _, events := newUserService()
		users.On("FindByID", ctx, artisan.ID, owner.ID).Return(owner, nil)
		users.On("ExistsByEmail", ctx, "paul@plomberie-durand.fr").Return(false, nil)
		users.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		dto, err := svc.InviteUser(ctx, artisan.ID, owner.ID, InviteUserInput{
			Email: "Paul@Plomberie-Durand.fr", Password: testPassword, DisplayName: "Paul",
		})
		require.NoError(t, err)
		assert.Equal(t, identity.UserRoleEmployee, dto.Role)
		assert.Equal(t, "paul@plomberie-durand.fr", dto.Email)
		assert.Equal(t, artisan.ID, dto.TenantID)
		assert.Equal(t, []string{identity.EventTypeUserCreated}, events.EventTypes())

		saved := users.Calls[2].Arguments.Get(1).(*identity.User)
		require.NotNil(t, saved.CreatedBy)
		assert.Equal(t, owner.ID, *saved.CreatedBy)
	})

	t.Run("employee cannot invite", func(t *testing.T) {
		svc, users, _, _ := newUserService()
		employee, err := identity.NewUser(artisan.ID, "paul@plomberie-durand.fr", testPassword, "Paul", identity.UserRoleEmployee)
		require.NoError(t, err)
		users.On("FindByID", ctx, artisan.ID, employee.ID).Return(employee, nil)

		_, err = svc.InviteUser(ctx, artisan.ID, employee.ID, InviteUserInput{
			Email: "julie@plomberie-durand.fr", Password: testPassword, DisplayName: "Julie",
		})
		assertDomainCode(t, err, "FORBIDDEN")
		users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("email taken", func(t *testing.T) {
		svc, users, _, _ := newUserService()
		users.On("FindByID", ctx, artisan.ID, owner.ID).Return(owner, nil)
		users.On("ExistsByEmail", ctx, "marc@plomberie-durand.fr").Return(true, nil)

		_, err := svc.InviteUser(ctx, artisan.ID, owner.ID, InviteUserInput{
			Email: "marc@plomberie-durand.fr", Password: testPassword, DisplayName: "Marc",
		})
		assertDomainCode(t, err, "EMAIL_TAKEN")
	})
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()
	artisan, owner := newTestAccount(t)
	svc, users, _, _ := newUserService()
	users.On("FindAllForTenant", ctx, artisan.ID).Return([]identity.User{*owner}, nil)

	list, err := svc.ListUsers(ctx, artisan.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, owner.ID, list[0].ID)
	assert.Equal(t, identity.UserRoleOwner, list[0].Role)
}

func TestUserService_DisableUserRevokesTokens(t *testing.T) {
	ctx := context.Background()
	artisan, owner := newTestAccount(t)
	employee, err := identity.NewUser(artisan.ID, "paul@plomberie-durand.fr", testPassword, "Paul", identity.UserRoleEmployee)
	require.NoError(t, err)
	employee.ClearDomainEvents()

	svc, users, revocations, events := newUserService()
	users.On("FindByID", ctx, artisan.ID, owner.ID).Return(owner, nil)
	users.On("FindByID", ctx, artisan.ID, employee.ID).Return(employee, nil)
	users.On("Save", ctx, employee).Return(nil)

	dto, err := svc.DisableUser(ctx, artisan.ID, owner.ID, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.UserStatusDisabled, dto.Status)
	assert.Equal(t, []string{identity.EventTypeUserDisabled}, events.EventTypes())

	revoked, err := revocations.IsSessionRevoked(ctx, employee.ID.String(), time.Now().Add(-time.Second))
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = svc.DisableUser(ctx, artisan.ID, owner.ID, owner.ID)
	assertDomainCode(t, err, "CANNOT_DISABLE_OWNER")

	users.On("Save", ctx, employee).Return(nil)
	dto, err = svc.EnableUser(ctx, artisan.ID, owner.ID, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.UserStatusActive, dto.Status)
}

package orgs

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallchat/portal/pkg/auth"
)

func newTestService(t *testing.T) (*PostgresService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresService(db), mock
}

func orgRow(id int64, plan PlanTier, customerID, subID string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "slug", "owner_id", "plan",
		"stripe_customer_id", "stripe_subscription_id", "created_at", "updated_at",
	}).AddRow(id, "Jane's Workspace", "jane-123", 1, plan, customerID, subID, now, now)
}

func TestGetOrganizationByStripeCustomer(t *testing.T) {
	service, mock := newTestService(t)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM organizations WHERE stripe_customer_id").
			WithArgs("cus_123").
			WillReturnRows(orgRow(7, PlanPro, "cus_123", "sub_456"))

		org, err := service.GetOrganizationByStripeCustomer("cus_123")
		require.NoError(t, err)
		assert.Equal(t, int64(7), org.ID)
		assert.Equal(t, PlanPro, org.Plan)
	})

	t.Run("unknown customer", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM organizations WHERE stripe_customer_id").
			WithArgs("cus_ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := service.GetOrganizationByStripeCustomer("cus_ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestHomeMembership(t *testing.T) {
	service, mock := newTestService(t)
	now := time.Now()

	t.Run("oldest membership wins", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, organization_id, user_id, role").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "user_id", "role", "created_at"}).
				AddRow(10, 7, 1, auth.RoleOwner, now))

		member, err := service.HomeMembership(1)
		require.NoError(t, err)
		assert.Equal(t, int64(7), member.OrganizationID)
		assert.Equal(t, auth.RoleOwner, member.Role)
	})

	t.Run("no membership", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, organization_id, user_id, role").
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		_, err := service.HomeMembership(99)
		assert.ErrorIs(t, err, ErrNoMembership)
	})
}

func TestSetPlan(t *testing.T) {
	service, mock := newTestService(t)

	t.Run("sets absolute values", func(t *testing.T) {
		mock.ExpectExec("UPDATE organizations SET plan").
			WithArgs(PlanPro, "sub_456", int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, service.SetPlan(7, PlanPro, "sub_456"))
	})

	t.Run("clears subscription on downgrade", func(t *testing.T) {
		mock.ExpectExec("UPDATE organizations SET plan").
			WithArgs(PlanFree, "", int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, service.SetPlan(7, PlanFree, ""))
	})

	t.Run("unknown organization", func(t *testing.T) {
		mock.ExpectExec("UPDATE organizations SET plan").
			WithArgs(PlanPro, "sub_456", int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, service.SetPlan(99, PlanPro, "sub_456"), ErrNotFound)
	})
}

func TestCanManageBilling(t *testing.T) {
	assert.True(t, (&OrgMember{Role: auth.RoleOwner}).CanManageBilling())
	assert.True(t, (&OrgMember{Role: auth.RoleAdmin}).CanManageBilling())
	assert.False(t, (&OrgMember{Role: auth.RoleMember}).CanManageBilling())
}

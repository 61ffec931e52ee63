package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/app/services"
	"github.com/shashiranjanraj/vyapar/pkg/apperr"
	"github.com/shashiranjanraj/vyapar/pkg/auth"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewAccountService(db)

	id, err := svc.Register(services.RegisterInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "sufficiently-long",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	var account models.Account
	require.NoError(t, db.First(&account, id).Error)
	assert.Equal(t, auth.RoleCustomer, account.Role)
	assert.NotEqual(t, "sufficiently-long", account.Password)

	token, err := svc.Login("asha@example.com", "sufficiently-long")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, auth.RoleCustomer, claims.Role)

	_, err = svc.Login("asha@example.com", "wrong password")
	assert.True(t, apperr.Is(err, apperr.Authorization))

	_, err = svc.Login("nobody@example.com", "whatever")
	assert.True(t, apperr.Is(err, apperr.Authorization))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewAccountService(db)

	in := services.RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "sufficiently-long"}
	_, err := svc.Register(in)
	require.NoError(t, err)

	_, err = svc.Register(in)
	assert.True(t, apperr.Is(err, apperr.Conflict))
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewAccountService(db)

	id, err := svc.Register(services.RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "original-secret",
	})
	require.NoError(t, err)
	me := auth.Principal{ID: id, Role: auth.RoleCustomer}

	err = svc.ChangePassword(me, "not the password", "new-secret-value")
	assert.True(t, apperr.Is(err, apperr.Authorization))

	require.NoError(t, svc.ChangePassword(me, "original-secret", "new-secret-value"))

	_, err = svc.Login("asha@example.com", "original-secret")
	assert.Error(t, err)
	_, err = svc.Login("asha@example.com", "new-secret-value")
	assert.NoError(t, err)
}

func TestUpdateAddressAndMe(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewAccountService(db)

	id, err := svc.Register(services.RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "sufficiently-long",
	})
	require.NoError(t, err)
	me := auth.Principal{ID: id, Role: auth.RoleCustomer}

	require.NoError(t, svc.UpdateAddress(me, "44 Brigade Road, Bengaluru"))

	account, err := svc.Me(me)
	require.NoError(t, err)
	assert.Equal(t, "44 Brigade Road, Bengaluru", account.Address)
}

func TestUpdateRoleAndDelete(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewAccountService(db)

	id, err := svc.Register(services.RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "sufficiently-long",
	})
	require.NoError(t, err)

	err = svc.UpdateRole(customer, id, auth.RoleAdmin)
	assert.True(t, apperr.Is(err, apperr.Authorization))

	err = svc.UpdateRole(admin, id, "SUPERUSER")
	assert.True(t, apperr.Is(err, apperr.Validation))

	err = svc.UpdateRole(admin, 999, auth.RoleAdmin)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	require.NoError(t, svc.UpdateRole(admin, id, auth.RoleAdmin))
	var account models.Account
	require.NoError(t, db.First(&account, id).Error)
	assert.Equal(t, auth.RoleAdmin, account.Role)

	err = svc.Delete(customer, id)
	assert.True(t, apperr.Is(err, apperr.Authorization))

	require.NoError(t, svc.Delete(admin, id))
	err = svc.Delete(admin, id)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

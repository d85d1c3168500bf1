package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
)

func TestCompanyService_Create(t *testing.T) {
	f := newFixture()
	svc := NewCompanyService(f.companies, f.authz, f.logger)

	c, err := svc.Create(context.Background(), &dto.CreateCompanyRequest{
		Name: " Globex ", Industry: "Energy", ContactEmail: "HR@Globex.example",
		Locations: []string{"Pune", "pune", "Chennai"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Globex", c.Name)
	assert.Equal(t, "hr@globex.example", c.ContactEmail)
	assert.Equal(t, models.CompanyActive, c.Status)
	assert.Equal(t, []string{"Pune", "Chennai"}, c.Locations)
	assert.Nil(t, c.Website)
}

func TestCompanyService_UpdateOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := NewCompanyService(f.companies, f.authz, f.logger)
	initech, recruiter := f.addCompany(20, "Initech")
	globex, _ := f.addCompany(21, "Globex")

	industry := "Fintech"
	updated, err := svc.Update(ctx, recruiter, initech.ID, &dto.UpdateCompanyRequest{Industry: &industry})
	require.NoError(t, err)
	assert.Equal(t, "Fintech", updated.Industry)

	_, err = svc.Update(ctx, recruiter, globex.ID, &dto.UpdateCompanyRequest{Industry: &industry})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	status := string(models.CompanyBlacklisted)
	_, err = svc.Update(ctx, recruiter, initech.ID, &dto.UpdateCompanyRequest{Status: &status})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied, "recruiters cannot change their own status")

	updated, err = svc.Update(ctx, adminActor, initech.ID, &dto.UpdateCompanyRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.CompanyBlacklisted, updated.Status)

	own, err := svc.GetOwn(ctx, recruiter)
	require.NoError(t, err)
	assert.Equal(t, initech.ID, own.ID)
}

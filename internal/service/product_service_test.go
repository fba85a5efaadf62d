package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const testBcryptCost = 4

func newProductFixture(t *testing.T) (*ProductService, *fakeStore, *fakeProductRepo) {
	t.Helper()
	store := newFakeStore()
	repo := &fakeProductRepo{store: store}
	svc := NewProductService(repo, &recordingDispatcher{}, testBcryptCost)
	return svc, store, repo
}

func TestCreateProductProvisionsAdminUser(t *testing.T) {
	svc, store, _ := newProductFixture(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, ProductInput{
		ID:            "acme",
		Name:          "Acme",
		AdminEmail:    "a@acme.com",
		AdminPassword: "x-secret-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "a@acme.com", product.AdminEmail)

	admin := store.userByEmail("a@acme.com")
	require.NotNil(t, admin)
	assert.Equal(t, domain.RoleProductAdmin, admin.Role)
	require.NotNil(t, admin.ProductID)
	assert.Equal(t, "acme", *admin.ProductID)
	assert.NoError(t, auth.ComparePassword(admin.PasswordHash, "x-secret-1"))
}

func TestCreateProductWithoutAdminEmail(t *testing.T) {
	svc, store, _ := newProductFixture(t)

	product, err := svc.CreateProduct(context.Background(), ProductInput{ID: "bare", Name: "Bare"})
	require.NoError(t, err)
	assert.False(t, product.HasAdmin())
	assert.Empty(t, store.users)
}

func TestCreateProductDuplicateID(t *testing.T) {
	svc, _, _ := newProductFixture(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{ID: "acme", Name: "Acme"})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, ProductInput{ID: "acme", Name: "Acme Again"})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, "DUPLICATE", domainErr.Code)
}

func TestCreateProductRequiresPasswordWithAdminEmail(t *testing.T) {
	svc, _, _ := newProductFixture(t)

	_, err := svc.CreateProduct(context.Background(), ProductInput{
		ID: "acme", Name: "Acme", AdminEmail: "a@acme.com",
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestCreateProductRollsBackWhenAdminWriteFails(t *testing.T) {
	svc, store, repo := newProductFixture(t)
	repo.adminErr = errors.New("users insert failed")

	_, err := svc.CreateProduct(context.Background(), ProductInput{
		ID: "acme", Name: "Acme", AdminEmail: "a@acme.com", AdminPassword: "x-secret-1",
	})
	require.Error(t, err)
	assert.Empty(t, store.products, "product row must not survive a failed admin write")
	assert.Empty(t, store.users)
}

func TestUpdateProductRejectsNewAdminEmailWithoutPassword(t *testing.T) {
	svc, store, _ := newProductFixture(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{
		ID: "acme", Name: "Acme", AdminEmail: "a@acme.com", AdminPassword: "x-secret-1",
	})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, "acme", ProductInput{
		Name: "Acme", AdminEmail: "b@acme.com",
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)

	assert.Nil(t, store.userByEmail("b@acme.com"))
	assert.Equal(t, "a@acme.com", store.products["acme"].AdminEmail)
}

func TestUpdateProductKeepsPasswordWhenBlank(t *testing.T) {
	svc, store, _ := newProductFixture(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{
		ID: "acme", Name: "Acme", AdminEmail: "a@acme.com", AdminPassword: "x-secret-1",
	})
	require.NoError(t, err)
	before := store.userByEmail("a@acme.com").PasswordHash

	_, err = svc.UpdateProduct(ctx, "acme", ProductInput{
		Name: "Acme Renamed", AdminEmail: "a@acme.com",
	})
	require.NoError(t, err)

	admin := store.userByEmail("a@acme.com")
	require.NotNil(t, admin)
	assert.Equal(t, before, admin.PasswordHash)
	assert.Equal(t, "Acme Renamed", store.products["acme"].Name)
}

func TestUpdateProductNotFound(t *testing.T) {
	svc, _, _ := newProductFixture(t)

	_, err := svc.UpdateProduct(context.Background(), "ghost", ProductInput{Name: "Ghost"})
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

func TestDeleteProductCascadesToAdminUser(t *testing.T) {
	svc, store, _ := newProductFixture(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{
		ID: "acme", Name: "Acme", AdminEmail: "a@acme.com", AdminPassword: "x-secret-1",
	})
	require.NoError(t, err)
	require.Len(t, store.users, 1)

	require.NoError(t, svc.DeleteProduct(ctx, "acme"))
	assert.Empty(t, store.products)
	assert.Empty(t, store.users)
}

func TestDeleteProductWithoutAdminSkipsUserLookup(t *testing.T) {
	svc, store, repo := newProductFixture(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{ID: "bare", Name: "Bare"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, "bare"))
	assert.Zero(t, repo.adminLookups)
	assert.Empty(t, store.products)
}

func TestDeleteProductNotFound(t *testing.T) {
	svc, _, _ := newProductFixture(t)

	err := svc.DeleteProduct(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/backoffice/internal/models"
)

func TestClientRepository(t *testing.T) {
	pool, ctx := setupTest(t)
	repo := NewClientRepository(pool)

	maria := &models.Client{Name: "Maria", Phone: "11 99999-0000", Address: "Rua A, 10", Email: "maria@example.com"}
	ana := &models.Client{Name: "Ana"}

	t.Run("creates", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, maria))
		require.NoError(t, repo.Create(ctx, ana))
		require.NotEmpty(t, maria.ID)
		require.False(t, maria.CreatedAt.IsZero())
	})

	t.Run("gets by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, maria.ID)
		require.NoError(t, err)
		require.Equal(t, "Maria", got.Name)
		require.Equal(t, "maria@example.com", got.Email)
	})

	t.Run("missing email comes back empty", func(t *testing.T) {
		got, err := repo.GetByID(ctx, ana.ID)
		require.NoError(t, err)
		require.Empty(t, got.Email)
	})

	t.Run("lists by name", func(t *testing.T) {
		got, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, "Ana", got[0].Name)
		require.Equal(t, "Maria", got[1].Name)
	})

	t.Run("missing client", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestClientRepository_LinkedInvoice(t *testing.T) {
	pool, ctx := setupTest(t)
	clients := NewClientRepository(pool)
	invoices := NewInvoiceRepository(pool)

	client := &models.Client{Name: "Maria"}
	require.NoError(t, clients.Create(ctx, client))

	invoice := &models.Invoice{
		Title:      "Kit festa",
		ClientID:   &client.ID,
		ClientName: client.Name,
		Value:      decimal.NewFromInt(300),
		Date:       date(2024, 2, 15),
	}
	require.NoError(t, invoices.Create(ctx, invoice))

	got, err := invoices.GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ClientID)
	require.Equal(t, client.ID, *got.ClientID)
}

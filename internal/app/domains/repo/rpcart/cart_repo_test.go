package rpcart

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takeout/internal/app/domains/entity/etcart"
	"takeout/internal/app/infra/persistence/dbtest"
	"takeout/internal/app/pkg/errorx"
)

func TestFindLineMatchesMergeKey(t *testing.T) {
	repo := NewCartRepository(dbtest.Open(t))
	ctx := context.Background()

	dish, setmeal := int64(1), int64(2)
	spicy := etcart.Key{UserID: 9, DishID: &dish, DishFlavor: "spicy"}
	require.NoError(t, repo.Insert(ctx, etcart.NewItem(spicy, "Noodles", "", decimal.NewFromInt(12), time.Now())))
	box := etcart.Key{UserID: 9, SetmealID: &setmeal}
	require.NoError(t, repo.Insert(ctx, etcart.NewItem(box, "Box", "", decimal.NewFromInt(30), time.Now())))

	got, err := repo.FindLine(ctx, spicy)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Noodles", got.Name)

	mild := spicy
	mild.DishFlavor = "mild"
	got, err = repo.FindLine(ctx, mild)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.FindLine(ctx, etcart.Key{UserID: 10, SetmealID: &setmeal})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.FindLine(ctx, box)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.DishID)
}

func TestQuantityAndDelete(t *testing.T) {
	repo := NewCartRepository(dbtest.Open(t))
	ctx := context.Background()

	dish := int64(1)
	item := etcart.NewItem(etcart.Key{UserID: 3, DishID: &dish}, "Rice", "", decimal.NewFromInt(2), time.Now())
	require.NoError(t, repo.Insert(ctx, item))
	require.NoError(t, repo.UpdateQuantity(ctx, item.ID, 4))

	got, err := repo.GetByID(ctx, 3, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)

	_, err = repo.GetByID(ctx, 4, item.ID)
	assert.ErrorIs(t, err, errorx.ErrCartItemNotFound)

	items, err := repo.ListByUserForUpdate(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, repo.DeleteByUser(ctx, 3))
	items, err = repo.ListByUser(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, items)
}

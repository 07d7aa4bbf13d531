package usecase_test

import (
	"context"
	"sync"
	"testing"

	"sweetshop_api/internal/domain"
	"sweetshop_api/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPurchaseProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("DecrementsStockByExactlyOne", func(t *testing.T) {
		repo := newFakeProductRepo()
		id := repo.seed(domain.Product{Name: "Chocolate Truffle", Price: 2.5, Quantity: 3})
		uc := usecase.NewInventoryUseCase(repo, newTestLogger())

		product, err := uc.PurchaseProduct(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 2, product.Quantity)
		assert.Equal(t, 2, repo.get(id).Quantity)
		assert.Equal(t, "Chocolate Truffle", product.Name)
	})

	t.Run("NonexistentProductIsNotFound", func(t *testing.T) {
		repo := newFakeProductRepo()
		uc := usecase.NewInventoryUseCase(repo, newTestLogger())

		_, err := uc.PurchaseProduct(ctx, primitive.NewObjectID())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NotErrorIs(t, err, domain.ErrOutOfStock)
	})

	t.Run("DepletedProductIsOutOfStock", func(t *testing.T) {
		repo := newFakeProductRepo()
		id := repo.seed(domain.Product{Name: "Lemon Tart", Price: 3.5, Quantity: 0})
		uc := usecase.NewInventoryUseCase(repo, newTestLogger())

		_, err := uc.PurchaseProduct(ctx, id)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrOutOfStock)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("StoreFailurePropagates", func(t *testing.T) {
		repo := newFakeProductRepo()
		repo.failWith = domain.ErrStoreUnavailable
		uc := usecase.NewInventoryUseCase(repo, newTestLogger())

		_, err := uc.PurchaseProduct(ctx, primitive.NewObjectID())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}

// Fifty concurrent purchases against five units must produce exactly five
// successes and never drive the stored quantity negative.
func TestPurchaseProduct_ConcurrentNoOversell(t *testing.T) {
	const (
		initialStock = 5
		buyers       = 50
	)

	repo := newFakeProductRepo()
	id := repo.seed(domain.Product{Name: "Glazed Donuts", Price: 1.5, Quantity: initialStock})
	uc := usecase.NewInventoryUseCase(repo, newTestLogger())

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		outOfStock int
	)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			product, err := uc.PurchaseProduct(context.Background(), id)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				assert.GreaterOrEqual(t, product.Quantity, 0)
				return
			}
			assert.ErrorIs(t, err, domain.ErrOutOfStock)
			outOfStock++
		}()
	}
	wg.Wait()

	assert.Equal(t, initialStock, successes)
	assert.Equal(t, buyers-initialStock, outOfStock)
	assert.Equal(t, 0, repo.get(id).Quantity)
}

func TestRestockProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("AddsAmountToStock", func(t *testing.T) {
		repo := newFakeProductRepo()
		id := repo.seed(domain.Product{Name: "Macarons", Price: 15, Quantity: 5})
		uc := usecase.NewInventoryUseCase(repo, newTestLogger())

		product, err := uc.RestockProduct(ctx, id, "10")
		require.NoError(t, err)
		assert.Equal(t, 15, product.Quantity)
		assert.Equal(t, 15, repo.get(id).Quantity)
	})

	t.Run("RejectsNonPositiveAndMalformedAmounts", func(t *testing.T) {
		repo := newFakeProductRepo()
		id := repo.seed(domain.Product{Name: "Macarons", Price: 15, Quantity: 5})
		uc := usecase.NewInventoryUseCase(repo, newTestLogger())

		for _, amount := range []string{"0", "-5", "abc", ""} {
			_, err := uc.RestockProduct(ctx, id, amount)
			require.Error(t, err, "amount %q", amount)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument, "amount %q", amount)
		}
		assert.Equal(t, 5, repo.get(id).Quantity)
	})

	t.Run("NonexistentProductIsNotFound", func(t *testing.T) {
		repo := newFakeProductRepo()
		uc := usecase.NewInventoryUseCase(repo, newTestLogger())

		_, err := uc.RestockProduct(ctx, primitive.NewObjectID(), "10")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-gems/storefront/internal/catalog/domain"
)

type fakeRepo struct {
	mu         sync.Mutex
	products   []domain.Product
	categories []string
	listErr    error
	listCalls  int
}

func (r *fakeRepo) ListProducts(context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.products, nil
}

func (r *fakeRepo) ListCategories(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.categories, nil
}

func (r *fakeRepo) FindByID(context.Context, string) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

func (r *fakeRepo) Insert(context.Context, *domain.Product) error { return nil }
func (r *fakeRepo) Update(context.Context, *domain.Product) error { return nil }
func (r *fakeRepo) Delete(context.Context, string) error          { return nil }
func (r *fakeRepo) Count(context.Context) (int64, error)          { return 0, nil }

func (r *fakeRepo) set(products []domain.Product, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = products
	r.listErr = err
}

func (r *fakeRepo) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listCalls
}

func TestCacheSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("first read fetches", func(t *testing.T) {
		repo := &fakeRepo{products: []domain.Product{{ID: "p1", Category: "Rings"}}}
		c := New(repo, time.Minute)

		snap, err := c.Snapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, snap.Products, 1)
		assert.Equal(t, 1, repo.calls())
	})

	t.Run("fresh snapshot is served without refetching", func(t *testing.T) {
		repo := &fakeRepo{products: []domain.Product{{ID: "p1"}}}
		c := New(repo, time.Minute)

		_, err := c.Snapshot(ctx)
		require.NoError(t, err)
		_, err = c.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, repo.calls())
	})

	t.Run("expired snapshot refetches", func(t *testing.T) {
		repo := &fakeRepo{products: []domain.Product{{ID: "p1"}}}
		c := New(repo, time.Minute)

		now := time.Now()
		c.now = func() time.Time { return now }

		_, err := c.Snapshot(ctx)
		require.NoError(t, err)

		now = now.Add(61 * time.Second)
		assert.False(t, c.Valid())

		_, err = c.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, repo.calls())
	})

	t.Run("categories derived from products when store has none", func(t *testing.T) {
		repo := &fakeRepo{products: []domain.Product{
			{ID: "p1", Category: "Rings"},
			{ID: "p2", Category: "Necklaces"},
		}}
		c := New(repo, time.Minute)

		snap, err := c.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"necklaces", "rings"}, snap.Categories)
	})

	t.Run("stored category list wins when present", func(t *testing.T) {
		repo := &fakeRepo{
			products:   []domain.Product{{ID: "p1", Category: "Rings"}},
			categories: []string{"bracelets", "rings"},
		}
		c := New(repo, time.Minute)

		snap, err := c.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"bracelets", "rings"}, snap.Categories)
	})

	t.Run("stale snapshot is served while the store is down", func(t *testing.T) {
		repo := &fakeRepo{products: []domain.Product{{ID: "p1"}}}
		c := New(repo, time.Minute)

		_, err := c.Snapshot(ctx)
		require.NoError(t, err)

		repo.set(nil, errors.New("store unreachable"))
		c.Invalidate()

		snap, err := c.Snapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, snap.Products, 1)
	})

	t.Run("no snapshot and a down store surfaces the error", func(t *testing.T) {
		repo := &fakeRepo{listErr: errors.New("store unreachable")}
		c := New(repo, time.Minute)

		_, err := c.Snapshot(ctx)
		assert.Error(t, err)
	})
}

func TestCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{products: []domain.Product{{ID: "p1"}}}
	c := New(repo, time.Hour)

	_, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, c.Valid())

	c.Invalidate()
	assert.False(t, c.Valid())

	repo.set([]domain.Product{{ID: "p1"}, {ID: "p2"}}, nil)
	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Products, 2)
}

// blockingRepo parks the first ListProducts call until released, so a
// test can let a second fetch overtake it.
type blockingRepo struct {
	fakeRepo
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *blockingRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var first bool
	r.once.Do(func() { first = true })
	if first {
		close(r.started)
		<-r.release
		return []domain.Product{{ID: "old"}}, nil
	}
	return r.fakeRepo.ListProducts(ctx)
}

func TestCacheRejectsSupersededFetch(t *testing.T) {
	ctx := context.Background()
	repo := &blockingRepo{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	repo.fakeRepo.products = []domain.Product{{ID: "new"}}

	c := New(repo, time.Hour)

	done := make(chan error, 1)
	go func() { done <- c.Refresh(ctx) }()
	<-repo.started

	// A later fetch completes while the first is still in flight.
	require.NoError(t, c.Refresh(ctx))

	close(repo.release)
	require.NoError(t, <-done)

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "new", snap.Products[0].ID)
}

func TestCacheInvalidateFencesInFlightFetch(t *testing.T) {
	ctx := context.Background()
	repo := &blockingRepo{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	repo.fakeRepo.products = []domain.Product{{ID: "new"}}

	c := New(repo, time.Hour)

	done := make(chan error, 1)
	go func() { done <- c.Refresh(ctx) }()
	<-repo.started

	// The invalidation lands while the fetch is still in flight, so its
	// result predates the invalidation and must not re-validate the cache.
	c.Invalidate()

	close(repo.release)
	require.NoError(t, <-done)
	require.False(t, c.Valid())

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "new", snap.Products[0].ID)
}

func TestCacheDefaultTTL(t *testing.T) {
	c := New(&fakeRepo{}, 0)
	assert.Equal(t, DefaultTTL, c.ttl)
}

package dataset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shoplens/domain/dataset"
)

type mockLoader struct {
	mock.Mock
}

func (m *mockLoader) Load(ctx context.Context) (*dataset.Dataset, error) {
	args := m.Called(ctx)
	ds, _ := args.Get(0).(*dataset.Dataset)
	return ds, args.Error(1)
}

func (m *mockLoader) SourceID() string {
	return m.Called().String(0)
}

func smallDataset(t *testing.T, source string) *dataset.Dataset {
	t.Helper()
	b, err := dataset.NewBuilder(source, []dataset.ColumnSpec{{Name: "Age", Kind: dataset.KindNumeric}})
	require.NoError(t, err)
	require.NoError(t, b.Append([]string{"30"}))
	return b.Build()
}

func TestCacheLoadsOncePerSource(t *testing.T) {
	ds := smallDataset(t, "a")
	loader := new(mockLoader)
	loader.On("SourceID").Return("a")
	loader.On("Load", mock.Anything).Return(ds, nil).Once()

	cache := NewCache(0)
	for i := 0; i < 3; i++ {
		got, err := cache.Get(context.Background(), loader)
		require.NoError(t, err)
		assert.Same(t, ds, got)
	}
	loader.AssertExpectations(t)
	assert.Equal(t, CacheStats{Entries: 1, Hits: 2, Misses: 1}, cache.Stats())
}

func TestCacheReloadsWhenSourceChanges(t *testing.T) {
	first, second := smallDataset(t, "v1"), smallDataset(t, "v2")
	loader := new(mockLoader)
	loader.On("SourceID").Return("v1").Once()
	loader.On("SourceID").Return("v2").Once()
	loader.On("Load", mock.Anything).Return(first, nil).Once()
	loader.On("Load", mock.Anything).Return(second, nil).Once()

	cache := NewCache(0)
	got, err := cache.Get(context.Background(), loader)
	require.NoError(t, err)
	assert.Same(t, first, got)

	got, err = cache.Get(context.Background(), loader)
	require.NoError(t, err)
	assert.Same(t, second, got)
	loader.AssertExpectations(t)
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	ds := smallDataset(t, "a")
	loader := new(mockLoader)
	loader.On("SourceID").Return("a")
	loader.On("Load", mock.Anything).Return(nil, errors.New("disk on fire")).Once()
	loader.On("Load", mock.Anything).Return(ds, nil).Once()

	cache := NewCache(0)
	_, err := cache.Get(context.Background(), loader)
	assert.Error(t, err)

	got, err := cache.Get(context.Background(), loader)
	require.NoError(t, err)
	assert.Same(t, ds, got)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewCache(2)
	for _, id := range []string{"a", "b", "c"} {
		loader := new(mockLoader)
		loader.On("SourceID").Return(id)
		loader.On("Load", mock.Anything).Return(smallDataset(t, id), nil)
		_, err := cache.Get(context.Background(), loader)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, 2, cache.Stats().Entries)

	cache.Invalidate("c")
	assert.Equal(t, 1, cache.Stats().Entries)
}

func TestCacheConcurrentMissesShareOneLoad(t *testing.T) {
	ds := smallDataset(t, "a")
	release := make(chan struct{})
	loader := new(mockLoader)
	loader.On("SourceID").Return("a")
	loader.On("Load", mock.Anything).Run(func(mock.Arguments) { <-release }).Return(ds, nil).Once()

	cache := NewCache(0)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := cache.Get(context.Background(), loader)
			assert.NoError(t, err)
			assert.Same(t, ds, got)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	loader.AssertExpectations(t)
}

type gatedLoader struct {
	release chan struct{}
	ds      *dataset.Dataset
	loads   atomic.Int32
}

func (l *gatedLoader) Load(ctx context.Context) (*dataset.Dataset, error) {
	l.loads.Add(1)
	<-l.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.ds, nil
}

func (l *gatedLoader) SourceID() string { return "gated" }

func TestCacheLoadSurvivesCancelledCaller(t *testing.T) {
	loader := &gatedLoader{release: make(chan struct{}), ds: smallDataset(t, "gated")}
	cache := NewCache(0)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx, loader)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return loader.loads.Load() == 1 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	time.AfterFunc(20*time.Millisecond, func() { close(loader.release) })
	got, err := cache.Get(context.Background(), loader)
	require.NoError(t, err)
	assert.Same(t, loader.ds, got)
	assert.Equal(t, int32(1), loader.loads.Load())
}

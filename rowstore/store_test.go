package rowstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/gripterra/entity"
	"github.com/teranos/gripterra/errors"
	"github.com/teranos/gripterra/internal/testutil"
	"go.uber.org/zap/zaptest"
)

func newTestStore(t *testing.T) (*Store, *testutil.FakeUpstream) {
	t.Helper()
	up, cat := testutil.SampleWorkspace(t)
	return New(cat, up, zaptest.NewLogger(t).Sugar()), up
}

func TestRowsInUpstreamOrder(t *testing.T) {
	store, up := newTestStore(t)

	rows, err := store.Rows(context.Background(), testutil.Samples)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "s1", rows[0].ID)
	assert.Equal(t, "s2", rows[1].ID)
	assert.Equal(t, "s3", rows[2].ID)
	assert.Equal(t, int32(1), up.Fetches.Load())

	assert.Equal(t, "active", rows[0].Attributes["status"])
	assert.Contains(t, rows[0].Refs, "files")
	assert.Contains(t, rows[0].Refs, "participant")
}

func TestRowsPopulateOnce(t *testing.T) {
	store, up := newTestStore(t)
	ctx := context.Background()

	assert.False(t, store.Cached(testutil.Participants))

	first, err := store.Rows(ctx, testutil.Participants)
	require.NoError(t, err)
	second, err := store.Rows(ctx, testutil.Participants)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, store.Cached(testutil.Participants))
	assert.Equal(t, int32(1), up.Fetches.Load())
}

func TestConcurrentFirstAccessFetchesOnce(t *testing.T) {
	store, up := newTestStore(t)
	release := up.Hold()

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Rows(context.Background(), testutil.Files)
		}(i)
	}

	require.Eventually(t, func() bool { return up.Fetches.Load() == 1 }, time.Second, 5*time.Millisecond)
	release()
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), up.Fetches.Load())
}

func TestRowByID(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	row, err := store.Row(ctx, testutil.Participants, "p2")
	require.NoError(t, err)
	assert.Equal(t, "withdrawn", row.Attributes["status"])
	assert.Equal(t, float64(35), row.Attributes["age"])

	_, err = store.Row(ctx, testutil.Participants, "p9")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestUnconfiguredCollection(t *testing.T) {
	store, up := newTestStore(t)

	_, err := store.Rows(context.Background(), entity.VertexAddr{Namespace: "anvil", Name: "ws1", Type: "aliquot"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
	assert.Equal(t, int32(0), up.Fetches.Load())
}

func TestUpstreamFailureIsNotCached(t *testing.T) {
	store, up := newTestStore(t)
	ctx := context.Background()
	up.FailNext(1)

	_, err := store.Rows(ctx, testutil.Files)
	require.Error(t, err)
	assert.True(t, errors.IsUpstreamUnavailableError(err))
	assert.False(t, store.Cached(testutil.Files))

	rows, err := store.Rows(ctx, testutil.Files)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, int32(2), up.Fetches.Load())
}

func TestCancelledCallerDoesNotFailOthers(t *testing.T) {
	store, up := newTestStore(t)
	release := up.Hold()

	cancelled, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := store.Rows(cancelled, testutil.Files)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return up.Fetches.Load() == 1 }, time.Second, 5*time.Millisecond)

	secondErr := make(chan error, 1)
	go func() {
		_, err := store.Rows(context.Background(), testutil.Files)
		secondErr <- err
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	release()
	assert.NoError(t, <-secondErr)
	assert.True(t, store.Cached(testutil.Files))
}

func TestMalformedRowsAreSkipped(t *testing.T) {
	store, up := newTestStore(t)
	up.Put(t, testutil.Files, `[
		{"name": "f1", "entityType": "file", "attributes": {}},
		{"name": "", "entityType": "file", "attributes": {}},
		{"name": "f2", "entityType": "file", "attributes": {}}
	]`)

	rows, err := store.Rows(context.Background(), testutil.Files)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "f2", rows[1].ID)
}

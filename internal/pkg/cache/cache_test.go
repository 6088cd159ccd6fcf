package cache

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingFetch(value interface{}, err error) (FetchFn, *int) {
	calls := 0
	return func(ctx context.Context) (interface{}, error) {
		calls++
		if err != nil {
			return nil, err
		}
		return value, nil
	}, &calls
}

func TestGetOrFetchReturnsFreshEntryWithoutRefetch(t *testing.T) {
	c := New(time.Minute)
	fetch, calls := countingFetch("hospitals", nil)

	v, err := c.GetOrFetch(context.Background(), "k", fetch, Options{TTL: 100 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, "hospitals", v)

	v, err = c.GetOrFetch(context.Background(), "k", fetch, Options{TTL: 100 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, "hospitals", v)
	assert.Equal(t, 1, *calls)
}

func TestGetOrFetchRefetchesAfterTTL(t *testing.T) {
	c := New(time.Minute)
	fetch, calls := countingFetch("v", nil)

	_, err := c.GetOrFetch(context.Background(), "k", fetch, Options{TTL: 100 * time.Millisecond})
	require.NoError(t, err)

	time.Sleep(150 * time.Millisecond)

	_, err = c.GetOrFetch(context.Background(), "k", fetch, Options{TTL: 100 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestGetOrFetchForceRefresh(t *testing.T) {
	c := New(time.Minute)
	fetch, calls := countingFetch("v", nil)

	_, err := c.GetOrFetch(context.Background(), "k", fetch, Options{})
	require.NoError(t, err)

	_, err = c.GetOrFetch(context.Background(), "k", fetch, Options{ForceRefresh: true})
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestGetOrFetchServesStaleOnFetchFailure(t *testing.T) {
	c := New(time.Minute)

	okFetch, _ := countingFetch("stale-but-usable", nil)
	_, err := c.GetOrFetch(context.Background(), "k", okFetch, Options{TTL: 50 * time.Millisecond})
	require.NoError(t, err)

	time.Sleep(80 * time.Millisecond)

	failFetch, _ := countingFetch(nil, errors.New("db down"))
	v, err := c.GetOrFetch(context.Background(), "k", failFetch, Options{TTL: 50 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, "stale-but-usable", v)
}

func TestGetOrFetchPropagatesErrorWithoutPreviousEntry(t *testing.T) {
	c := New(time.Minute)
	failFetch, _ := countingFetch(nil, errors.New("db down"))

	_, err := c.GetOrFetch(context.Background(), "missing", failFetch, Options{})
	assert.EqualError(t, err, "db down")
}

func TestGetOrFetchDoesNotStoreNil(t *testing.T) {
	c := New(time.Minute)
	nilFetch, calls := countingFetch(nil, nil)

	v, err := c.GetOrFetch(context.Background(), "k", nilFetch, Options{})
	require.NoError(t, err)
	assert.Nil(t, v)

	// Nothing was cached, so the next call fetches again.
	_, err = c.GetOrFetch(context.Background(), "k", nilFetch, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestInvalidate(t *testing.T) {
	c := New(time.Minute)
	fetch, calls := countingFetch("v", nil)

	_, err := c.GetOrFetch(context.Background(), "k", fetch, Options{})
	require.NoError(t, err)

	c.Invalidate("k")

	_, err = c.GetOrFetch(context.Background(), "k", fetch, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestInvalidatePattern(t *testing.T) {
	c := New(time.Minute)

	for _, key := range []string{"hospitals:list", "hospitals:7", "groups:list"} {
		fetch, _ := countingFetch(key, nil)
		_, err := c.GetOrFetch(context.Background(), key, fetch, Options{})
		require.NoError(t, err)
	}

	c.InvalidatePattern(regexp.MustCompile(`^hospitals:`))

	groupsFetch, groupCalls := countingFetch("groups:list", nil)
	_, err := c.GetOrFetch(context.Background(), "groups:list", groupsFetch, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, *groupCalls, "entry outside the pattern should survive")

	hospFetch, hospCalls := countingFetch("hospitals:list", nil)
	_, err = c.GetOrFetch(context.Background(), "hospitals:list", hospFetch, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, *hospCalls)
}

func TestClear(t *testing.T) {
	c := New(time.Minute)
	fetch, calls := countingFetch("v", nil)

	_, err := c.GetOrFetch(context.Background(), "k", fetch, Options{})
	require.NoError(t, err)

	c.Clear()

	_, err = c.GetOrFetch(context.Background(), "k", fetch, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

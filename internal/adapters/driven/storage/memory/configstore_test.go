package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_EmptyByDefault(t *testing.T) {
	store := NewConfigStore()

	_, ok := store.Get("llm.model")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("llm.model"))
	assert.Zero(t, store.GetInt("retrieval.k"))
	assert.Zero(t, store.GetFloat("llm.temperature"))
	assert.False(t, store.GetBool("retrieval.enabled"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.model", "gpt-4o"))
	require.NoError(t, store.Set("llm.temperature", 0.5))
	require.NoError(t, store.Set("retrieval.k", 7))
	require.NoError(t, store.Set("retrieval.enabled", true))

	assert.Equal(t, "gpt-4o", store.GetString("llm.model"))
	assert.InDelta(t, 0.5, store.GetFloat("llm.temperature"), 1e-9)
	assert.Equal(t, 7, store.GetInt("retrieval.k"))
	assert.True(t, store.GetBool("retrieval.enabled"))
}

func TestConfigStore_Update(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("llm.model", "old"))

	require.NoError(t, store.Update(map[string]any{
		"llm.model":     "new",
		"index.workers": 2,
	}))

	assert.Equal(t, "new", store.GetString("llm.model"))
	assert.Equal(t, 2, store.GetInt("index.workers"))
}

func TestConfigStore_LoadKeepsValues(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("llm.model", "gpt-4o"))

	require.NoError(t, store.Load())
	assert.Equal(t, "gpt-4o", store.GetString("llm.model"))
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("retrieval.k", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("retrieval.k")
		}()
	}
	wg.Wait()

	_, ok := store.Get("retrieval.k")
	assert.True(t, ok)
}

package telemetry_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pour/internal/adapters/telemetry"
)

type collector struct {
	mu     sync.Mutex
	chunks []string
}

func (c *collector) add(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = append(c.chunks, string(data))
}

func (c *collector) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.chunks...)
}

func TestBatcher_FlushOnSize(t *testing.T) {
	var c collector
	b := telemetry.NewBatcher(5, time.Hour, c.add)
	defer func() { _ = b.Close() }()

	_, err := b.Write([]byte("123"))
	require.NoError(t, err)
	assert.Empty(t, c.get())

	_, err = b.Write([]byte("456"))
	require.NoError(t, err)
	assert.Equal(t, []string{"123456"}, c.get())
}

func TestBatcher_FlushOnInterval(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		b := telemetry.NewBatcher(100, 50*time.Millisecond, c.add)
		defer func() { _ = b.Close() }()

		_, err := b.Write([]byte("hello"))
		require.NoError(t, err)

		time.Sleep(49 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, c.get())

		time.Sleep(2 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []string{"hello"}, c.get())
	})
}

func TestBatcher_CloseFlushesAndRejectsWrites(t *testing.T) {
	var c collector
	b := telemetry.NewBatcher(100, time.Hour, c.add)

	_, err := b.Write([]byte("tail"))
	require.NoError(t, err)
	require.NoError(t, b.Close())
	assert.Equal(t, []string{"tail"}, c.get())

	_, err = b.Write([]byte("late"))
	require.Error(t, err)
	require.NoError(t, b.Close())
}

func TestBatcher_Defaults(t *testing.T) {
	var c collector
	b := telemetry.NewBatcher(0, 0, c.add)
	defer func() { _ = b.Close() }()

	_, err := b.Write(make([]byte, telemetry.DefaultBatchSize))
	require.NoError(t, err)
	assert.Len(t, c.get(), 1)
}

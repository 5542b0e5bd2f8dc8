package parallel

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionCoversEveryRowOnce(t *testing.T) {
	cases := []struct {
		bounds image.Rectangle
		s      Settings
	}{
		{image.Rect(0, 0, 10, 1), Settings{8, 1}},
		{image.Rect(0, 0, 100, 37), Settings{4, 1}},
		{image.Rect(0, 0, 100, 37), Settings{64, 1}},
		{image.Rect(0, 3, 7, 20), Settings{3, 10}},
		{image.Rect(0, 0, 1000, 1000), DefaultSettings()},
		{image.Rect(0, 0, 4, 4), Settings{0, 0}},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%v/%d", c.bounds, c.s.MaxDegreeOfParallelism), func(t *testing.T) {
			intervals := Partition(c.bounds, c.s)
			require.NotEmpty(t, intervals)
			seen := make(map[int]int)
			prev := c.bounds.Min.Y
			for _, iv := range intervals {
				require.Equal(t, prev, iv.Min, "intervals must be contiguous")
				require.Greater(t, iv.Height(), 0)
				for y := iv.Min; y < iv.Max; y++ {
					seen[y]++
				}
				prev = iv.Max
			}
			require.Equal(t, c.bounds.Max.Y, prev)
			require.Len(t, seen, c.bounds.Dy())
			if c.s.Validate() == nil {
				require.LessOrEqual(t, len(intervals), c.s.MaxDegreeOfParallelism)
			}
		})
	}
}

func TestPartitionRespectsMinimumWork(t *testing.T) {
	// 10x10 = 100 pixels with a 60 pixel minimum leaves room for 2 tasks
	intervals := Partition(image.Rect(0, 0, 10, 10), Settings{8, 60})
	assert.Len(t, intervals, 2)
	assert.Nil(t, Partition(image.Rectangle{}, DefaultSettings()))
}

func TestIterateRowsVisitsAllRows(t *testing.T) {
	bounds := image.Rect(0, 0, 16, 50)
	var visited [50]atomic.Int32
	err := IterateRows(bounds, Settings{5, 1}, func(rows RowInterval) {
		for y := rows.Min; y < rows.Max; y++ {
			visited[y].Add(1)
		}
	})
	require.NoError(t, err)
	for y := range visited {
		assert.Equal(t, int32(1), visited[y].Load(), "row %d", y)
	}
}

func TestIterateRowsWithTempBufferIsPrivate(t *testing.T) {
	bounds := image.Rect(0, 0, 8, 40)
	var mu sync.Mutex
	buffers := make(map[*float32]RowInterval)
	err := IterateRowsWithTempBuffer(bounds, Settings{4, 1}, func(rows RowInterval, buf []float32) {
		assert.Len(t, buf, 8)
		mu.Lock()
		buffers[&buf[0]] = rows
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.Len(t, buffers, len(Partition(bounds, Settings{4, 1})))
}

func TestIterateRowsRecoversPanics(t *testing.T) {
	for _, s := range []Settings{{1, 1}, {4, 1}} {
		err := IterateRows(image.Rect(0, 0, 4, 8), s, func(rows RowInterval) {
			if rows.Min == 0 {
				panic("boom")
			}
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrWorkerPanic))
		assert.Contains(t, err.Error(), "boom")
	}
}

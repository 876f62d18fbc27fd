// Copyright 2020 Nathan Taylor (nbtaylor@gmail.com)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package keylock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutexStatsCountsContention(t *testing.T) {
	m := NewMutex[int]()
	ctx := context.Background()

	g, err := m.Lock(ctx, 0)
	require.NoError(t, err)

	blocked := make(chan struct{})
	go func() {
		g2, err := m.Lock(ctx, 0)
		require.NoError(t, err)
		close(blocked)
		g2.Unlock()
	}()
	time.Sleep(10 * time.Millisecond)
	g.Unlock()
	<-blocked

	stats := m.Stats()
	assert.Equal(t, int64(2), stats.Acquires)
	assert.Equal(t, int64(1), stats.Contentions)
	assert.GreaterOrEqual(t, stats.WaitTime, time.Duration(0))
}

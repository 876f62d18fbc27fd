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
	"fmt"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (c *captureLogger) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func TestTracingEmitsLockLifecycleEvents(t *testing.T) {
	cl := &captureLogger{}
	m := NewMutex[string](WithTracing(cl, "pages"))

	g, err := m.Lock(context.Background(), "p1")
	require.NoError(t, err)
	g.Unlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()
	require.NotEmpty(t, cl.lines)
	joined := strings.Join(cl.lines, "\n")
	assert.Contains(t, joined, "lock=pages")
	assert.Contains(t, joined, "key=p1")
	assert.Contains(t, joined, "op=lock_acquired")
	assert.Contains(t, joined, "op=unlock")
}

func TestNoTracingByDefault(t *testing.T) {
	m := NewMutex[int]()
	assert.False(t, m.tracer.enabled.Load())
}

func TestStdLoggerAdapts(t *testing.T) {
	var sb strings.Builder
	l := log.New(&sb, "", 0)
	lg := StdLogger(l)
	lg.Printf("hello %d", 1)
	assert.Contains(t, sb.String(), "hello 1")
}

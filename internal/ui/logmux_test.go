package ui

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	lines []LogLine
}

func (r *recorder) Emit(line LogLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func (r *recorder) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.lines))
	for _, l := range r.lines {
		out = append(out, l.Text)
	}
	return out
}

func TestLineWriterSplitsChunks(t *testing.T) {
	rec := &recorder{}
	w := NewLineWriter(rec, TagBackend)

	_, err := w.Write([]byte("INFO:     Started server process\nINFO:     Waiting"))
	require.NoError(t, err)
	assert.Equal(t, []string{"INFO:     Started server process"}, rec.texts())

	_, err = w.Write([]byte(" for application startup.\r\n\n   \nready\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"INFO:     Started server process",
		"INFO:     Waiting for application startup.",
		"ready",
	}, rec.texts())

	for _, l := range rec.lines {
		assert.Equal(t, TagBackend, l.Tag)
		assert.Equal(t, LevelInfo, l.Level)
	}
}

func TestLineWriterFlush(t *testing.T) {
	rec := &recorder{}
	w := NewLineWriter(rec, TagSetup)

	w.Write([]byte("no trailing newline"))
	assert.Empty(t, rec.texts())

	w.Flush()
	require.Len(t, rec.lines, 1)
	assert.Equal(t, "no trailing newline", rec.lines[0].Text)
	assert.Equal(t, TagSetup, rec.lines[0].Tag)

	w.Flush()
	assert.Len(t, rec.lines, 1)
}

func TestPumpHandlesVeryLongLines(t *testing.T) {
	rec := &recorder{}
	pr, pw := io.Pipe()

	long := strings.Repeat("x", 2*1024*1024)
	written := make(chan error, 1)
	go func() {
		_, err := io.WriteString(pw, long+"\nafter\nno newline at the end")
		pw.Close()
		written <- err
	}()

	require.NoError(t, Pump(pr, TagFrontend, rec))

	select {
	case err := <-written:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("writer still blocked: the reader stopped draining the pipe")
	}

	texts := rec.texts()
	require.Len(t, texts, 3)
	assert.Len(t, texts[0], len(long))
	assert.Equal(t, "after", texts[1])
	assert.Equal(t, "no newline at the end", texts[2])
}

func TestPumpSuppressesBlankLines(t *testing.T) {
	rec := &recorder{}
	input := "  VITE v5.0.0  ready in 312 ms\n\n  ➜  Local:   http://localhost:5173/\n\t\n"

	require.NoError(t, Pump(strings.NewReader(input), TagFrontend, rec))
	assert.Equal(t, []string{
		"  VITE v5.0.0  ready in 312 ms",
		"  ➜  Local:   http://localhost:5173/",
	}, rec.texts())
}

func TestTee(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	sink := Tee(a, nil, b)
	Emit(sink, TagSetup, "one")
	EmitWarn(sink, TagSetup, "two")

	assert.Equal(t, []string{"one", "two"}, a.texts())
	assert.Equal(t, []string{"one", "two"}, b.texts())
	assert.Same(t, a, Tee(nil, a))
}

func TestLogBuffer(t *testing.T) {
	buf := NewLogBuffer(3)
	for _, l := range []string{"a", "b", "c", "d"} {
		buf.Append(l)
	}
	assert.Equal(t, 3, buf.Len())
	assert.Equal(t, []string{"b", "c", "d"}, buf.GetAll())

	lines := buf.GetAll()
	lines[0] = "modified"
	assert.Equal(t, "b", buf.GetAll()[0], "GetAll should return a copy")
}

func TestDetectURL(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
		ok   bool
	}{
		{"vite local", "  ➜  Local:   http://localhost:5173/", "http://localhost:5173", true},
		{"uvicorn wildcard", "INFO:     Uvicorn running on http://0.0.0.0:8000 (Press CTRL+C to quit)", "http://localhost:8000", true},
		{"loopback", "Server at http://127.0.0.1:3000", "http://localhost:3000", true},
		{"remote host", "see https://example.com:443/docs", "", false},
		{"no url", "Compiled successfully", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectURL(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

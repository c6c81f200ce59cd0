package ui

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"
	"sync"
)

// isBlank reports whether a child line carries nothing worth relaying.
func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// LineWriter is an io.Writer that splits whatever is written to it into
// lines and emits each non-blank one under a fixed tag.
type LineWriter struct {
	sink   Sink
	tag    Tag
	buffer []byte
	mu     sync.Mutex
}

// NewLineWriter returns a LineWriter emitting to sink under tag.
func NewLineWriter(sink Sink, tag Tag) *LineWriter {
	return &LineWriter{
		sink:   sink,
		tag:    tag,
		buffer: make([]byte, 0, 4096),
	}
}

// Write implements io.Writer.
func (lw *LineWriter) Write(p []byte) (n int, err error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	lw.buffer = append(lw.buffer, p...)

	for {
		idx := bytes.IndexByte(lw.buffer, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimRight(string(lw.buffer[:idx]), "\r")
		lw.buffer = lw.buffer[idx+1:]
		lw.emit(line)
	}

	return len(p), nil
}

// Flush emits any trailing partial line.
func (lw *LineWriter) Flush() {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if len(lw.buffer) > 0 {
		line := strings.TrimRight(string(lw.buffer), "\r")
		lw.buffer = lw.buffer[:0]
		lw.emit(line)
	}
}

func (lw *LineWriter) emit(line string) {
	if isBlank(line) {
		return
	}
	lw.sink.Emit(LogLine{Tag: lw.tag, Text: line})
}

// Pump reads r line by line until EOF and emits each non-blank line under
// tag. Lines have no length limit, so a child is never left blocked on a
// full pipe. It returns the read error, if any; EOF is not an error.
func Pump(r io.Reader, tag Tag, sink Sink) error {
	br := bufio.NewReaderSize(r, 64*1024)

	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimRight(line, "\r\n")
			if !isBlank(line) {
				sink.Emit(LogLine{Tag: tag, Text: line})
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// LogBuffer is a fixed-size ring of lines.
type LogBuffer struct {
	lines    []string
	maxLines int
	mu       sync.RWMutex
}

// NewLogBuffer creates a new log buffer
func NewLogBuffer(maxLines int) *LogBuffer {
	return &LogBuffer{
		lines:    make([]string, 0, maxLines),
		maxLines: maxLines,
	}
}

// Append adds a line, dropping the oldest when full.
func (lb *LogBuffer) Append(line string) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if len(lb.lines) >= lb.maxLines {
		copy(lb.lines, lb.lines[1:])
		lb.lines = lb.lines[:len(lb.lines)-1]
	}
	lb.lines = append(lb.lines, line)
}

// GetAll returns a copy of all lines in the buffer.
func (lb *LogBuffer) GetAll() []string {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	result := make([]string, len(lb.lines))
	copy(result, lb.lines)
	return result
}

// Len returns the number of lines in the buffer
func (lb *LogBuffer) Len() int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return len(lb.lines)
}

var urlPattern = regexp.MustCompile(`https?://(?:localhost|127\.0\.0\.1|0\.0\.0\.0):(\d+)`)

// DetectURL extracts the first local server URL announced in a line, e.g.
// vite's "Local: http://localhost:5173/" or uvicorn's
// "Uvicorn running on http://0.0.0.0:8000". Wildcard and loopback hosts are
// normalised to localhost.
func DetectURL(line string) (string, bool) {
	match := urlPattern.FindString(line)
	if match == "" {
		return "", false
	}
	match = strings.Replace(match, "://0.0.0.0:", "://localhost:", 1)
	match = strings.Replace(match, "://127.0.0.1:", "://localhost:", 1)
	return match, true
}

// Package logsink mirrors a run's output to a JSON lines file.
package logsink

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/harshul/devrun/internal/ui"
)

// Sink writes every LogLine as a JSON record tagged with the run id. It also
// exposes the underlying logger so diagnostics land in the same file.
type Sink struct {
	RunID  string
	logger *zap.Logger
	closer io.Closer
}

// Open creates (or appends to) the file at path.
func Open(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	s := New(f)
	s.closer = f
	return s, nil
}

// New returns a Sink writing JSON records to w.
func New(w io.Writer) *Sink {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(w), zapcore.DebugLevel)
	runID := uuid.NewString()

	return &Sink{
		RunID:  runID,
		logger: zap.New(core).With(zap.String("run_id", runID)),
	}
}

// Logger returns the structured logger backing the sink.
func (s *Sink) Logger() *zap.Logger { return s.logger }

// Emit implements ui.Sink.
func (s *Sink) Emit(line ui.LogLine) {
	fields := []zap.Field{zap.String("tag", string(line.Tag)), zap.String("text", line.Text)}
	switch line.Level {
	case ui.LevelWarn:
		s.logger.Warn("output", fields...)
	case ui.LevelError:
		s.logger.Error("output", fields...)
	default:
		s.logger.Info("output", fields...)
	}
}

// Close flushes the logger and closes the file, if Open created one.
func (s *Sink) Close() error {
	_ = s.logger.Sync()
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

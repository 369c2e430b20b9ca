package perception

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mtgcollections/internal/logging"
	"mtgcollections/internal/types"
)

// CardExtractor is anything that turns one photo into card observations.
type CardExtractor interface {
	ExtractCards(ctx context.Context, image []byte, mimeType string) (types.Collection, error)
}

// Trace captures one extraction call.
type Trace struct {
	ID         string    `json:"id"`
	Model      string    `json:"model,omitempty"`
	MIMEType   string    `json:"mime_type"`
	ImageBytes int       `json:"image_bytes"`
	Cards      int       `json:"cards"`
	DurationMs int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	ErrorKind  string    `json:"error_kind,omitempty"` // upstream, malformed, other
	Timestamp  time.Time `json:"timestamp"`
}

// TraceStore receives completed traces.
type TraceStore interface {
	StoreTrace(trace *Trace) error
}

// TracingExtractor wraps an extractor and records every call.
type TracingExtractor struct {
	underlying CardExtractor
	model      string
	stores     []TraceStore
	logger     *zap.Logger
	now        func() time.Time
}

// NewTracingExtractor wraps underlying. model is recorded on each trace.
func NewTracingExtractor(underlying CardExtractor, model string, logger *zap.Logger, stores ...TraceStore) *TracingExtractor {
	return &TracingExtractor{
		underlying: underlying,
		model:      model,
		stores:     stores,
		logger:     logging.For(logger, logging.CategoryVision),
		now:        time.Now,
	}
}

// ExtractCards forwards to the wrapped extractor and stores a trace of the
// call. Store failures are logged and never change the result.
func (t *TracingExtractor) ExtractCards(ctx context.Context, image []byte, mimeType string) (types.Collection, error) {
	start := t.now()
	c, err := t.underlying.ExtractCards(ctx, image, mimeType)
	elapsed := t.now().Sub(start)

	trace := &Trace{
		ID:         uuid.NewString(),
		Model:      t.model,
		MIMEType:   mimeType,
		ImageBytes: len(image),
		Cards:      c.Len(),
		DurationMs: elapsed.Milliseconds(),
		Success:    err == nil,
		Timestamp:  start.UTC(),
	}
	if err != nil {
		trace.Error = err.Error()
		trace.ErrorKind = errorKind(err)
	}

	t.logger.Debug("Extraction finished",
		zap.String("trace_id", trace.ID),
		zap.Int("cards", trace.Cards),
		zap.Duration("duration", elapsed),
		zap.Bool("success", trace.Success),
	)

	for _, s := range t.stores {
		if serr := s.StoreTrace(trace); serr != nil {
			t.logger.Warn("Failed to store trace", zap.String("trace_id", trace.ID), zap.Error(serr))
		}
	}
	return c, err
}

func errorKind(err error) string {
	switch {
	case types.IsUpstream(err):
		return "upstream"
	case types.IsMalformed(err):
		return "malformed"
	default:
		return "other"
	}
}

// FileTraceStore appends traces to a JSON Lines file.
type FileTraceStore struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// OpenFileTraceStore opens path for appending, creating it if needed.
func OpenFileTraceStore(path string) (*FileTraceStore, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	return &FileTraceStore{file: f, enc: json.NewEncoder(f)}, nil
}

// StoreTrace writes one trace as a single line.
func (s *FileTraceStore) StoreTrace(trace *Trace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(trace); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (s *FileTraceStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

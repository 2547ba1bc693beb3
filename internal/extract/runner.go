package extract

import (
	"context"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/hyperjump/larder/internal/errors"
	"github.com/hyperjump/larder/internal/models"
)

// Runner walks backend chains.
type Runner struct {
	registry    Registry
	maxFileSize int64
	logger      *zap.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger for backend attempts.
func WithLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithRegistry replaces the default backend chains.
func WithRegistry(reg Registry) RunnerOption {
	return func(r *Runner) {
		r.registry = reg
	}
}

// WithMaxFileSize rejects files larger than n bytes. Zero disables the check.
func WithMaxFileSize(n int64) RunnerOption {
	return func(r *Runner) {
		r.maxFileSize = n
	}
}

// NewRunner returns a Runner over DefaultRegistry unless WithRegistry is given.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: DefaultRegistry(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extract reads path with the first backend for format that yields content.
func (r *Runner) Extract(ctx context.Context, path string, format models.Format) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewExtractionFailed("cannot read file", err)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.NewExtractionFailed(fmt.Sprintf("not a regular file: %s", path), nil)
	}
	if r.maxFileSize > 0 && info.Size() > r.maxFileSize {
		return nil, errors.NewExtractionFailed(
			fmt.Sprintf("file too large: %d bytes (max %d)", info.Size(), r.maxFileSize), nil)
	}

	chain, ok := r.registry[format]
	if !ok {
		return nil, errors.NewExtractionFailed(fmt.Sprintf("unsupported format %q", format), nil)
	}
	if len(chain) == 0 {
		return nil, errors.NewExtractionFailed(fmt.Sprintf("every backend for %s is disabled", format), nil)
	}

	var (
		missing []string
		lastErr error
		ran     int
	)
	for _, b := range chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.Available(); err != nil {
			r.logger.Debug("Backend unavailable",
				zap.String("backend", b.Name()), zap.String("format", string(format)), zap.Error(err))
			missing = append(missing, b.Requires())
			continue
		}
		ran++
		res, err := b.Extract(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Debug("Backend failed",
				zap.String("backend", b.Name()), zap.String("path", path), zap.Error(err))
			lastErr = fmt.Errorf("%s: %w", b.Name(), err)
			continue
		}
		if res.Empty() {
			r.logger.Debug("Backend returned no content",
				zap.String("backend", b.Name()), zap.String("path", path))
			lastErr = fmt.Errorf("%s: no text extracted", b.Name())
			continue
		}
		res.Backend = b.Name()
		r.logger.Debug("Extracted",
			zap.String("backend", b.Name()), zap.String("path", path),
			zap.Int("chars", len(res.Text)), zap.Int("rows", len(res.Rows)))
		return res, nil
	}

	if ran == 0 {
		return nil, errors.NewMissingCapability(missing)
	}
	e := errors.NewExtractionFailed("no backend could read the file", lastErr)
	if len(missing) > 0 {
		sort.Strings(missing)
		e.Details["names"] = missing
	}
	return nil, e
}

// ExtractText wraps pasted text as a result.
func (r *Runner) ExtractText(ctx context.Context, text string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.maxFileSize > 0 && int64(len(text)) > r.maxFileSize {
		return nil, errors.NewExtractionFailed(
			fmt.Sprintf("text too large: %d bytes (max %d)", len(text), r.maxFileSize), nil)
	}
	return &Result{Text: validUTF8([]byte(text)), Backend: "pasted"}, nil
}

// BackendStatus describes one backend for the availability report.
type BackendStatus struct {
	Name      string   `json:"name"`
	Requires  string   `json:"requires"`
	Available bool     `json:"available"`
	Reason    string   `json:"reason,omitempty"`
	Formats   []string `json:"formats"`
}

// Status reports every registered backend and whether it can run.
func (r *Runner) Status() []BackendStatus {
	byName := make(map[string]*BackendStatus)
	var order []string
	formats := make([]string, 0, len(r.registry))
	for f := range r.registry {
		formats = append(formats, string(f))
	}
	sort.Strings(formats)
	for _, f := range formats {
		for _, b := range r.registry[models.Format(f)] {
			st, ok := byName[b.Name()]
			if !ok {
				st = &BackendStatus{Name: b.Name(), Requires: b.Requires(), Available: true}
				if err := b.Available(); err != nil {
					st.Available = false
					st.Reason = err.Error()
				}
				byName[b.Name()] = st
				order = append(order, b.Name())
			}
			st.Formats = append(st.Formats, f)
		}
	}
	out := make([]BackendStatus, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

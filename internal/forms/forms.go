// Package forms guards form submissions: declarative validation before any
// network call, and a single in-flight submission per form instance.
package forms

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/inkridge/studio-client/pkg/errors"
)

// Submitter allows exactly one submission in flight. The gate engages
// synchronously, before the submitted function starts, so a rapid double
// submit cannot issue two network calls.
type Submitter struct {
	mu      sync.Mutex
	pending bool
}

// Submit runs fn unless a previous submission has not settled yet, in which
// case it returns ErrSubmitInFlight without running fn.
func (s *Submitter) Submit(ctx context.Context, fn func(context.Context) error) error {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return apperrors.ErrSubmitInFlight
	}
	s.pending = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.pending = false
		s.mu.Unlock()
	}()

	return fn(ctx)
}

// Pending reports whether a submission is in flight, for rendering a
// non-interactive control state.
func (s *Submitter) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// FileRule validates an upload before it is sent anywhere.
type FileRule struct {
	MaxBytes     int64
	AllowedMIMEs []string
}

// Validate rejects oversized files and types outside the allow-list.
func (r FileRule) Validate(name, mime string, size int64) error {
	if r.MaxBytes > 0 && size > r.MaxBytes {
		return apperrors.Clone(apperrors.ErrFileTooLarge,
			fmt.Sprintf("%s is %s, the limit is %s", name, formatBytes(size), formatBytes(r.MaxBytes)))
	}
	if len(r.AllowedMIMEs) > 0 {
		allowed := false
		for _, m := range r.AllowedMIMEs {
			if m == mime {
				allowed = true
				break
			}
		}
		if !allowed {
			return apperrors.Clone(apperrors.ErrFileType,
				fmt.Sprintf("%s (%s) is not an accepted image type", name, mime))
		}
	}
	return nil
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n >= mb {
		return fmt.Sprintf("%.1f MB", float64(n)/float64(mb))
	}
	return fmt.Sprintf("%d bytes", n)
}

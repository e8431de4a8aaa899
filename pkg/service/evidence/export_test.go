package evidence

import (
	"context"

	"cloud.google.com/go/storage"
)

// NewVerifierWithAttrs builds a verifier backed by a stub object lookup
func NewVerifierWithAttrs(fn func(ctx context.Context, ref ObjectRef) (*storage.ObjectAttrs, error), opts ...Option) *GCSVerifier {
	v := &GCSVerifier{allowedBuckets: make(map[string]struct{}), attrs: fn}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

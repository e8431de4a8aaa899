// Package evidence checks that evidence references point at real objects
// before they are attached to a case.
package evidence

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"google.golang.org/api/option"
)

const gcsPublicHost = "storage.googleapis.com"

// ObjectRef is a bucket and object name pair
type ObjectRef struct {
	Bucket string
	Object string
}

// ParseGCSURL accepts gs://bucket/object and
// https://storage.googleapis.com/bucket/object. ok is false for any other
// location.
func ParseGCSURL(raw string) (ObjectRef, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return ObjectRef{}, false
	}

	var bucket, object string
	switch {
	case u.Scheme == "gs":
		bucket, object = u.Host, strings.TrimPrefix(u.Path, "/")
	case u.Scheme == "https" && u.Host == gcsPublicHost:
		bucket, object, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	default:
		return ObjectRef{}, false
	}

	if bucket == "" || object == "" {
		return ObjectRef{}, false
	}
	return ObjectRef{Bucket: bucket, Object: object}, true
}

type attrsFunc func(ctx context.Context, ref ObjectRef) (*storage.ObjectAttrs, error)

// GCSVerifier looks evidence objects up in Cloud Storage
type GCSVerifier struct {
	client         *storage.Client
	attrs          attrsFunc
	allowedBuckets map[string]struct{}
	allowExternal  bool
	clientOpts     []option.ClientOption
}

var _ interfaces.EvidenceVerifier = &GCSVerifier{}

type Option func(*GCSVerifier)

// WithAllowedBuckets restricts evidence to the given buckets
func WithAllowedBuckets(buckets ...string) Option {
	return func(v *GCSVerifier) {
		for _, b := range buckets {
			if b != "" {
				v.allowedBuckets[b] = struct{}{}
			}
		}
	}
}

// WithExternalURLs accepts non GCS URLs without verification
func WithExternalURLs(allow bool) Option {
	return func(v *GCSVerifier) {
		v.allowExternal = allow
	}
}

// WithClientOptions passes options to the storage client
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(v *GCSVerifier) {
		v.clientOpts = append(v.clientOpts, opts...)
	}
}

func NewGCSVerifier(ctx context.Context, opts ...Option) (*GCSVerifier, error) {
	v := &GCSVerifier{allowedBuckets: make(map[string]struct{})}
	for _, opt := range opts {
		opt(v)
	}

	client, err := storage.NewClient(ctx, v.clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}
	v.client = client
	v.attrs = func(ctx context.Context, ref ObjectRef) (*storage.ObjectAttrs, error) {
		return client.Bucket(ref.Bucket).Object(ref.Object).Attrs(ctx)
	}

	return v, nil
}

// Verify returns the content type and size of the referenced object
func (v *GCSVerifier) Verify(ctx context.Context, fileURL string) (*interfaces.EvidenceObject, error) {
	ref, ok := ParseGCSURL(fileURL)
	if !ok {
		if v.allowExternal {
			return &interfaces.EvidenceObject{}, nil
		}
		return nil, goerr.Wrap(model.ErrValidation, "evidence must be stored in Cloud Storage", goerr.V("file_url", fileURL))
	}

	if len(v.allowedBuckets) > 0 {
		if _, ok := v.allowedBuckets[ref.Bucket]; !ok {
			return nil, goerr.Wrap(model.ErrValidation, "evidence bucket is not allowed", goerr.V("bucket", ref.Bucket))
		}
	}

	attrs, err := v.attrs(ctx, ref)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, goerr.Wrap(model.ErrValidation, "evidence object does not exist",
				goerr.V("bucket", ref.Bucket), goerr.V("object", ref.Object))
		}
		return nil, goerr.Wrap(model.ErrStoreUnavailable, "failed to get evidence object",
			goerr.V("bucket", ref.Bucket), goerr.V("object", ref.Object), goerr.V("cause", err.Error()))
	}

	return &interfaces.EvidenceObject{
		ContentType: attrs.ContentType,
		Size:        attrs.Size,
	}, nil
}

func (v *GCSVerifier) Close() error {
	if v.client == nil {
		return nil
	}
	return v.client.Close()
}

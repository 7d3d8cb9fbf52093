package publish

import (
	"context"
	"fmt"
	"io"
)

// RemoteKind classifies a failed store call for the retry policy.
type RemoteKind string

const (
	KindRateLimited RemoteKind = "rate_limited"
	KindTransient   RemoteKind = "transient"
	KindClient      RemoteKind = "client"
	KindTimeout     RemoteKind = "timeout"
)

// RemoteError wraps a store failure with its retry classification.
type RemoteError struct {
	Kind RemoteKind
	Err  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote store: %s: %v", e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Receipt is what a store returns for one submission. A non-empty Token
// means the upload completes asynchronously and must be polled.
type Receipt struct {
	ID    string
	URL   string
	Token string
}

// ObjectStore is the remote content-publishing capability. R2 completes
// synchronously; HTTP stores that hand back a token also implement Poller.
type ObjectStore interface {
	Submit(ctx context.Context, key string, body io.Reader, contentType string) (*Receipt, error)
}

// Poller reports completion of a token-bearing submission.
type Poller interface {
	Poll(ctx context.Context, token string) (done bool, err error)
}

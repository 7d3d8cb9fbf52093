package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"menuforge/internal/config"
)

// R2Store publishes objects to a Cloudflare R2 bucket through the S3 API.
// PutObject completes synchronously, so receipts never carry a token.
type R2Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewR2Store(ctx context.Context, cfg config.R2) (*R2Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			),
		),
		awsconfig.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					if service == s3.ServiceID {
						return aws.Endpoint{
							URL:           cfg.Endpoint,
							SigningRegion: "auto",
						}, nil
					}
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				},
			),
		),
	)
	if err != nil {
		return nil, err
	}

	return &R2Store{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		baseURL: cfg.PublicBaseURL,
	}, nil
}

func (r *R2Store) Submit(ctx context.Context, key string, body io.Reader, contentType string) (*Receipt, error) {
	input := &s3.PutObjectInput{
		Bucket: &r.bucket,
		Key:    &key,
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = &contentType
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		return nil, classify(err)
	}

	return &Receipt{
		ID:  key,
		URL: fmt.Sprintf("%s/%s", r.baseURL, key),
	}, nil
}

// classify maps an S3 error onto the retry taxonomy by HTTP status.
func classify(err error) *RemoteError {
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		status := respErr.HTTPStatusCode()
		switch {
		case status == http.StatusTooManyRequests:
			return &RemoteError{Kind: KindRateLimited, Err: err}
		case status >= 500:
			return &RemoteError{Kind: KindTransient, Err: err}
		case status >= 400:
			return &RemoteError{Kind: KindClient, Err: err}
		}
	}
	// Connection resets and friends are worth another attempt.
	return &RemoteError{Kind: KindTransient, Err: err}
}

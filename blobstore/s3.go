package blobstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	syncerrors "github.com/flownative/go-blobsync/errors"
	"github.com/flownative/go-blobsync/internal/s3api"
)

// maxBatchDeleteSize is the S3 limit for keys per DeleteObjects request.
const maxBatchDeleteSize = 1000

// Config holds the S3 backend configuration.
type Config struct {
	// Region is the AWS region. Defaults to us-east-1.
	Region string

	// Endpoint is a custom S3 endpoint URL for S3-compatible services.
	Endpoint string

	// AccessKeyID and SecretAccessKey configure static credentials.
	// When empty, the default credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	// UsePathStyle forces path-style addressing. Required for most
	// S3-compatible services.
	UsePathStyle bool

	// MaxRetries sets the maximum retry attempts. Defaults to 3.
	MaxRetries int

	// CustomAWSConfig overrides the default configuration loading entirely.
	CustomAWSConfig *aws.Config

	// CustomHTTPClient overrides the SDK's HTTP client.
	CustomHTTPClient *http.Client
}

// Option configures the S3 store.
type Option func(*Config)

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(c *Config) {
		c.Region = region
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing.
func WithEndpoint(endpoint string) Option {
	return func(c *Config) {
		c.Endpoint = endpoint
	}
}

// WithStaticCredentials sets a static access key pair instead of the
// default credential chain.
func WithStaticCredentials(accessKeyID, secretAccessKey string) Option {
	return func(c *Config) {
		c.AccessKeyID = accessKeyID
		c.SecretAccessKey = secretAccessKey
	}
}

// WithUsePathStyle forces path-style URLs instead of virtual-hosted style.
func WithUsePathStyle(usePathStyle bool) Option {
	return func(c *Config) {
		c.UsePathStyle = usePathStyle
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed operations.
func WithMaxRetries(maxRetries int) Option {
	return func(c *Config) {
		c.MaxRetries = maxRetries
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(cfg *aws.Config) Option {
	return func(c *Config) {
		c.CustomAWSConfig = cfg
	}
}

// WithHTTPClient allows providing a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.CustomHTTPClient = client
	}
}

// S3Store implements Store on top of Amazon S3 or an S3-compatible service.
type S3Store struct {
	client   s3api.S3API
	region   string
	endpoint string
}

// NewS3Store creates an S3-backed store with the provided options.
// It loads AWS credentials using the default credential chain unless
// static credentials or a custom configuration are given.
//
// Example:
//
//	store, err := blobstore.NewS3Store(ctx,
//	    blobstore.WithRegion("eu-central-1"),
//	)
func NewS3Store(ctx context.Context, opts ...Option) (*S3Store, error) {
	storeCfg := &Config{
		Region:     "",
		MaxRetries: 3,
	}

	for _, opt := range opts {
		opt(storeCfg)
	}

	var cfg aws.Config
	var err error

	if storeCfg.CustomAWSConfig != nil {
		cfg = *storeCfg.CustomAWSConfig
	} else {
		var loadOpts []func(*config.LoadOptions) error
		if storeCfg.AccessKeyID != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(storeCfg.AccessKeyID, storeCfg.SecretAccessKey, ""),
			))
		}
		cfg, err = config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, syncerrors.NewError("storeInitialization", err)
		}
	}

	if storeCfg.Region != "" {
		cfg.Region = storeCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	if storeCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = storeCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	if storeCfg.Endpoint != "" {
		endpoint := storeCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	if storeCfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if storeCfg.CustomHTTPClient != nil {
		httpClient := storeCfg.CustomHTTPClient
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	return &S3Store{
		client:   s3.NewFromConfig(cfg, s3Opts...),
		region:   cfg.Region,
		endpoint: storeCfg.Endpoint,
	}, nil
}

// NewS3StoreWithClient creates a store with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewS3StoreWithClient(client s3api.S3API, region, endpoint string) *S3Store {
	return &S3Store{
		client:   client,
		region:   region,
		endpoint: endpoint,
	}
}

// Put creates or overwrites the object at key with the given content.
func (s *S3Store) Put(ctx context.Context, container, key string, content io.Reader, opts PutOptions) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
		Body:   content,
	}

	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.ContentEncoding != "" {
		input.ContentEncoding = aws.String(opts.ContentEncoding)
	}
	if opts.CacheControl != "" {
		input.CacheControl = aws.String(opts.CacheControl)
	}
	if opts.ContentLength >= 0 {
		input.ContentLength = aws.Int64(opts.ContentLength)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return classifyError("put", container, key, err)
	}
	return nil
}

// Get returns a reader for the object's content.
func (s *S3Store) Get(ctx context.Context, container, key string) (io.ReadCloser, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyError("get", container, key, err)
	}
	return output.Body, nil
}

// Delete removes a single object. A missing object yields ErrObjectNotFound.
//
// S3's DeleteObject succeeds on missing keys, so absence is checked with a
// HeadObject first to give callers the not-found signal the Store contract
// promises.
func (s *S3Store) Delete(ctx context.Context, container, key string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err != nil {
		return classifyError("delete", container, key, err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err != nil {
		return classifyError("delete", container, key, err)
	}
	return nil
}

// DeleteMany removes a batch of objects, chunked to the S3 request limit.
// Missing keys are ignored.
func (s *S3Store) DeleteMany(ctx context.Context, container string, keys []string) error {
	for start := 0; start < len(keys); start += maxBatchDeleteSize {
		end := start + maxBatchDeleteSize
		if end > len(keys) {
			end = len(keys)
		}

		identifiers := make([]types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			identifiers = append(identifiers, types.ObjectIdentifier{Key: aws.String(key)})
		}

		output, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(container),
			Delete: &types.Delete{
				Objects: identifiers,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return classifyError("deleteMany", container, "", err)
		}

		for _, deleteError := range output.Errors {
			code := aws.ToString(deleteError.Code)
			if code == "NoSuchKey" || code == "NotFound" {
				continue
			}
			return syncerrors.NewObjectError("deleteMany", container, aws.ToString(deleteError.Key),
				fmt.Errorf("%s: %s", code, aws.ToString(deleteError.Message)))
		}
	}
	return nil
}

// Copy duplicates an object server-side.
func (s *S3Store) Copy(ctx context.Context, dstContainer, dstKey, srcContainer, srcKey string) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dstContainer),
		Key:        aws.String(dstKey),
		CopySource: aws.String(url.PathEscape(srcContainer + "/" + srcKey)),
	})
	if err != nil {
		return classifyError("copy", dstContainer, dstKey, err)
	}
	return nil
}

// SetProperties re-applies the declared content type of an existing object.
// S3 has no in-place metadata update, so this is a copy onto itself with
// replaced metadata.
func (s *S3Store) SetProperties(ctx context.Context, container, key, contentType string) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:            aws.String(container),
		Key:               aws.String(key),
		CopySource:        aws.String(url.PathEscape(container + "/" + key)),
		ContentType:       aws.String(contentType),
		MetadataDirective: types.MetadataDirectiveReplace,
	})
	if err != nil {
		return classifyError("setProperties", container, key, err)
	}
	return nil
}

// List returns one page of object keys under prefix.
func (s *S3Store) List(ctx context.Context, container, prefix, continuationToken string) (*ListPage, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(container),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	if continuationToken != "" {
		input.ContinuationToken = aws.String(continuationToken)
	}

	output, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, classifyError("list", container, "", err)
	}

	page := &ListPage{
		Keys: make([]string, 0, len(output.Contents)),
	}
	for _, object := range output.Contents {
		page.Keys = append(page.Keys, aws.ToString(object.Key))
	}
	if aws.ToBool(output.IsTruncated) {
		page.NextContinuationToken = aws.ToString(output.NextContinuationToken)
	}
	return page, nil
}

// PublicEndpoint returns the native public base URL of this backend,
// suitable for path-style access: endpoint + container + "/" + key.
func (s *S3Store) PublicEndpoint() string {
	if s.endpoint != "" {
		if strings.HasSuffix(s.endpoint, "/") {
			return s.endpoint
		}
		return s.endpoint + "/"
	}
	return fmt.Sprintf("https://s3.%s.amazonaws.com/", s.region)
}

// classifyError maps backend errors onto the module's sentinel errors.
func classifyError(op, container, key string, err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if stderrors.As(err, &noSuchKey) || stderrors.As(err, &notFound) {
		return syncerrors.NewObjectError(op, container, key, syncerrors.ErrObjectNotFound)
	}

	var noSuchBucket *types.NoSuchBucket
	if stderrors.As(err, &noSuchBucket) {
		return syncerrors.NewObjectError(op, container, key, syncerrors.ErrContainerNotFound)
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return syncerrors.NewObjectError(op, container, key, syncerrors.ErrObjectNotFound)
		case "NoSuchBucket":
			return syncerrors.NewObjectError(op, container, key, syncerrors.ErrContainerNotFound)
		case "AccessDenied":
			return syncerrors.NewObjectError(op, container, key, syncerrors.ErrAccessDenied)
		}
	}

	return syncerrors.NewObjectError(op, container, key, err)
}

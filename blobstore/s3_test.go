package blobstore_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flownative/go-blobsync/blobstore"
	syncerrors "github.com/flownative/go-blobsync/errors"
	"github.com/flownative/go-blobsync/internal/testutil"
)

func TestPutMapsParameters(t *testing.T) {
	var captured *s3.PutObjectInput
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			captured = params
			return &s3.PutObjectOutput{}, nil
		},
	}
	store := blobstore.NewS3StoreWithClient(mock, "eu-central-1", "")

	err := store.Put(context.Background(), "assets", "abc/logo.svg",
		strings.NewReader("<svg/>"), blobstore.PutOptions{
			ContentType:     "image/svg+xml",
			ContentEncoding: "gzip",
			CacheControl:    "max-age=86400",
			ContentLength:   6,
		})
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "assets", aws.ToString(captured.Bucket))
	assert.Equal(t, "abc/logo.svg", aws.ToString(captured.Key))
	assert.Equal(t, "image/svg+xml", aws.ToString(captured.ContentType))
	assert.Equal(t, "gzip", aws.ToString(captured.ContentEncoding))
	assert.Equal(t, "max-age=86400", aws.ToString(captured.CacheControl))
	assert.Equal(t, int64(6), aws.ToInt64(captured.ContentLength))
}

func TestPutOmitsEmptyMetadata(t *testing.T) {
	var captured *s3.PutObjectInput
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			captured = params
			return &s3.PutObjectOutput{}, nil
		},
	}
	store := blobstore.NewS3StoreWithClient(mock, "eu-central-1", "")

	err := store.Put(context.Background(), "assets", "key",
		strings.NewReader("x"), blobstore.PutOptions{ContentLength: -1})
	require.NoError(t, err)

	assert.Nil(t, captured.ContentType)
	assert.Nil(t, captured.ContentEncoding)
	assert.Nil(t, captured.CacheControl)
	assert.Nil(t, captured.ContentLength)
}

func TestGetClassifiesNotFound(t *testing.T) {
	mock := &testutil.MockS3Client{
		GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			return nil, &types.NoSuchKey{}
		},
	}
	store := blobstore.NewS3StoreWithClient(mock, "eu-central-1", "")

	_, err := store.Get(context.Background(), "assets", "missing")
	require.Error(t, err)
	assert.True(t, syncerrors.IsObjectNotFound(err))
}

func TestDeleteReportsMissingObject(t *testing.T) {
	mock := &testutil.MockS3Client{
		HeadObjectFunc: func(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			return nil, &types.NotFound{}
		},
	}
	store := blobstore.NewS3StoreWithClient(mock, "eu-central-1", "")

	err := store.Delete(context.Background(), "assets", "missing")
	require.Error(t, err)
	assert.True(t, syncerrors.IsObjectNotFound(err))
}

func TestDeleteManyChunksRequests(t *testing.T) {
	var batches []int
	mock := &testutil.MockS3Client{
		DeleteObjectsFunc: func(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
			batches = append(batches, len(params.Delete.Objects))
			return &s3.DeleteObjectsOutput{}, nil
		},
	}
	store := blobstore.NewS3StoreWithClient(mock, "eu-central-1", "")

	keys := make([]string, 2500)
	for i := range keys {
		keys[i] = "key"
	}
	require.NoError(t, store.DeleteMany(context.Background(), "assets", keys))
	assert.Equal(t, []int{1000, 1000, 500}, batches)
}

func TestDeleteManyIgnoresMissingKeys(t *testing.T) {
	mock := &testutil.MockS3Client{
		DeleteObjectsFunc: func(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
			return &s3.DeleteObjectsOutput{
				Errors: []types.Error{{
					Key:     aws.String("gone"),
					Code:    aws.String("NoSuchKey"),
					Message: aws.String("The specified key does not exist."),
				}},
			}, nil
		},
	}
	store := blobstore.NewS3StoreWithClient(mock, "eu-central-1", "")

	assert.NoError(t, store.DeleteMany(context.Background(), "assets", []string{"gone"}))
}

func TestDeleteManySurfacesOtherErrors(t *testing.T) {
	mock := &testutil.MockS3Client{
		DeleteObjectsFunc: func(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
			return &s3.DeleteObjectsOutput{
				Errors: []types.Error{{
					Key:     aws.String("locked"),
					Code:    aws.String("AccessDenied"),
					Message: aws.String("Access Denied"),
				}},
			}, nil
		},
	}
	store := blobstore.NewS3StoreWithClient(mock, "eu-central-1", "")

	err := store.DeleteMany(context.Background(), "assets", []string{"locked"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestCopyEscapesSource(t *testing.T) {
	var captured *s3.CopyObjectInput
	mock := &testutil.MockS3Client{
		CopyObjectFunc: func(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
			captured = params
			return &s3.CopyObjectOutput{}, nil
		},
	}
	store := blobstore.NewS3StoreWithClient(mock, "eu-central-1", "")

	err := store.Copy(context.Background(), "dst", "key with space", "src", "abc def")
	require.NoError(t, err)
	assert.Equal(t, "dst", aws.ToString(captured.Bucket))
	assert.Equal(t, "key with space", aws.ToString(captured.Key))
	assert.NotContains(t, aws.ToString(captured.CopySource), " ")
}

func TestSetPropertiesReplacesMetadata(t *testing.T) {
	var captured *s3.CopyObjectInput
	mock := &testutil.MockS3Client{
		CopyObjectFunc: func(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
			captured = params
			return &s3.CopyObjectOutput{}, nil
		},
	}
	store := blobstore.NewS3StoreWithClient(mock, "eu-central-1", "")

	err := store.SetProperties(context.Background(), "assets", "abc/logo.svg", "image/svg+xml")
	require.NoError(t, err)
	assert.Equal(t, types.MetadataDirectiveReplace, captured.MetadataDirective)
	assert.Equal(t, "image/svg+xml", aws.ToString(captured.ContentType))
	assert.Equal(t, aws.ToString(captured.Bucket), "assets")
}

func TestListFollowsPagination(t *testing.T) {
	var tokens []string
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			tokens = append(tokens, aws.ToString(params.ContinuationToken))
			if len(tokens) == 1 {
				return &s3.ListObjectsV2Output{
					Contents:              []types.Object{{Key: aws.String("a")}, {Key: aws.String("b")}},
					IsTruncated:           aws.Bool(true),
					NextContinuationToken: aws.String("token-1"),
				}, nil
			}
			return &s3.ListObjectsV2Output{
				Contents: []types.Object{{Key: aws.String("c")}},
			}, nil
		},
	}
	store := blobstore.NewS3StoreWithClient(mock, "eu-central-1", "")

	page, err := store.List(context.Background(), "assets", "prefix/", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, page.Keys)
	assert.Equal(t, "token-1", page.NextContinuationToken)

	page, err = store.List(context.Background(), "assets", "prefix/", page.NextContinuationToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, page.Keys)
	assert.Empty(t, page.NextContinuationToken)

	assert.Equal(t, []string{"", "token-1"}, tokens)
}

func TestPublicEndpoint(t *testing.T) {
	t.Run("derived from region", func(t *testing.T) {
		store := blobstore.NewS3StoreWithClient(&testutil.MockS3Client{}, "eu-central-1", "")
		assert.Equal(t, "https://s3.eu-central-1.amazonaws.com/", store.PublicEndpoint())
	})

	t.Run("custom endpoint", func(t *testing.T) {
		store := blobstore.NewS3StoreWithClient(&testutil.MockS3Client{}, "us-east-1", "https://minio.local:9000")
		assert.Equal(t, "https://minio.local:9000/", store.PublicEndpoint())
	})
}

package sthree

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/oneconcern/pkgreg/pkg/errors"
	"github.com/oneconcern/pkgreg/pkg/storage"
	"github.com/oneconcern/pkgreg/pkg/storage/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	for _, toPin := range []struct {
		name     string
		code     string
		status   int
		expected error
	}{
		{name: "missing key", code: "NoSuchKey", status: 404, expected: status.ErrNotExists},
		{name: "head not found", code: "NotFound", status: 404, expected: status.ErrNotExists},
		{name: "missing bucket", code: "NoSuchBucket", status: 404, expected: status.ErrInvalidResource},
		{name: "bad bucket", code: "InvalidBucketName", status: 400, expected: status.ErrInvalidResource},
		{name: "bad request", code: "InvalidArgument", status: 400, expected: status.ErrStorageAPI},
		{name: "unauthorized", code: "Unauthorized", status: 401, expected: status.ErrUnauthorized},
		{name: "forbidden", code: "AccessDenied", status: 403, expected: status.ErrForbidden},
		{name: "server error", code: "InternalError", status: 500, expected: status.ErrStorageAPI},
	} {
		fixture := toPin
		t.Run(fixture.name, func(t *testing.T) {
			err := toSentinelErrors(awserr.NewRequestFailure(awserr.New(fixture.code, "msg", nil), fixture.status, "req"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, fixture.expected), "got %v", err)
		})
	}

	assert.NoError(t, toSentinelErrors(nil))
	plain := fmt.Errorf("plain")
	assert.Equal(t, plain, toSentinelErrors(plain))
	assert.NoError(t, filterErrNotExists(status.ErrNotExists.Wrap(plain)))
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(Bucket(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrInvalidResource))
}

func TestStore(t *testing.T) {
	bs, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	has, err := bs.Has(ctx, "sixteentons")
	require.NoError(t, err)
	require.True(t, has)

	has, err = bs.Has(ctx, "fifteentons")
	require.NoError(t, err)
	require.False(t, has)

	rdr, err := bs.Get(ctx, "sixteentons")
	require.NoError(t, err)
	b, err := ioutil.ReadAll(rdr)
	require.NoError(t, err)
	assert.Equal(t, "this is the text", string(b))

	_, err = bs.Get(ctx, "fifteentons")
	assert.True(t, errors.Is(err, status.ErrNotExists))

	require.NoError(t, bs.Put(ctx, "dir/eighteentons", bytes.NewBufferString("here we go once again"), storage.NoOverWrite))
	err = bs.Put(ctx, "dir/eighteentons", bytes.NewBufferString("again"), storage.NoOverWrite)
	assert.True(t, errors.Is(err, status.ErrExists))

	keys, err := bs.KeysPrefix(ctx, "dir/")
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/eighteentons"}, keys)

	require.NoError(t, bs.Delete(ctx, "dir/eighteentons"))
	require.NoError(t, bs.Clear(ctx))
	keys, err = bs.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

// setupStore requires an S3-compatible endpoint such as minio, set with PKGREG_TEST_S3_ENDPOINT
func setupStore(t testing.TB) (storage.Store, func()) {
	t.Helper()

	endpoint := os.Getenv("PKGREG_TEST_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("PKGREG_TEST_S3_ENDPOINT is not set")
	}

	bucket := aws.String(fmt.Sprintf("pkgreg-test-%d", time.Now().UnixNano()))
	minioConfig := &aws.Config{
		Credentials:      credentials.NewStaticCredentials("access-key", "secret-key-thing", ""),
		Region:           aws.String("us-west-2"),
		Endpoint:         aws.String(endpoint),
		S3ForcePathStyle: aws.Bool(true),
	}
	sess, err := session.NewSession(minioConfig)
	require.NoError(t, err)

	cl := s3.New(sess)
	_, err = cl.CreateBucket(&s3.CreateBucketInput{
		Bucket: bucket,
		CreateBucketConfiguration: &s3.CreateBucketConfiguration{
			LocationConstraint: aws.String("us-west-2"),
		},
	})
	require.NoError(t, err)

	_, err = cl.PutObject(&s3.PutObjectInput{
		Body:   bytes.NewReader([]byte("this is the text")),
		Bucket: bucket,
		Key:    aws.String("sixteentons"),
	})
	require.NoError(t, err)

	store, err := New(Bucket(*bucket), AWSConfig(minioConfig))
	require.NoError(t, err)

	return store, func() {
		_ = store.Clear(context.Background())
		_, _ = cl.DeleteBucket(&s3.DeleteBucketInput{Bucket: bucket})
	}
}

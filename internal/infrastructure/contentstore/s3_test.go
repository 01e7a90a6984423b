package contentstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuotePress/internal/domain"
)

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	etags   map[string]string
	puts    []*s3.PutObjectInput
	counter int
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, etags: map[string]string{}}
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(body)),
		ETag: aws.String(f.etags[aws.ToString(in.Key)]),
	}, nil
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := aws.ToString(in.Key)
	current, exists := f.etags[key]
	if in.IfNoneMatch != nil && exists {
		return nil, &smithy.GenericAPIError{Code: "PreconditionFailed"}
	}
	if in.IfMatch != nil && aws.ToString(in.IfMatch) != current {
		return nil, &smithy.GenericAPIError{Code: "PreconditionFailed"}
	}

	body, _ := io.ReadAll(in.Body)
	f.counter++
	f.objects[key] = body
	f.etags[key] = `"etag-` + string(rune('0'+f.counter)) + `"`
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{ETag: aws.String(f.etags[key])}, nil
}

func TestS3StoreRoundTrip(t *testing.T) {
	t.Parallel()

	fake := newFakeObjects()
	store := newS3Store(fake, "site-bucket", "/blog/")

	_, _, err := store.Get(context.Background(), "index.html")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Put(context.Background(), "index.html", []byte("v1"), "", "create"))
	assert.Equal(t, "blog/index.html", aws.ToString(fake.puts[0].Key))
	assert.Equal(t, "*", aws.ToString(fake.puts[0].IfNoneMatch))
	assert.Equal(t, "text/html; charset=utf-8", aws.ToString(fake.puts[0].ContentType))

	content, version, err := store.Get(context.Background(), "index.html")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(content))
	assert.NotEmpty(t, version)

	require.NoError(t, store.Put(context.Background(), "index.html", []byte("v2"), version, "update"))
	assert.Equal(t, version, aws.ToString(fake.puts[1].IfMatch))

	err = store.Put(context.Background(), "index.html", []byte("v3"), version, "stale")
	var apiErr smithy.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "PreconditionFailed", apiErr.ErrorCode())
}

func TestIsS3NotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, isS3NotFound(&s3types.NoSuchKey{}))
	assert.True(t, isS3NotFound(&smithy.GenericAPIError{Code: "NotFound"}))
	assert.False(t, isS3NotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isS3NotFound(errors.New("boom")))
}

package storage

import (
	"bytes"
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type capturingClient struct {
	input *s3.PutObjectInput
}

func (c *capturingClient) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	c.input = params
	return &s3.PutObjectOutput{}, nil
}

func TestUploadBuildsURL(t *testing.T) {
	client := &capturingClient{}
	s := NewWithClient(client, "avatars-bucket", "https://cdn.example.com/")

	url, err := s.Upload(context.Background(), "avatars/7.png", "image/png", bytes.NewReader([]byte("data")))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/avatars/7.png", url)

	require.NotNil(t, client.input)
	require.Equal(t, "avatars-bucket", *client.input.Bucket)
	require.Equal(t, "avatars/7.png", *client.input.Key)
	require.Equal(t, "image/png", *client.input.ContentType)
}

func TestNewRequiresBucketAndRegion(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

package settings

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/kezhenxu94/after-hours/pkg/config"
)

// MockS3Client is a mock implementation of the S3Client interface
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func newTestS3Backend(t *testing.T, client S3Client) *S3Backend {
	t.Helper()
	backend, err := NewS3Backend(context.Background(), config.S3StoreConfig{
		Bucket: "settings",
		Region: "us-east-1",
		Key:    "after-hours/settings.json",
	}, WithS3Client(client))
	require.NoError(t, err)
	return backend
}

func TestS3Backend_LoadMissingObject(t *testing.T) {
	client := new(MockS3Client)
	client.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{})

	values, err := newTestS3Backend(t, client).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, values)
	client.AssertExpectations(t)
}

func TestS3Backend_Load(t *testing.T) {
	client := new(MockS3Client)
	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Bucket) == "settings" && aws.ToString(in.Key) == "after-hours/settings.json"
	})).Return(&s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader([]byte(`{"delaySendEnabled":false,"businessStartHour":8,"businessEndHour":"16"}`))),
	}, nil)

	s, err := NewManager(newTestS3Backend(t, client), Defaults()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Settings{DelaySendEnabled: false, BusinessStartHour: 8, BusinessEndHour: 16}, s)
}

func TestS3Backend_Save(t *testing.T) {
	client := new(MockS3Client)
	client.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{})

	var written []byte
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.ContentType) == "application/json"
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(*s3.PutObjectInput)
		written, _ = io.ReadAll(in.Body)
	}).Return(&s3.PutObjectOutput{}, nil)

	_, err := NewManager(newTestS3Backend(t, client), Defaults()).Toggle(context.Background(), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"delaySendEnabled":"false","businessStartHour":"7","businessEndHour":"18"}`, string(written))
	client.AssertExpectations(t)
}

func TestS3Backend_LoadError(t *testing.T) {
	accessDenied := errors.New("access denied")
	client := new(MockS3Client)
	client.On("GetObject", mock.Anything, mock.Anything).Return(nil, accessDenied)

	_, err := newTestS3Backend(t, client).Load(context.Background())
	assert.ErrorIs(t, err, accessDenied)
}

func TestNewS3Backend_RequiresBucket(t *testing.T) {
	_, err := NewS3Backend(context.Background(), config.S3StoreConfig{Region: "us-east-1", Key: "k"})
	assert.Error(t, err)
}

func TestConfigMapBackend(t *testing.T) {
	ctx := context.Background()
	client := fake.NewSimpleClientset()
	backend := NewConfigMapBackend(client, "mail", "after-hours-settings")

	s, err := NewManager(backend, Defaults()).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)

	_, err = NewManager(backend, Defaults()).SetBusinessHours(ctx, 10, 19)
	require.NoError(t, err)

	cm, err := client.CoreV1().ConfigMaps("mail").Get(ctx, "after-hours-settings", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "10", cm.Data[KeyBusinessStartHour])
	assert.Equal(t, "19", cm.Data[KeyBusinessEndHour])
	assert.Equal(t, "true", cm.Data[KeyDelaySendEnabled])

	s, err = NewManager(backend, Defaults()).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Settings{DelaySendEnabled: true, BusinessStartHour: 10, BusinessEndHour: 19}, s)
}

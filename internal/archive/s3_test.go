package archive

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustav-de-Mando/KuratorV1/internal/common"
	"github.com/gustav-de-Mando/KuratorV1/internal/logging"
)

var testConfig = Config{
	Bucket:       "kurator",
	Region:       "eu-central-1",
	BaseEndpoint: "http://127.0.0.1:9000",
	AccessKey:    "minioadmin",
	SecretKey:    "minioadmin",
	LinkTTL:      time.Hour,
}

func stubSeams(t *testing.T) {
	t.Helper()
	origLoad, origNew, origPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origGet := putObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient = origLoad, origNew, origPre
		putObject, presignGetObject = origPut, origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		if lo.Region != testConfig.Region {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		if lo.Credentials == nil {
			t.Fatalf("static credentials not applied")
		}
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var o s3.Options
		for _, fn := range optFns {
			fn(&o)
		}
		require.NotNil(t, o.BaseEndpoint)
		assert.Equal(t, testConfig.BaseEndpoint, *o.BaseEndpoint)
		assert.True(t, o.UsePathStyle)
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func TestNewS3Archiver_Disabled(t *testing.T) {
	_, err := NewS3Archiver(context.Background(), Config{}, logging.Nop())
	assert.ErrorIs(t, err, common.ErrorArchiveDisabled)
}

func TestNewS3Archiver_LoadError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no region")
	}

	_, err := NewS3Archiver(context.Background(), testConfig, logging.Nop())
	assert.ErrorContains(t, err, "no region")
}

func TestStore_UploadsAndPresigns(t *testing.T) {
	stubSeams(t)

	var uploaded []byte
	var gotKey, gotType string
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		gotKey = aws.ToString(in.Key)
		gotType = aws.ToString(in.ContentType)
		uploaded, _ = io.ReadAll(in.Body)
		return &s3.PutObjectOutput{}, nil
	}

	var ttl time.Duration
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		ttl = po.Expires
		return &v4.PresignedHTTPRequest{URL: "http://127.0.0.1:9000/kurator/" + aws.ToString(in.Key) + "?sig"}, nil
	}

	a, err := NewS3Archiver(context.Background(), testConfig, logging.Nop())
	require.NoError(t, err)

	url, err := a.Store(context.Background(), "documents/2026/03/n-1.png", []byte("png"))
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9000/kurator/documents/2026/03/n-1.png?sig", url)
	assert.Equal(t, "documents/2026/03/n-1.png", gotKey)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, []byte("png"), uploaded)
	assert.Equal(t, time.Hour, ttl)
}

func TestStore_DefaultLinkTTL(t *testing.T) {
	stubSeams(t)

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return &s3.PutObjectOutput{}, nil
	}
	var ttl time.Duration
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		ttl = po.Expires
		return &v4.PresignedHTTPRequest{URL: "http://x"}, nil
	}

	cfg := testConfig
	cfg.LinkTTL = 0
	a, err := NewS3Archiver(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)

	_, err = a.Store(context.Background(), "k", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, DefaultLinkTTL, ttl)
}

func TestStore_Errors(t *testing.T) {
	stubSeams(t)

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("bucket missing")
	}
	a, err := NewS3Archiver(context.Background(), testConfig, logging.Nop())
	require.NoError(t, err)

	_, err = a.Store(context.Background(), "k", nil)
	assert.ErrorContains(t, err, "bucket missing")

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("sign failed")
	}
	_, err = a.Store(context.Background(), "k", nil)
	assert.ErrorContains(t, err, "sign failed")
}

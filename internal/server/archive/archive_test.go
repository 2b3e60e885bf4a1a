package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/geosync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	bucket, key, contentType string
	body                     []byte
	err                      error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	f.contentType = aws.ToString(in.ContentType)
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
}

func TestNewS3Archiver_AppliesOptions(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "user", creds.AccessKeyID)
		assert.Equal(t, "pass", creds.SecretAccessKey)
		return aws.Config{}, nil
	}

	fake := &fakeS3{}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		require.NotNil(t, opts.BaseEndpoint)
		assert.Equal(t, "http://minio:9000", *opts.BaseEndpoint)
		assert.True(t, opts.UsePathStyle)
		return fake
	}

	a, err := NewS3Archiver(context.Background(), S3Config{
		User: "user", Password: "pass", Bucket: "geo", Region: "eu-west-1", BaseEndpoint: "http://minio:9000",
	})
	require.NoError(t, err)
	assert.Same(t, fake, a.client)
	assert.Equal(t, "geo", a.bucket)
}

func TestNewS3Archiver_LoadError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := NewS3Archiver(context.Background(), S3Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load aws config")
}

func TestArchive_UploadsSnapshot(t *testing.T) {
	fake := &fakeS3{}
	a := &S3Archiver{client: fake, bucket: "geo", now: fixedNow}

	snap := &models.Snapshot{
		TakenAt: "2024-05-06T07:08:09.000Z",
		Tables: map[models.Table][]models.Row{
			models.TableCountries: {{UUID: "c1", Name: "Testland", LastUpdated: "t"}},
		},
		Queue: []models.QueueEntry{{ID: 1, TableName: models.TableCountries, RecordUUID: "c1", Operation: models.OpUpsert}},
	}

	key, err := a.Archive(context.Background(), snap)
	require.NoError(t, err)
	assert.Regexp(t, `^snapshots/20240506T070809Z-[0-9a-f-]{36}\.json$`, key)
	assert.Equal(t, key, fake.key)
	assert.Equal(t, "geo", fake.bucket)
	assert.Equal(t, "application/json", fake.contentType)

	var back models.Snapshot
	require.NoError(t, json.Unmarshal(fake.body, &back))
	assert.Equal(t, "Testland", back.Tables[models.TableCountries][0].Name)
	assert.Len(t, back.Queue, 1)
}

func TestArchive_PutError(t *testing.T) {
	a := &S3Archiver{client: &fakeS3{err: errors.New("denied")}, bucket: "geo", now: fixedNow}

	_, err := a.Archive(context.Background(), &models.Snapshot{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestObjectKey_Unique(t *testing.T) {
	a := &S3Archiver{now: fixedNow}
	assert.NotEqual(t, a.ObjectKey(), a.ObjectKey())
}

func TestNopArchiver(t *testing.T) {
	key, err := NopArchiver{}.Archive(context.Background(), &models.Snapshot{})
	require.NoError(t, err)
	assert.Empty(t, key)
}

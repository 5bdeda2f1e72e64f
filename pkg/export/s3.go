package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3Sink renders the report as CSV and uploads it to an S3 bucket, for runs
// that feed downstream tooling instead of a local file drop.
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Sink(ctx context.Context, bucket, prefix string) (*S3Sink, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Sink{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (s *S3Sink) Write(ctx context.Context, name string, columns []string, rows []Record) error {
	var buf bytes.Buffer
	if err := writeCSV(&buf, columns, rows); err != nil {
		return err
	}

	key := fmt.Sprintf("%s%s_%s.csv", s.prefix, name, time.Now().Format("20060102_150405"))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload report to s3: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("bucket", s.bucket).Str("key", key).Msg("report uploaded")
	return nil
}

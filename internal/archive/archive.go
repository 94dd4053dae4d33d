// Package archive optionally persists a solved schedule to S3 and publishes
// run metrics to CloudWatch, grounded on pkg/storage/s3.go and
// pkg/monitoring/cloudwatch.go's client wiring. Both are strictly additive:
// the driver runs fully offline when no bucket is configured.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader pushes rendered schedule documents to S3 and run metrics to
// CloudWatch, both namespaced by the calling problem's key.
type Uploader struct {
	s3Client *s3.Client
	cwClient *cloudwatch.Client
	bucket   string
}

// New builds an Uploader using the default AWS credential chain, the same
// config.LoadDefaultConfig entry point the teacher's pkg/aws/orchestrator.go
// and pkg/discovery/instances.go use.
func New(ctx context.Context, bucket string) (*Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	return &Uploader{
		s3Client: s3.NewFromConfig(cfg),
		cwClient: cloudwatch.NewFromConfig(cfg),
		bucket:   bucket,
	}, nil
}

// PutSchedule uploads a rendered schedule document under the given key.
func (u *Uploader) PutSchedule(ctx context.Context, key string, body []byte) error {
	_, err := u.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("archive: upload %q: %w", key, err)
	}
	return nil
}

// RunMetrics is the small set of per-problem numbers worth tracking across
// a batch of scheduling runs.
type RunMetrics struct {
	Problem      string
	Score        float64
	Iterations   int
	ElapsedMilli int64
}

// PutMetrics publishes one problem's run metrics to the
// "PartitionedScheduler" CloudWatch namespace, modeled on
// pkg/monitoring/cloudwatch.go's MetricsCollector.
func (u *Uploader) PutMetrics(ctx context.Context, m RunMetrics) error {
	now := time.Now()
	dims := []cwtypes.Dimension{{Name: aws.String("Problem"), Value: aws.String(m.Problem)}}

	_, err := u.cwClient.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String("PartitionedScheduler"),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String("Score"),
				Value:      aws.Float64(m.Score),
				Timestamp:  aws.Time(now),
				Dimensions: dims,
			},
			{
				MetricName: aws.String("Iterations"),
				Value:      aws.Float64(float64(m.Iterations)),
				Unit:       cwtypes.StandardUnitCount,
				Timestamp:  aws.Time(now),
				Dimensions: dims,
			},
			{
				MetricName: aws.String("ElapsedMilliseconds"),
				Value:      aws.Float64(float64(m.ElapsedMilli)),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Timestamp:  aws.Time(now),
				Dimensions: dims,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("archive: publish metrics for %q: %w", m.Problem, err)
	}
	return nil
}

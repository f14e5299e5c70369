package stream

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"

	"github.com/PratikDhanave/event-collector/internal/models"
)

// ErrOutcomeMismatch is returned when the stream reports a different number
// of results than records submitted.
var ErrOutcomeMismatch = errors.New("outcome does not match submitted records")

// KinesisAPI is the part of the Kinesis client used here.
type KinesisAPI interface {
	PutRecords(ctx context.Context, params *kinesis.PutRecordsInput, optFns ...func(*kinesis.Options)) (*kinesis.PutRecordsOutput, error)
}

// KinesisTransport implements Transport on top of Kinesis PutRecords.
type KinesisTransport struct {
	client KinesisAPI
}

// NewKinesisTransport wraps an existing client.
func NewKinesisTransport(client KinesisAPI) *KinesisTransport {
	return &KinesisTransport{client: client}
}

// DialKinesis builds a client from the default AWS credential chain.
func DialKinesis(ctx context.Context, region string) (*KinesisTransport, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewKinesisTransport(kinesis.NewFromConfig(cfg)), nil
}

// PutRecords submits records in one PutRecords call and maps the per-entry
// results back onto the submitted order.
func (t *KinesisTransport) PutRecords(ctx context.Context, streamName string, records []models.Record) (models.Outcome, error) {
	entries := make([]types.PutRecordsRequestEntry, len(records))
	for i, r := range records {
		entries[i] = types.PutRecordsRequestEntry{
			Data:         r.Payload,
			PartitionKey: aws.String(r.PartitionKey),
		}
	}

	out, err := t.client.PutRecords(ctx, &kinesis.PutRecordsInput{
		StreamName: aws.String(streamName),
		Records:    entries,
	})
	if err != nil {
		return models.Outcome{}, err
	}

	results := make([]models.Result, len(out.Records))
	for i, e := range out.Records {
		results[i] = models.Result{
			SequenceNumber: aws.ToString(e.SequenceNumber),
			ShardID:        aws.ToString(e.ShardId),
			ErrorCode:      aws.ToString(e.ErrorCode),
			ErrorMessage:   aws.ToString(e.ErrorMessage),
		}
	}

	return models.Outcome{
		FailedCount: int(aws.ToInt32(out.FailedRecordCount)),
		Results:     results,
	}, nil
}

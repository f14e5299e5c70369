package stream

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/event-collector/internal/models"
)

type fakeKinesis struct {
	input *kinesis.PutRecordsInput
	out   *kinesis.PutRecordsOutput
	err   error
}

func (f *fakeKinesis) PutRecords(_ context.Context, in *kinesis.PutRecordsInput, _ ...func(*kinesis.Options)) (*kinesis.PutRecordsOutput, error) {
	f.input = in
	return f.out, f.err
}

func TestKinesisTransport_MapsRequestAndResult(t *testing.T) {
	fk := &fakeKinesis{out: &kinesis.PutRecordsOutput{
		FailedRecordCount: aws.Int32(1),
		Records: []types.PutRecordsResultEntry{
			{SequenceNumber: aws.String("21269319989900637946712965403778482371"), ShardId: aws.String("shardId-000000000001")},
			{ErrorCode: aws.String("ProvisionedThroughputExceededException"), ErrorMessage: aws.String("Rate exceeded for shard shardId...")},
		},
	}}
	tr := NewKinesisTransport(fk)
	recs := []models.Record{
		{Payload: []byte("{\"a\":1}\n"), PartitionKey: "k1"},
		{Payload: []byte("{\"a\":2}\n"), PartitionKey: "k2"},
	}

	outcome, err := tr.PutRecords(context.Background(), "dp.green.d123.incoming.1.json", recs)

	require.NoError(t, err)
	assert.Equal(t, "dp.green.d123.incoming.1.json", aws.ToString(fk.input.StreamName))
	require.Len(t, fk.input.Records, 2)
	assert.Equal(t, "k2", aws.ToString(fk.input.Records[1].PartitionKey))
	assert.Equal(t, []byte("{\"a\":2}\n"), fk.input.Records[1].Data)

	assert.Equal(t, 1, outcome.FailedCount)
	require.Len(t, outcome.Results, 2)
	assert.False(t, outcome.Results[0].Failed())
	assert.Equal(t, "shardId-000000000001", outcome.Results[0].ShardID)
	assert.True(t, outcome.Results[1].Failed())
	assert.Equal(t, "ProvisionedThroughputExceededException", outcome.Results[1].ErrorCode)
}

func TestKinesisTransport_ClientErrorPropagates(t *testing.T) {
	boom := errors.New("ResourceNotFoundException")
	tr := NewKinesisTransport(&fakeKinesis{err: boom})

	_, err := tr.PutRecords(context.Background(), "s", []models.Record{{Payload: []byte("{}"), PartitionKey: "k"}})

	require.ErrorIs(t, err, boom)
}

func TestKinesisTransport_PublisherIntegration(t *testing.T) {
	fk := &fakeKinesis{out: &kinesis.PutRecordsOutput{
		FailedRecordCount: aws.Int32(0),
		Records:           []types.PutRecordsResultEntry{{SequenceNumber: aws.String("1")}},
	}}
	p := NewPublisher(NewKinesisTransport(fk))

	outcome, failed, err := p.Publish(context.Background(), "s", []models.Record{{Payload: []byte("{}"), PartitionKey: "k"}}, 3)

	require.NoError(t, err)
	assert.Empty(t, failed)
	assert.Equal(t, 0, outcome.FailedCount)
}

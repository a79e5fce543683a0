//go:build integration

package sqs

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/iyhunko/supermarket-pos/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClient_Integration_WithLocalStack needs LocalStack on localhost:4566 with the
// store-events queue created.
// Run with: go test -tags integration -run Integration ./internal/sqs/...
func TestClient_Integration_WithLocalStack(t *testing.T) {
	endpoint := os.Getenv("AWS_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:4566"
	}

	queueURL := os.Getenv("SQS_QUEUE_URL")
	if queueURL == "" {
		queueURL = "http://localhost:4566/000000000000/store-events"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sqsClient, err := NewClient(ctx, "us-east-1", endpoint)
	require.NoError(t, err)

	if _, err := sqsClient.ListQueues(ctx, &sqs.ListQueuesInput{}); err != nil {
		t.Skipf("LocalStack not available: %v", err)
	}

	publisher := NewPublisher(sqsClient, queueURL)

	msg := StoreMessage{
		EventID:   "integration-" + time.Now().Format(time.RFC3339Nano),
		EventType: model.EventTypeSaleRecorded,
		Sale: &SaleMessage{
			SaleID:         1,
			ProductID:      1,
			ProductName:    "Milk",
			Qty:            2,
			Total:          decimal.NewFromInt(20),
			RemainingStock: 3,
			SoldAt:         time.Now().UTC(),
		},
	}

	require.NoError(t, publisher.Publish(ctx, msg))

	output, err := sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     2,
	})
	require.NoError(t, err)
	require.NotEmpty(t, output.Messages, "Expected at least one message in the queue")

	var found bool
	for _, sqsMsg := range output.Messages {
		var received StoreMessage
		if err := json.Unmarshal([]byte(*sqsMsg.Body), &received); err != nil || received.EventID != msg.EventID {
			continue
		}

		found = true
		require.NotNil(t, received.Sale)
		assert.Equal(t, msg.Sale.ProductName, received.Sale.ProductName)
		assert.True(t, msg.Sale.Total.Equal(received.Sale.Total))

		_, err := sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(queueURL),
			ReceiptHandle: sqsMsg.ReceiptHandle,
		})
		assert.NoError(t, err)
		break
	}

	assert.True(t, found, "Did not find our test message in the queue")
}

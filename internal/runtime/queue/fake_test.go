package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type fakeRecord struct {
	id             string
	body           string
	attributes     map[string]types.MessageAttributeValue
	group          string
	receipt        string
	invisibleUntil time.Time
}

// fakeSQS keeps queues in memory and hides received records until the
// visibility timeout passes on its manual clock.
type fakeSQS struct {
	mu         sync.Mutex
	now        time.Time
	visibility time.Duration
	queues     map[string][]*fakeRecord
	seq        int

	sendErr    error
	receiveErr error
	deleteErr  error

	lastSend    *sqs.SendMessageInput
	lastReceive *sqs.ReceiveMessageInput
}

func newFakeSQS(visibility time.Duration) *fakeSQS {
	return &fakeSQS{
		now:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		visibility: visibility,
		queues:     make(map[string][]*fakeRecord),
	}
}

func (f *fakeSQS) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeSQS) depth(queueURL string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queues[queueURL])
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSend = in
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.seq++
	rec := &fakeRecord{
		id:         fmt.Sprintf("msg-%d", f.seq),
		body:       aws.ToString(in.MessageBody),
		attributes: in.MessageAttributes,
		group:      aws.ToString(in.MessageGroupId),
	}
	url := aws.ToString(in.QueueUrl)
	f.queues[url] = append(f.queues[url], rec)
	return &sqs.SendMessageOutput{MessageId: aws.String(rec.id)}, nil
}

func (f *fakeSQS) ReceiveMessage(_ context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReceive = in
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	out := &sqs.ReceiveMessageOutput{}
	for _, rec := range f.queues[aws.ToString(in.QueueUrl)] {
		if int32(len(out.Messages)) >= in.MaxNumberOfMessages {
			break
		}
		if f.now.Before(rec.invisibleUntil) {
			continue
		}
		f.seq++
		rec.receipt = fmt.Sprintf("receipt-%d", f.seq)
		rec.invisibleUntil = f.now.Add(f.visibility)
		out.Messages = append(out.Messages, types.Message{
			MessageId:         aws.String(rec.id),
			Body:              aws.String(rec.body),
			ReceiptHandle:     aws.String(rec.receipt),
			MessageAttributes: rec.attributes,
			Attributes:        map[string]string{"MessageGroupId": rec.group},
		})
	}
	return out, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	url := aws.ToString(in.QueueUrl)
	records := f.queues[url]
	for i, rec := range records {
		if rec.receipt == aws.ToString(in.ReceiptHandle) {
			f.queues[url] = append(records[:i], records[i+1:]...)
			return &sqs.DeleteMessageOutput{}, nil
		}
	}
	return nil, &types.ReceiptHandleIsInvalid{Message: aws.String("unknown receipt handle")}
}

package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hqnguyen/ingest-be/internal/worker/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAcknowledger struct {
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func TestDispatch(t *testing.T) {
	jobID := uuid.New().String()

	tests := []struct {
		name         string
		body         string
		wantDispatch bool
		wantNack     bool
	}{
		{
			name:         "valid message",
			body:         `{"job_id": "` + jobID + `"}`,
			wantDispatch: true,
		},
		{
			name:     "malformed json",
			body:     `{"job_id": `,
			wantNack: true,
		},
		{
			name:     "job id is not a uuid",
			body:     `{"job_id": "42"}`,
			wantNack: true,
		},
		{
			name:     "missing job id",
			body:     `{}`,
			wantNack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorker(newFakeStore(), &fakeIngester{})

			ack := &fakeAcknowledger{}
			deliveries := make(chan amqp.Delivery, 1)
			deliveries <- amqp.Delivery{
				Acknowledger: ack,
				DeliveryTag:  7,
				Body:         []byte(tt.body),
			}
			close(deliveries)

			var got *domain.JobMessage
			if tt.wantDispatch {
				done := make(chan struct{})
				go func() {
					defer close(done)
					select {
					case got = <-w.jobsChan:
					case <-time.After(time.Second):
					}
				}()

				w.dispatch(context.Background(), deliveries)
				<-done

				require.NotNil(t, got)
				assert.Equal(t, jobID, got.JobID)
				assert.Equal(t, uint64(7), got.DeliveryTag)
				assert.False(t, ack.nacked)
			} else {
				// Invalid messages are never handed to the workers, so
				// dispatch drains the channel and returns on close.
				w.dispatch(context.Background(), deliveries)
			}

			if tt.wantNack {
				assert.True(t, ack.nacked)
				// Malformed messages must not be requeued
				assert.False(t, ack.requeue)
			}
		})
	}
}

func TestDispatchStopsOnContextCancel(t *testing.T) {
	w := newTestWorker(newFakeStore(), &fakeIngester{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	deliveries := make(chan amqp.Delivery)

	done := make(chan struct{})
	go func() {
		w.dispatch(ctx, deliveries)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch did not stop on context cancel")
	}
}

// Package busflow moves typed business messages between services over Kafka
// and Amazon SQS.
//
// Every message is an Envelope: a Metadata header naming the sender, the
// creation time, an opaque bearer token, an idempotency key and exactly one
// discriminant (an instruction type or an event type), paired with a Payload
// drawn from a closed set of variants. Encode and Decode convert envelopes to
// and from the JSON wire shape {"meta_data": ..., "payload": ...}; the decoder
// picks the payload variant from the discriminant, treats a string payload as
// Raw, and falls back to best-effort matching when no discriminant is set.
//
// # Adapters
//
// NewConsumer subscribes to Kafka topics and forwards each parsed record into a
// bounded HandoffQueue. Parse failures are retried with exponential backoff
// (1s, 2s, 4s, ...) up to KAFKA_MAX_RETRIES attempts and then dropped. A record
// is acknowledged only after it is in the queue, so a full or closed queue
// leaves it for redelivery.
//
// NewPublisher sends records under a partition key with full acknowledgement,
// bounded retries and gzip compression. Failures come back as *DeliveryError.
//
// NewQueueClient sends, receives and deletes messages on SQS queues addressed
// as "{SQS_QUEUE_ENDPOINT}/{name}". A received message that is never deleted
// reappears after the queue's visibility timeout.
//
// # Configuration
//
// LoadConfig reads every setting from the environment; see Config for the
// variable names and defaults.
package busflow

package stream

import (
	"crypto/tls"
	"time"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"

	"github.com/drblury/busflow/internal/runtime/config"
)

const (
	publishMaxRetries       = 3
	publishRetryBaseBackoff = 500 * time.Millisecond
	publishRetryMaxBackoff  = 10 * time.Second
)

// newConsumerSaramaConfig starts from watermill-kafka's subscriber defaults and
// applies the client id, security and earliest-offset start for new groups.
func newConsumerSaramaConfig(cfg config.Config, sec config.KafkaSecurity) *sarama.Config {
	sc := kafka.DefaultSaramaSubscriberConfig()
	if cfg.KafkaClientID != "" {
		sc.ClientID = cfg.KafkaClientID
	}
	sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	sc.Consumer.Offsets.AutoCommit.Enable = true
	applySecurity(sc, sec)
	return sc
}

// newProducerSaramaConfig configures full acknowledgement, bounded retries with
// exponential backoff, gzip compression and a per-request timeout.
func newProducerSaramaConfig(cfg config.Config, sec config.KafkaSecurity) *sarama.Config {
	sc := kafka.DefaultSaramaSyncPublisherConfig()
	if cfg.KafkaClientID != "" {
		sc.ClientID = cfg.KafkaClientID
	}
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = publishMaxRetries
	sc.Producer.Retry.BackoffFunc = publishRetryBackoff
	sc.Producer.Compression = sarama.CompressionGZIP
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	if cfg.KafkaPublishTimeout > 0 {
		sc.Producer.Timeout = cfg.KafkaPublishTimeout
	}
	applySecurity(sc, sec)
	return sc
}

// publishRetryBackoff doubles from 500ms per retry, capped at 10s.
func publishRetryBackoff(retries, _ int) time.Duration {
	d := publishRetryBaseBackoff
	for i := 0; i < retries && d < publishRetryMaxBackoff; i++ {
		d *= 2
	}
	if d > publishRetryMaxBackoff {
		d = publishRetryMaxBackoff
	}
	return d
}

func applySecurity(sc *sarama.Config, sec config.KafkaSecurity) {
	if sec.UsesTLS() {
		sc.Net.TLS.Enable = true
		sc.Net.TLS.Config = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if sec.UsesSASL() {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.Handshake = true
		sc.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		sc.Net.SASL.User = sec.Username
		sc.Net.SASL.Password = sec.Password
	}
}

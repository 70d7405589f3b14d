package metadata

import (
	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill/message"
)

// FromWatermill converts Watermill metadata into a normalised header map.
func FromWatermill(md message.Metadata) Metadata {
	if len(md) == 0 {
		return Metadata{}
	}

	result := make(Metadata, len(md))
	for k, v := range md {
		result[k] = normalizeValue(v)
	}
	return result
}

// ToWatermill converts a header map into Watermill metadata.
func ToWatermill(md Metadata) message.Metadata {
	if len(md) == 0 {
		return message.Metadata{}
	}

	wm := make(message.Metadata, len(md))
	for k, v := range md {
		wm[k] = v
	}
	return wm
}

// FromRecordHeaders converts raw Kafka record headers. Headers with a nil key
// are skipped; nil or blank values become "". Later duplicates win.
func FromRecordHeaders(headers []*sarama.RecordHeader) Metadata {
	result := make(Metadata, len(headers))
	for _, h := range headers {
		if h == nil || len(h.Key) == 0 {
			continue
		}
		result[string(h.Key)] = normalizeValue(string(h.Value))
	}
	return result
}

package metadata

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
)

func TestCloneDoesNotAlias(t *testing.T) {
	original := Metadata{"a": "1", "b": "2"}
	clone := original.Clone()
	clone["a"] = "changed"

	assert.Equal(t, "1", original["a"])
	assert.Len(t, clone, len(original))
}

func TestCloneEmpty(t *testing.T) {
	var m Metadata
	cloned := m.Clone()
	assert.NotNil(t, cloned)
	assert.Empty(t, cloned)
}

func TestWithLeavesReceiverUntouched(t *testing.T) {
	base := Metadata{"foo": "bar"}
	enriched := base.With("source", "ledger")

	assert.Equal(t, "", base.Get("source"))
	assert.Equal(t, "ledger", enriched.Get("source"))
	assert.Equal(t, "bar", enriched.Get("foo"))
}

func TestNewPairsNormalisesBlankValues(t *testing.T) {
	md := New("key", "value", "blank", "   ", "dangling")

	assert.Equal(t, Metadata{"key": "value", "blank": ""}, md)
}

func TestFromWatermill(t *testing.T) {
	assert.Equal(t, Metadata{}, FromWatermill(nil))

	md := FromWatermill(message.Metadata{"source": "wallet", "trace": " \t"})
	assert.Equal(t, Metadata{"source": "wallet", "trace": ""}, md)
}

func TestToWatermill(t *testing.T) {
	assert.Equal(t, message.Metadata{}, ToWatermill(nil))
	assert.Equal(t, message.Metadata{"a": "b"}, ToWatermill(Metadata{"a": "b"}))
}

func TestFromRecordHeaders(t *testing.T) {
	headers := []*sarama.RecordHeader{
		{Key: []byte("source"), Value: []byte("ledger")},
		{Key: []byte("empty"), Value: nil},
		nil,
		{Key: nil, Value: []byte("orphan")},
		{Key: []byte("source"), Value: []byte("wallet")},
	}

	md := FromRecordHeaders(headers)
	assert.Equal(t, Metadata{"source": "wallet", "empty": ""}, md)
}

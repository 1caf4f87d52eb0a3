package events

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fsdevblog/splitledger/internal/domain"
)

func TestLogBrokerPublish(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(new(logrus.JSONFormatter))

	event := domain.NewLedgerEvent(domain.EventGroupCreated, 5, domain.WithGroup(5))
	broker := NewLogBroker(l)
	require.NoError(t, broker.Publish(t.Context(), event))
	require.NoError(t, broker.Close())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "ledger event", entry["msg"])
	require.Equal(t, string(domain.EventGroupCreated), entry["event_type"])
	require.Equal(t, event.ID.String(), entry["event_id"])
	require.Equal(t, "events", entry["component"])
}

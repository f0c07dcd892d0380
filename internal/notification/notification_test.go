package notification

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/moneyfer/moneyfer/internal/logging"
)

func TestLoggerNotifierWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	n := NewLoggerNotifier(logging.NewWithWriter(&buf, "Moneyfer", "info"))

	err := n.Send(context.Background(), Message{Kind: KindTransferCreated, Destination: "user-1", Body: "sent 10 USD"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"kind":"transfer_created"`) || !strings.Contains(out, `"destination":"user-1"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestNilNotifierIsNoop(t *testing.T) {
	var n *LoggerNotifier
	if err := n.Send(context.Background(), Message{Kind: KindSessionStarted}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

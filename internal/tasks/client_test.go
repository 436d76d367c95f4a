package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, string) {
	t.Helper()

	tmpDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(filepath.Join(tmpDir, "test.db"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, tmpDir
}

func TestNewClientCreatesSidecarDatabase(t *testing.T) {
	_, tmpDir := newTestClient(t)

	// Queue storage lives next to the main database, not inside it
	_, err := os.Stat(filepath.Join(tmpDir, "test-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")
}

func TestClientStartStop(t *testing.T) {
	client, _ := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx), "stop should drain workers gracefully")
}

type echoTask struct {
	Value string `json:"value"`
}

func (t echoTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "echo",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestTaskRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)

	executed := make(chan string, 1)
	client.Register(backlite.NewQueue(func(ctx context.Context, task echoTask) error {
		executed <- task.Value
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	ids, err := client.Add(echoTask{Value: "hello"}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	select {
	case val := <-executed:
		assert.Equal(t, "hello", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestQueueConfigs(t *testing.T) {
	reminder := SendOverdueReminderTask{LoanID: 123}.Config()
	assert.Equal(t, "send_overdue_reminder", reminder.Name)
	assert.Equal(t, 3, reminder.MaxAttempts)
	assert.Equal(t, 5*time.Minute, reminder.Backoff)
	assert.Equal(t, time.Minute, reminder.Timeout)
	assert.NotNil(t, reminder.Retention)

	broadcast := BroadcastAnnouncementTask{AnnouncementID: 1, BatchID: "batch-1"}.Config()
	assert.Equal(t, "broadcast_announcement", broadcast.Name)
	assert.Equal(t, 2, broadcast.MaxAttempts)
	assert.Equal(t, 10*time.Minute, broadcast.Timeout)
	assert.NotNil(t, broadcast.Retention)

	cleanup := CleanupAuditEventsTask{RetentionDays: 90}.Config()
	assert.Equal(t, "cleanup_audit_events", cleanup.Name)
	assert.Equal(t, 3, cleanup.MaxAttempts)
}

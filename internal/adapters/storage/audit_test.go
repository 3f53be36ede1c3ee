package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/arbot/internal/adapters/storage"
	"github.com/alejandrodnm/arbot/internal/domain"
)

func TestJSONLAudit_AppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	log := storage.NewJSONLAudit(path)
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, domain.ActionQueueApprove, map[string]string{"id": "1"}))
	require.NoError(t, log.Append(ctx, domain.ActionModeChange, map[string]string{"mode": "live"}))
	require.NoError(t, log.Append(ctx, domain.ActionQueueReject, map[string]string{"id": "2"}))

	entries, err := log.Read(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// De la más nueva a la más vieja.
	assert.Equal(t, domain.ActionQueueReject, entries[0].Action)
	assert.Equal(t, domain.ActionQueueApprove, entries[2].Action)
}

func TestJSONLAudit_FilterByAction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	log := storage.NewJSONLAudit(path)
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, domain.ActionQueueApprove, nil))
	require.NoError(t, log.Append(ctx, domain.ActionModeChange, nil))
	require.NoError(t, log.Append(ctx, domain.ActionModeChange, nil))

	entries, err := log.Read(ctx, 10, domain.ActionModeChange)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, domain.ActionModeChange, e.Action)
	}
}

func TestJSONLAudit_ReadMissingFile(t *testing.T) {
	log := storage.NewJSONLAudit(filepath.Join(t.TempDir(), "nope.log"))
	entries, err := log.Read(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJSONLAudit_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	log := storage.NewJSONLAudit(path)
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, domain.ActionQueueAdd, nil))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	f.WriteString("this is not json\n")
	f.Close()

	require.NoError(t, log.Append(ctx, domain.ActionQueueApprove, nil))

	entries, err := log.Read(ctx, 10, "")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestJSONLAudit_Limit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	log := storage.NewJSONLAudit(path)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, log.Append(ctx, domain.ActionOrderSubmit, nil))
	}

	entries, err := log.Read(ctx, 2, "")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

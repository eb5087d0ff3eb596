package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/chatflow/pkg/adapters/file"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.ConversationStore = (*file.Store)(nil)

func TestStore_Contract(t *testing.T) {
	ports.RunConversationStoreContract(t, file.NewStore(t.TempDir()))
}

func TestStore_AtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.NewStore(dir)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, &domain.Conversation{ID: "c1", FlowID: "f"}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "c1.json", entries[0].Name())
}

func TestStore_ListMissingDirectory(t *testing.T) {
	store := file.NewStore(filepath.Join(t.TempDir(), "not-yet"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStore_RejectsUnsafeIDs(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		assert.Error(t, store.Save(ctx, &domain.Conversation{ID: id}), "id %q", id)
		_, err := store.Load(ctx, id)
		assert.Error(t, err, "id %q", id)
	}
}

func TestStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644))

	_, err := file.NewStore(dir).Load(context.Background(), "bad")
	assert.ErrorContains(t, err, "failed to unmarshal conversation")
	assert.NotErrorIs(t, err, domain.ErrConversationNotFound)
}

package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/chatflow/pkg/domain"
)

// DefaultStorePath is used when New receives an empty path.
var DefaultStorePath = filepath.Join(".chatflow", "conversations")

// Store implements ports.ConversationStore using the local filesystem.
// It stores conversations as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// NewStore creates a new Store with the given base path.
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = DefaultStorePath
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(conversationID string) (string, error) {
	if conversationID == "" {
		return "", errors.New("conversation id cannot be empty")
	}
	if strings.ContainsAny(conversationID, `/\`) || conversationID == "." || conversationID == ".." {
		return "", fmt.Errorf("invalid conversation id %q", conversationID)
	}
	return filepath.Join(s.BasePath, conversationID+".json"), nil
}

// Save persists the conversation to a JSON file atomically.
// It writes to a temporary file first, syncs it, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, conv *domain.Conversation) error {
	destPath, err := s.path(conv.ID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure conversation directory: %w", err)
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+conv.ID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename cannot replace an existing file on Windows.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing conversation file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load retrieves the conversation from its JSON file.
func (s *Store) Load(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	filePath, err := s.path(conversationID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConversationNotFound, conversationID)
		}
		return nil, fmt.Errorf("failed to read conversation file: %w", err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return &conv, nil
}

// Delete removes the conversation file.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	filePath, err := s.path(conversationID)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete conversation file: %w", err)
	}
	return nil
}

// List returns the ids of all stored conversations.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/ideavaultapp/ideavault-server/internal/domain"
)

// Key prefixes for tag storage. Tags are scoped to their owner.
const (
	tagPrefix        = "tag:"            // tag:{id} -> Tag JSON
	tagByOwnerPrefix = "idx:tags:owner:" // idx:tags:owner:{ownerID}:{tagID} -> empty
)

// Tag errors.
var (
	ErrTagNotFound = errors.New("tag not found")
	ErrTagExists   = errors.New("tag already exists")
)

// CreateTag persists a new tag and its owner index entry.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(tagPrefix + t.ID)
	ownerKey := []byte(tagByOwnerPrefix + t.OwnerID + ":" + t.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrTagExists
		}

		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal tag: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}

		return txn.Set(ownerKey, []byte{})
	})
}

// GetTag retrieves a tag by ID.
func (s *Store) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var t domain.Tag
	key := []byte(tagPrefix + tagID)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTagNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &t)
		})
	})

	if err != nil {
		return nil, err
	}

	return &t, nil
}

// UpdateTag replaces an existing tag.
// The owner never changes, so the owner index entry is stable.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(tagPrefix + t.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check tag exists: %w", err)
	}
	if !exists {
		return ErrTagNotFound
	}

	t.Touch()

	if err := s.set(key, t); err != nil {
		return fmt.Errorf("update tag: %w", err)
	}

	return nil
}

// ListTagsByOwner returns all of an owner's tags in creation order.
func (s *Store) ListTagsByOwner(ctx context.Context, ownerID string) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(tagByOwnerPrefix + ownerID + ":")
	var tagIDs []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			tagIDs = append(tagIDs, key[len(prefix):])
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list tags by owner: %w", err)
	}

	tags := make([]*domain.Tag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		t, err := s.GetTag(ctx, tagID)
		if err != nil {
			continue // Skip dangling index entries
		}
		tags = append(tags, t)
	}

	// Oldest first, then by name for stability.
	sort.SliceStable(tags, func(i, j int) bool {
		if !tags[i].CreatedAt.Equal(tags[j].CreatedAt) {
			return tags[i].CreatedAt.Before(tags[j].CreatedAt)
		}
		return tags[i].Name < tags[j].Name
	})

	return tags, nil
}

// DeleteTag hard-deletes a tag, its owner index entry, and every link
// to an idea in a single transaction. Returns the IDs of the ideas the
// tag was linked to so callers can notify clients.
func (s *Store) DeleteTag(ctx context.Context, tagID string) ([]string, error) {
	t, err := s.GetTag(ctx, tagID)
	if err != nil {
		return nil, err
	}

	var linkedIdeaIDs []string

	err = s.db.Update(func(txn *badger.Txn) error {
		key := []byte(tagPrefix + tagID)
		if err := txn.Delete(key); err != nil {
			return err
		}

		ownerKey := []byte(tagByOwnerPrefix + t.OwnerID + ":" + tagID)
		if err := txn.Delete(ownerKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		// Remove all idea links (reverse index plus forward entries).
		prefix := []byte(fmt.Sprintf("%s%s:", tagIdeasPrefix, tagID))
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		var keysToDelete [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keyCopy := make([]byte, len(it.Item().Key()))
			copy(keyCopy, it.Item().Key())
			keysToDelete = append(keysToDelete, keyCopy)

			// Extract ideaID for forward index cleanup.
			parts := string(keyCopy)
			lastColon := strings.LastIndex(parts, ":")
			if lastColon != -1 {
				ideaID := parts[lastColon+1:]
				linkedIdeaIDs = append(linkedIdeaIDs, ideaID)
				forwardKey := []byte(fmt.Sprintf("%s%s:%s", ideaTagsPrefix, ideaID, tagID))
				keysToDelete = append(keysToDelete, forwardKey)
			}
		}

		for _, k := range keysToDelete {
			if err := txn.Delete(k); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return linkedIdeaIDs, nil
}

// CountIdeasForTag returns how many ideas currently carry a tag.
func (s *Store) CountIdeasForTag(ctx context.Context, tagID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	prefix := []byte(fmt.Sprintf("%s%s:", tagIdeasPrefix, tagID))
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}

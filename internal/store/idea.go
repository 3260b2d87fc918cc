package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/ideavaultapp/ideavault-server/internal/domain"
)

const (
	ideaPrefix        = "idea:"
	ideaByOwnerPrefix = "idx:ideas:owner:" // idx:ideas:owner:{ownerID}:{ideaID} -> empty
	ideaTagsPrefix    = "idx:ideas:tags:"  // idx:ideas:tags:{ideaID}:{tagID} -> empty (tags on an idea)
	tagIdeasPrefix    = "idx:tags:ideas:"  // idx:tags:ideas:{tagID}:{ideaID} -> empty (ideas under a tag)
)

var (
	// ErrIdeaNotFound is returned when an idea cannot be found by ID.
	ErrIdeaNotFound = errors.New("idea not found")
	// ErrIdeaExists is returned when attempting to create an idea with an existing ID.
	ErrIdeaExists = errors.New("idea already exists")
	// ErrLinkExists is returned when attempting to link a tag that is already on the idea.
	ErrLinkExists = errors.New("tag already linked to idea")
)

// CreateIdea persists a new idea and its owner index entry.
func (s *Store) CreateIdea(ctx context.Context, idea *domain.Idea) error {
	key := []byte(ideaPrefix + idea.ID)
	ownerKey := []byte(ideaByOwnerPrefix + idea.OwnerID + ":" + idea.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrIdeaExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check idea exists: %w", err)
		}

		data, err := json.Marshal(idea)
		if err != nil {
			return fmt.Errorf("marshal idea: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		return txn.Set(ownerKey, []byte{})
	})
	if err != nil {
		return err
	}

	s.indexIdea(ctx, idea)
	return nil
}

// GetIdea retrieves an idea by ID.
func (s *Store) GetIdea(_ context.Context, id string) (*domain.Idea, error) {
	key := []byte(ideaPrefix + id)

	var idea domain.Idea
	if err := s.get(key, &idea); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrIdeaNotFound
		}
		return nil, fmt.Errorf("get idea: %w", err)
	}

	return &idea, nil
}

// UpdateIdea replaces an existing idea.
// The owner never changes, so the owner index entry is stable.
func (s *Store) UpdateIdea(ctx context.Context, idea *domain.Idea) error {
	key := []byte(ideaPrefix + idea.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check idea exists: %w", err)
	}
	if !exists {
		return ErrIdeaNotFound
	}

	idea.Touch()

	if err := s.set(key, idea); err != nil {
		return fmt.Errorf("update idea: %w", err)
	}

	s.indexIdea(ctx, idea)
	return nil
}

// DeleteIdea removes an idea, its owner index entry, and all of its tag
// links in a single transaction. Idempotent.
func (s *Store) DeleteIdea(ctx context.Context, id string) error {
	key := []byte(ideaPrefix + id)

	var idea domain.Idea
	if err := s.get(key, &idea); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Already gone
		}
		return fmt.Errorf("get idea for deletion: %w", err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		// Collect link keys for both directions before deleting.
		forwardPrefix := []byte(ideaTagsPrefix + id + ":")
		keysToDelete := [][]byte{key, []byte(ideaByOwnerPrefix + idea.OwnerID + ":" + id)}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = forwardPrefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		for it.Seek(forwardPrefix); it.ValidForPrefix(forwardPrefix); it.Next() {
			forwardKey := it.Item().KeyCopy(nil)
			keysToDelete = append(keysToDelete, forwardKey)

			// Derive the reverse key: idx:tags:ideas:{tagID}:{ideaID}
			tagID := string(forwardKey[len(forwardPrefix):])
			keysToDelete = append(keysToDelete, []byte(tagIdeasPrefix+tagID+":"+id))
		}
		it.Close()

		for _, k := range keysToDelete {
			if err := txn.Delete(k); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.DeleteIdea(ctx, id); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove idea from search index", "idea_id", id, "error", err)
		}
	}

	return nil
}

// ListIdeasByOwner returns all of an owner's ideas, newest first.
func (s *Store) ListIdeasByOwner(ctx context.Context, ownerID string) ([]*domain.Idea, error) {
	prefix := []byte(ideaByOwnerPrefix + ownerID + ":")
	var ideas []*domain.Idea

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // We only need keys

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			ideaID := key[len(prefix):]

			idea, err := s.GetIdea(ctx, ideaID)
			if err != nil {
				if errors.Is(err, ErrIdeaNotFound) {
					continue // Skip dangling index entries
				}
				return err
			}

			ideas = append(ideas, idea)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list ideas by owner: %w", err)
	}

	sort.Slice(ideas, func(i, j int) bool {
		return ideas[i].CreatedAt.After(ideas[j].CreatedAt)
	})

	return ideas, nil
}

// AddIdeaTag creates the link between an idea and a tag.
// Returns ErrLinkExists if the pair is already linked.
func (s *Store) AddIdeaTag(_ context.Context, ideaID, tagID string, createdAt int64) error {
	forwardKey := []byte(ideaTagsPrefix + ideaID + ":" + tagID)
	reverseKey := []byte(tagIdeasPrefix + tagID + ":" + ideaID)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(forwardKey)
		if err == nil {
			return ErrLinkExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check link exists: %w", err)
		}

		link := domain.IdeaTagLink{IdeaID: ideaID, TagID: tagID, CreatedAt: createdAt}
		data, err := json.Marshal(link)
		if err != nil {
			return fmt.Errorf("marshal link: %w", err)
		}

		if err := txn.Set(forwardKey, data); err != nil {
			return err
		}
		return txn.Set(reverseKey, []byte{})
	})
}

// RemoveIdeaTag removes the link between an idea and a tag.
// Idempotent - removing an absent link succeeds.
func (s *Store) RemoveIdeaTag(_ context.Context, ideaID, tagID string) error {
	forwardKey := []byte(ideaTagsPrefix + ideaID + ":" + tagID)
	reverseKey := []byte(tagIdeasPrefix + tagID + ":" + ideaID)

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(forwardKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Delete(reverseKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}

// GetTagIDsForIdea returns the IDs of all tags linked to an idea.
func (s *Store) GetTagIDsForIdea(_ context.Context, ideaID string) ([]string, error) {
	prefix := []byte(ideaTagsPrefix + ideaID + ":")
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
		return nil, fmt.Errorf("get tags for idea: %w", err)
	}

	return tagIDs, nil
}

// GetIdeaIDsForTag returns the IDs of all ideas linked to a tag.
func (s *Store) GetIdeaIDsForTag(_ context.Context, tagID string) ([]string, error) {
	prefix := []byte(tagIdeasPrefix + tagID + ":")
	var ideaIDs []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			ideaIDs = append(ideaIDs, key[len(prefix):])
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("get ideas for tag: %w", err)
	}

	return ideaIDs, nil
}

// GetTagsForIdea returns full tag records for all tags linked to an idea.
func (s *Store) GetTagsForIdea(ctx context.Context, ideaID string) ([]*domain.Tag, error) {
	tagIDs, err := s.GetTagIDsForIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	tags := make([]*domain.Tag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		tag, err := s.GetTag(ctx, tagID)
		if err != nil {
			if errors.Is(err, ErrTagNotFound) {
				continue // Skip dangling links
			}
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

// ListAllIdeas iterates every idea in the store. Used for search reindexing.
func (s *Store) ListAllIdeas(_ context.Context) ([]*domain.Idea, error) {
	prefix := []byte(ideaPrefix)
	var ideas []*domain.Idea

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var idea domain.Idea
				if unmarshalErr := json.Unmarshal(val, &idea); unmarshalErr != nil {
					return nil //nolint:nilerr // intentionally skip malformed entries
				}
				ideas = append(ideas, &idea)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list all ideas: %w", err)
	}

	return ideas, nil
}

// indexIdea pushes an idea into the search index, best effort.
func (s *Store) indexIdea(ctx context.Context, idea *domain.Idea) {
	if s.searchIndexer == nil {
		return
	}
	if err := s.searchIndexer.IndexIdea(ctx, idea); err != nil && s.logger != nil {
		s.logger.Warn("failed to index idea", "idea_id", idea.ID, "error", err)
	}
}

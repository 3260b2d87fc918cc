// Package sse implements Server-Sent Events for real-time idea updates and event broadcasting.
package sse

import (
	"time"

	"github.com/ideavaultapp/ideavault-server/internal/domain"
)

// In IdeaVault we primarily use SSE for server-to-client communication,
// since most interactions follow a request/response pattern. Clients
// treat events as re-fetch hints: the payload carries enough to update
// a list in place, but a full refresh is always safe.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventIdeaCreated represents an idea creation event.
	EventIdeaCreated EventType = "idea.created"
	// EventIdeaUpdated represents an idea update event.
	EventIdeaUpdated EventType = "idea.updated"
	// EventIdeaDeleted represents an idea deletion event.
	EventIdeaDeleted EventType = "idea.deleted"
	// EventIdeaStateChanged represents an idea lifecycle state change.
	EventIdeaStateChanged EventType = "idea.state_changed"
	// EventIdeaRanked represents an idea receiving or replacing its ranking.
	EventIdeaRanked EventType = "idea.ranked"

	// EventIdeaTagAdded represents a tag being linked to an idea.
	EventIdeaTagAdded EventType = "idea.tag_added"
	// EventIdeaTagRemoved represents a tag being unlinked from an idea.
	EventIdeaTagRemoved EventType = "idea.tag_removed"

	// EventTagCreated represents a tag creation event.
	EventTagCreated EventType = "tag.created"
	// EventTagUpdated represents a tag update event.
	EventTagUpdated EventType = "tag.updated"
	// EventTagDeleted represents a tag deletion event.
	EventTagDeleted EventType = "tag.deleted"

	// EventProfileUpdated represents a profile change on the user's account.
	EventProfileUpdated EventType = "profile.updated"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"` // Event-specific data as JSON object
	Type      EventType `json:"type"`

	// Filtering field for multi-user support.
	// When set, events are only delivered to clients of that user.
	// Empty string means "broadcast to all".
	UserID string `json:"-"` // Not sent to client
}

// IdeaEventData is the data payload for idea events.
type IdeaEventData struct {
	Idea *domain.Idea `json:"idea"`
}

// IdeaDeletedEventData is the data payload for idea delete events.
type IdeaDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	IdeaID    string    `json:"idea_id"`
}

// IdeaTagEventData is the data payload for idea tag link/unlink events.
type IdeaTagEventData struct {
	IdeaID string `json:"idea_id"`
	TagID  string `json:"tag_id"`
}

// TagEventData is the data payload for tag events.
type TagEventData struct {
	Tag *domain.Tag `json:"tag"`
}

// TagDeletedEventData is the data payload for tag delete events.
// LinkedIdeaIDs tells clients which ideas lost the tag.
type TagDeletedEventData struct {
	DeletedAt     time.Time `json:"deleted_at"`
	TagID         string    `json:"tag_id"`
	LinkedIdeaIDs []string  `json:"linked_idea_ids,omitempty"`
}

// ProfileUpdatedEventData is the data payload for profile update events.
type ProfileUpdatedEventData struct {
	User *domain.User `json:"user"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewIdeaCreatedEvent creates an idea.created event scoped to the owner.
func NewIdeaCreatedEvent(idea *domain.Idea) Event {
	return Event{
		Type:      EventIdeaCreated,
		Data:      IdeaEventData{Idea: idea},
		Timestamp: time.Now(),
		UserID:    idea.OwnerID,
	}
}

// NewIdeaUpdatedEvent creates an idea.updated event scoped to the owner.
func NewIdeaUpdatedEvent(idea *domain.Idea) Event {
	return Event{
		Type:      EventIdeaUpdated,
		Data:      IdeaEventData{Idea: idea},
		Timestamp: time.Now(),
		UserID:    idea.OwnerID,
	}
}

// NewIdeaDeletedEvent creates an idea.deleted event scoped to the owner.
func NewIdeaDeletedEvent(ownerID, ideaID string) Event {
	return Event{
		Type: EventIdeaDeleted,
		Data: IdeaDeletedEventData{
			IdeaID:    ideaID,
			DeletedAt: time.Now(),
		},
		Timestamp: time.Now(),
		UserID:    ownerID,
	}
}

// NewIdeaStateChangedEvent creates an idea.state_changed event scoped to the owner.
func NewIdeaStateChangedEvent(idea *domain.Idea) Event {
	return Event{
		Type:      EventIdeaStateChanged,
		Data:      IdeaEventData{Idea: idea},
		Timestamp: time.Now(),
		UserID:    idea.OwnerID,
	}
}

// NewIdeaRankedEvent creates an idea.ranked event scoped to the owner.
func NewIdeaRankedEvent(idea *domain.Idea) Event {
	return Event{
		Type:      EventIdeaRanked,
		Data:      IdeaEventData{Idea: idea},
		Timestamp: time.Now(),
		UserID:    idea.OwnerID,
	}
}

// NewIdeaTagAddedEvent creates an idea.tag_added event scoped to the owner.
func NewIdeaTagAddedEvent(ownerID, ideaID, tagID string) Event {
	return Event{
		Type: EventIdeaTagAdded,
		Data: IdeaTagEventData{
			IdeaID: ideaID,
			TagID:  tagID,
		},
		Timestamp: time.Now(),
		UserID:    ownerID,
	}
}

// NewIdeaTagRemovedEvent creates an idea.tag_removed event scoped to the owner.
func NewIdeaTagRemovedEvent(ownerID, ideaID, tagID string) Event {
	return Event{
		Type: EventIdeaTagRemoved,
		Data: IdeaTagEventData{
			IdeaID: ideaID,
			TagID:  tagID,
		},
		Timestamp: time.Now(),
		UserID:    ownerID,
	}
}

// NewTagCreatedEvent creates a tag.created event scoped to the owner.
func NewTagCreatedEvent(tag *domain.Tag) Event {
	return Event{
		Type:      EventTagCreated,
		Data:      TagEventData{Tag: tag},
		Timestamp: time.Now(),
		UserID:    tag.OwnerID,
	}
}

// NewTagUpdatedEvent creates a tag.updated event scoped to the owner.
func NewTagUpdatedEvent(tag *domain.Tag) Event {
	return Event{
		Type:      EventTagUpdated,
		Data:      TagEventData{Tag: tag},
		Timestamp: time.Now(),
		UserID:    tag.OwnerID,
	}
}

// NewTagDeletedEvent creates a tag.deleted event scoped to the owner.
func NewTagDeletedEvent(ownerID, tagID string, linkedIdeaIDs []string) Event {
	return Event{
		Type: EventTagDeleted,
		Data: TagDeletedEventData{
			TagID:         tagID,
			LinkedIdeaIDs: linkedIdeaIDs,
			DeletedAt:     time.Now(),
		},
		Timestamp: time.Now(),
		UserID:    ownerID,
	}
}

// NewProfileUpdatedEvent creates a profile.updated event scoped to the user.
func NewProfileUpdatedEvent(user *domain.User) Event {
	return Event{
		Type:      EventProfileUpdated,
		Data:      ProfileUpdatedEventData{User: user},
		Timestamp: time.Now(),
		UserID:    user.ID,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}

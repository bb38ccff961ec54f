package update

import (
	"github.com/google/uuid"

	"github.com/open-collab/tablesync/internal/model"
)

// Message is the 4-tuple spec.md §3 defines: a baseline version, the
// dependent-group the sender's update belongs to, the update itself, and a
// globally unique message ID.
type Message struct {
	Version   model.Version
	GroupID   model.GroupID
	Update    Update
	MessageID model.MessageID
}

// NewMessageID mints a fresh, globally unique MessageID, the way the
// teacher's internal/storage/uuid_helpers.go wraps google/uuid for storage
// identifiers.
func NewMessageID() model.MessageID {
	return model.MessageID(uuid.NewString())
}

// NewGroupID mints a fresh GroupID. Used both for a brand-new client and for
// every group-ID rotation spec.md §4.4 requires (on sync-ahead and on
// accepted).
func NewGroupID() model.GroupID {
	return model.GroupID(uuid.NewString())
}

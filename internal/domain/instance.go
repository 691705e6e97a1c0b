package domain

import (
	"time"

	"github.com/google/uuid"
)

// RodPartSlot identifies a sub-part slot on a composite fishing rod.
type RodPartSlot string

const (
	RodSlotReel RodPartSlot = "reel"
	RodSlotLine RodPartSlot = "line"
	RodSlotHook RodPartSlot = "hook"
)

// ValidRodPartSlot reports whether the slot name is one of the known rod slots.
func ValidRodPartSlot(slot RodPartSlot) bool {
	switch slot {
	case RodSlotReel, RodSlotLine, RodSlotHook:
		return true
	}
	return false
}

// ItemInstance is an owned copy of a catalog item. Stackable items keep a
// quantity on a single row; durable items carry per-copy durability, XP and
// repair state. The catalog definition is referenced by ID, never embedded.
type ItemInstance struct {
	ID            uuid.UUID                 `json:"instance_id"`
	OwnerID       string                    `json:"owner_id"`
	CatalogItemID int                       `json:"item_id"`
	Quantity      int                       `json:"quantity"`
	Durability    *int                      `json:"durability,omitempty"`
	Experience    *int                      `json:"experience,omitempty"`
	Level         *int                      `json:"level,omitempty"`
	RepairCount   *int                      `json:"repair_count,omitempty"`
	Equipped      bool                      `json:"equipped"`
	EquippedParts map[RodPartSlot]uuid.UUID `json:"equipped_parts,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

// OwnedBy reports whether the instance currently belongs to the given user.
func (i *ItemInstance) OwnedBy(userID string) bool {
	return i.OwnerID == userID
}

// InventoryEntry joins an instance with a snapshot of its catalog definition
// for read views. The snapshot is a copy; mutating it never touches the catalog.
type InventoryEntry struct {
	Instance ItemInstance `json:"instance"`
	Item     CatalogItem  `json:"item"`
}

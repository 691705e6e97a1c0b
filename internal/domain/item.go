package domain

import "time"

// Category classifies a catalog item and decides its equip and stacking rules.
type Category string

const (
	CategoryNameplate    Category = "nameplate"
	CategoryListingColor Category = "listing_color"
	CategoryAccent       Category = "accent"
	CategoryBadge        Category = "badge"
	CategoryCase         Category = "case"
	CategoryFishingRod   Category = "fishing_rod"
	CategoryRodPart      Category = "rod_part"
)

// Stackable reports whether copies of this category are tracked as a quantity
// on a single instance row instead of one row per copy.
func (c Category) Stackable() bool {
	return c == CategoryCase
}

// Exclusive reports whether at most one item of this category may be equipped.
func (c Category) Exclusive() bool {
	switch c {
	case CategoryNameplate, CategoryListingColor, CategoryAccent:
		return true
	}
	return false
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryNameplate, CategoryListingColor, CategoryAccent,
		CategoryBadge, CategoryCase, CategoryFishingRod, CategoryRodPart:
		return true
	}
	return false
}

// Rarity is the ordered rarity scale for catalog items
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Rank returns the position of the rarity on the ordered scale, common being 0.
// Unknown rarities rank as common.
func (r Rarity) Rank() int {
	switch r {
	case RarityUncommon:
		return 1
	case RarityRare:
		return 2
	case RarityEpic:
		return 3
	case RarityLegendary:
		return 4
	}
	return 0
}

// Valid reports whether r is a known rarity.
func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

// RodModifiers holds the fishing-rod specific numeric attributes of a catalog item.
type RodModifiers struct {
	Multiplier      float64 `json:"multiplier"`
	BonusLootChance float64 `json:"bonus_loot_chance"`
	MaxDurability   int     `json:"max_durability"`
	MaxRepairs      int     `json:"max_repairs"`
}

// CatalogItem is the immutable definition of an ownable item. Per-user state
// lives on ItemInstance, which references the definition by ID only.
type CatalogItem struct {
	ID           int           `json:"item_id"`
	Name         string        `json:"name"`
	Category     Category      `json:"category"`
	Price        int           `json:"price"`
	Rarity       Rarity        `json:"rarity"`
	Active       bool          `json:"active"`
	ExpiresAt    *time.Time    `json:"expires_at,omitempty"`
	RequiredRole *string       `json:"required_role,omitempty"`
	IsCase       bool          `json:"is_case"`
	Rod          *RodModifiers `json:"rod,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Purchasable reports whether the item can currently be bought: it must be
// active and not past its expiry timestamp.
func (i *CatalogItem) Purchasable(now time.Time) bool {
	if !i.Active {
		return false
	}
	if i.ExpiresAt != nil && now.After(*i.ExpiresAt) {
		return false
	}
	return true
}

// CaseContent is one row of a case's loot table: the contained item and its
// drop-rate weight on the 0-100 scale.
type CaseContent struct {
	CaseItemID int     `json:"case_item_id"`
	ItemID     int     `json:"item_id"`
	DropRate   float64 `json:"drop_rate"`
}

// DropRateTarget is the required sum of drop rates over a case's contents.
const DropRateTarget = 100.0

// DropRateTolerance is the allowed deviation of the drop-rate sum from the target.
const DropRateTolerance = 0.01

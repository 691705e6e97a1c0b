package domain

import "time"

// RollResult is the settled outcome of opening a case. The raw roll value is
// only surfaced to privileged callers; use PublicView for everyone else.
type RollResult struct {
	CaseItemID          int         `json:"case_item_id"`
	CaseName            string      `json:"case_name"`
	WonItem             CatalogItem `json:"won_item"`
	RollValue           float64     `json:"roll_value"`
	RolledAt            time.Time   `json:"rolled_at"`
	AlreadyOwned        bool        `json:"already_owned"`
	CompensationAwarded bool        `json:"compensation_awarded"`
	CompensationCredits int64       `json:"compensation_credits,omitempty"`
	CompensationXP      int         `json:"compensation_xp,omitempty"`
}

// PublicRollResult is the roll outcome without the raw draw value.
type PublicRollResult struct {
	CaseItemID          int         `json:"case_item_id"`
	CaseName            string      `json:"case_name"`
	WonItem             CatalogItem `json:"won_item"`
	RolledAt            time.Time   `json:"rolled_at"`
	AlreadyOwned        bool        `json:"already_owned"`
	CompensationAwarded bool        `json:"compensation_awarded"`
	CompensationCredits int64       `json:"compensation_credits,omitempty"`
	CompensationXP      int         `json:"compensation_xp,omitempty"`
}

// PublicView strips the raw roll value from the result.
func (r *RollResult) PublicView() PublicRollResult {
	return PublicRollResult{
		CaseItemID:          r.CaseItemID,
		CaseName:            r.CaseName,
		WonItem:             r.WonItem,
		RolledAt:            r.RolledAt,
		AlreadyOwned:        r.AlreadyOwned,
		CompensationAwarded: r.CompensationAwarded,
		CompensationCredits: r.CompensationCredits,
		CompensationXP:      r.CompensationXP,
	}
}

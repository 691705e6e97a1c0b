package domain

import (
	"fmt"
	"math"
	"sort"
)

// SortCaseContents orders a loot table for resolution: descending drop rate,
// ties broken by ascending item id. The order is total, so equal tables always
// resolve a given roll to the same item.
func SortCaseContents(contents []CaseContent) {
	sort.SliceStable(contents, func(i, j int) bool {
		if contents[i].DropRate != contents[j].DropRate {
			return contents[i].DropRate > contents[j].DropRate
		}
		return contents[i].ItemID < contents[j].ItemID
	})
}

// ResolveRoll walks the sorted loot table accumulating drop rates and returns
// the item id of the first entry whose cumulative rate exceeds the roll.
// A roll exactly on a boundary belongs to the next entry. The boolean is false
// only for an empty table.
func ResolveRoll(contents []CaseContent, roll float64) (int, bool) {
	if len(contents) == 0 {
		return 0, false
	}
	cumulative := 0.0
	for _, c := range contents {
		cumulative += c.DropRate
		if roll < cumulative {
			return c.ItemID, true
		}
	}
	// Float accumulation can land a hair under the target; the roll belongs
	// to the last entry.
	return contents[len(contents)-1].ItemID, true
}

// ValidateCaseContents checks a case's loot table: every drop rate in (0,100],
// rates summing to DropRateTarget within DropRateTolerance, and every
// referenced item present and active in the given catalog snapshot.
func ValidateCaseContents(caseItemID int, contents []CaseContent, items map[int]CatalogItem) error {
	if len(contents) == 0 {
		return &CaseContentsError{CaseItemID: caseItemID, Reason: "loot table is empty"}
	}

	sum := 0.0
	seen := make(map[int]bool, len(contents))
	for _, c := range contents {
		if c.DropRate <= 0 || c.DropRate > DropRateTarget {
			return &CaseContentsError{
				CaseItemID: caseItemID,
				Reason:     fmt.Sprintf("drop rate %.2f for item %d out of range", c.DropRate, c.ItemID),
			}
		}
		if seen[c.ItemID] {
			return &CaseContentsError{
				CaseItemID: caseItemID,
				Reason:     fmt.Sprintf("item %d listed twice", c.ItemID),
			}
		}
		seen[c.ItemID] = true

		item, ok := items[c.ItemID]
		if !ok {
			return &CaseContentsError{
				CaseItemID: caseItemID,
				Reason:     fmt.Sprintf("item %d does not exist", c.ItemID),
			}
		}
		if !item.Active {
			return &CaseContentsError{
				CaseItemID: caseItemID,
				Reason:     fmt.Sprintf("item %d is inactive", c.ItemID),
			}
		}
		sum += c.DropRate
	}

	if math.Abs(sum-DropRateTarget) > DropRateTolerance {
		return &CaseContentsError{
			CaseItemID: caseItemID,
			Reason:     fmt.Sprintf("drop rates sum to %.4f, want %.2f", sum, DropRateTarget),
		}
	}
	return nil
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/logger"
)

// querier abstracts pgxpool.Pool and pgx.Tx so query helpers work in and out
// of transactions.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SafeRollback rolls back a transaction and logs any error that isn't ErrTxClosed
func SafeRollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
	}
}

// Tx wraps a pgx transaction and implements the repository transaction
// interfaces. All repositories share this type; each BeginTx returns it
// behind the interface the service needs.
type Tx struct {
	tx pgx.Tx
}

func beginTx(ctx context.Context, db *pgxpool.Pool) (*Tx, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Commit commits the transaction
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return errors.New(domain.ErrMsgTxClosed)
		}
		return err
	}
	return nil
}

// parseUserUUID parses a user ID string to uuid.UUID with consistent error message.
func parseUserUUID(userID string) (uuid.UUID, error) {
	u, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id: %w", err)
	}
	return u, nil
}

// isLockTimeout reports whether the error is a Postgres lock_not_available
// failure (lock_timeout expired or NOWAIT could not acquire).
func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 55P03 lock_not_available
		return pgErr.Code == "55P03"
	}
	return false
}

// ---- Catalog item helpers ----

const catalogItemColumns = `item_id, name, category, price, rarity, active, expires_at, required_role,
	is_case, rod_multiplier, rod_bonus_loot_chance, rod_max_durability, rod_max_repairs, created_at, updated_at`

func scanCatalogItem(row pgx.Row) (*domain.CatalogItem, error) {
	var (
		item            domain.CatalogItem
		multiplier      *float64
		bonusLootChance *float64
		maxDurability   *int
		maxRepairs      *int
	)
	err := row.Scan(
		&item.ID, &item.Name, &item.Category, &item.Price, &item.Rarity, &item.Active,
		&item.ExpiresAt, &item.RequiredRole, &item.IsCase,
		&multiplier, &bonusLootChance, &maxDurability, &maxRepairs,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if multiplier != nil || bonusLootChance != nil || maxDurability != nil || maxRepairs != nil {
		item.Rod = &domain.RodModifiers{}
		if multiplier != nil {
			item.Rod.Multiplier = *multiplier
		}
		if bonusLootChance != nil {
			item.Rod.BonusLootChance = *bonusLootChance
		}
		if maxDurability != nil {
			item.Rod.MaxDurability = *maxDurability
		}
		if maxRepairs != nil {
			item.Rod.MaxRepairs = *maxRepairs
		}
	}
	return &item, nil
}

func getCatalogItem(ctx context.Context, q querier, itemID int) (*domain.CatalogItem, error) {
	row := q.QueryRow(ctx, `SELECT `+catalogItemColumns+` FROM item_catalog WHERE item_id = $1`, itemID)
	item, err := scanCatalogItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get catalog item: %w", err)
	}
	return item, nil
}

func getCaseContents(ctx context.Context, q querier, caseItemID int) ([]domain.CaseContent, error) {
	rows, err := q.Query(ctx,
		`SELECT case_item_id, item_id, drop_rate FROM case_contents WHERE case_item_id = $1 ORDER BY item_id`,
		caseItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query case contents: %w", err)
	}
	defer rows.Close()

	var contents []domain.CaseContent
	for rows.Next() {
		var c domain.CaseContent
		if err := rows.Scan(&c.CaseItemID, &c.ItemID, &c.DropRate); err != nil {
			return nil, fmt.Errorf("failed to scan case content: %w", err)
		}
		contents = append(contents, c)
	}
	return contents, rows.Err()
}

// ---- Item instance helpers ----

const instanceColumns = `instance_id, owner_id, item_id, quantity, durability, experience, level,
	repair_count, equipped, equipped_parts, created_at, updated_at`

func scanInstance(row pgx.Row) (*domain.ItemInstance, error) {
	var (
		inst     domain.ItemInstance
		ownerID  uuid.UUID
		partsRaw []byte
	)
	err := row.Scan(
		&inst.ID, &ownerID, &inst.CatalogItemID, &inst.Quantity,
		&inst.Durability, &inst.Experience, &inst.Level, &inst.RepairCount,
		&inst.Equipped, &partsRaw, &inst.CreatedAt, &inst.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inst.OwnerID = ownerID.String()
	if len(partsRaw) > 0 {
		if err := json.Unmarshal(partsRaw, &inst.EquippedParts); err != nil {
			return nil, fmt.Errorf("failed to decode equipped parts: %w", err)
		}
	}
	return &inst, nil
}

func marshalParts(parts map[domain.RodPartSlot]uuid.UUID) ([]byte, error) {
	if len(parts) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(parts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode equipped parts: %w", err)
	}
	return raw, nil
}

func getInstance(ctx context.Context, q querier, instanceID uuid.UUID, forUpdate bool) (*domain.ItemInstance, error) {
	query := `SELECT ` + instanceColumns + ` FROM item_instances WHERE instance_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	inst, err := scanInstance(q.QueryRow(ctx, query, instanceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstanceNotFound
		}
		if isLockTimeout(err) {
			return nil, domain.ErrLockTimeout
		}
		return nil, fmt.Errorf("failed to get item instance: %w", err)
	}
	return inst, nil
}

func getInstancesByOwner(ctx context.Context, q querier, ownerID string) ([]domain.ItemInstance, error) {
	ownerUUID, err := parseUserUUID(ownerID)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx,
		`SELECT `+instanceColumns+` FROM item_instances WHERE owner_id = $1 ORDER BY created_at`,
		ownerUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to query instances: %w", err)
	}
	defer rows.Close()

	var instances []domain.ItemInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item instance: %w", err)
		}
		instances = append(instances, *inst)
	}
	return instances, rows.Err()
}

func insertInstance(ctx context.Context, q querier, inst *domain.ItemInstance) error {
	ownerUUID, err := parseUserUUID(inst.OwnerID)
	if err != nil {
		return err
	}
	partsRaw, err := marshalParts(inst.EquippedParts)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	inst.CreatedAt = now
	inst.UpdatedAt = now
	_, err = q.Exec(ctx, `
		INSERT INTO item_instances (instance_id, owner_id, item_id, quantity, durability, experience,
			level, repair_count, equipped, equipped_parts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		inst.ID, ownerUUID, inst.CatalogItemID, inst.Quantity, inst.Durability, inst.Experience,
		inst.Level, inst.RepairCount, inst.Equipped, partsRaw, inst.CreatedAt, inst.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert item instance: %w", err)
	}
	return nil
}

func updateInstance(ctx context.Context, q querier, inst *domain.ItemInstance) error {
	ownerUUID, err := parseUserUUID(inst.OwnerID)
	if err != nil {
		return err
	}
	partsRaw, err := marshalParts(inst.EquippedParts)
	if err != nil {
		return err
	}
	inst.UpdatedAt = time.Now().UTC()
	tag, err := q.Exec(ctx, `
		UPDATE item_instances
		SET owner_id = $2, quantity = $3, durability = $4, experience = $5, level = $6,
			repair_count = $7, equipped = $8, equipped_parts = $9, updated_at = $10
		WHERE instance_id = $1`,
		inst.ID, ownerUUID, inst.Quantity, inst.Durability, inst.Experience, inst.Level,
		inst.RepairCount, inst.Equipped, partsRaw, inst.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update item instance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInstanceNotFound
	}
	return nil
}

package postgres_adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresContractRepository реализует LocalContractStore
type PostgresContractRepository struct {
	pool *pgxpool.Pool
}

var _ port.LocalContractStore = (*PostgresContractRepository)(nil)

func NewPostgresContractRepository(pool *pgxpool.Pool) (*PostgresContractRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresContractRepository{pool: pool}, nil
}

const contractColumns = `id, tenant_name, property_name, room_name, rent_amount, deposit_amount,
	start_date, end_date, status, remote_id, remote_synced, last_remote_sync, created_at`

// ListAll возвращает договоры в порядке создания
func (r *PostgresContractRepository) ListAll(ctx context.Context) ([]domain.LocalContract, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresContractRepository",
		"method":    "ListAll",
	})

	query := `SELECT ` + contractColumns + ` FROM contracts ORDER BY seq`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		repoLogger.Error("Failed to query contracts", err, nil)
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}

	contracts, err := pgx.CollectRows(rows, scanContract)
	if err != nil {
		repoLogger.Error("Failed to scan contracts", err, nil)
		return nil, fmt.Errorf("failed to scan contracts: %w", err)
	}

	repoLogger.Debug("Contracts loaded", port.Fields{"count": len(contracts)})
	return contracts, nil
}

func scanContract(row pgx.CollectableRow) (domain.LocalContract, error) {
	var c domain.LocalContract
	var status string
	err := row.Scan(
		&c.ID,
		&c.TenantName,
		&c.PropertyName,
		&c.RoomName,
		&c.RentAmount,
		&c.DepositAmount,
		&c.StartDate,
		&c.EndDate,
		&status,
		&c.RemoteID,
		&c.RemoteSynced,
		&c.LastRemoteSync,
		&c.CreatedAt,
	)
	c.Status = domain.ContractStatus(status)
	return c, err
}

// Create сохраняет договор; пустой ID заполняется новым UUID
func (r *PostgresContractRepository) Create(ctx context.Context, c *domain.LocalContract) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PostgresContractRepository",
		"method":      "Create",
		"contract_id": c.ID,
	})

	query := `
		INSERT INTO contracts (` + contractColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.TenantName,
		c.PropertyName,
		c.RoomName,
		c.RentAmount,
		c.DepositAmount,
		c.StartDate,
		c.EndDate,
		string(c.Status),
		c.RemoteID,
		c.RemoteSynced,
		c.LastRemoteSync,
		c.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			repoLogger.Warn("Contract violates a unique constraint", port.Fields{"constraint": pgErr.ConstraintName})
		} else {
			repoLogger.Error("Failed to create contract", err, nil)
		}
		return fmt.Errorf("failed to create contract: %w", err)
	}

	repoLogger.Debug("Contract created", nil)
	return nil
}

// Update меняет только заданные поля
func (r *PostgresContractRepository) Update(ctx context.Context, id string, u domain.LocalContractUpdate) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PostgresContractRepository",
		"method":      "Update",
		"contract_id": id,
	})

	query := `
		UPDATE contracts
		SET
			end_date = COALESCE($2::date, end_date),
			remote_id = COALESCE($3::text, remote_id),
			last_remote_sync = COALESCE($4::timestamptz, last_remote_sync)
		WHERE id = $1
	`
	cmdTag, err := r.pool.Exec(ctx, query, id, u.EndDate, u.RemoteID, u.LastRemoteSync)
	if err != nil {
		repoLogger.Error("Failed to update contract", err, nil)
		return fmt.Errorf("failed to update contract: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		repoLogger.Warn("Update failed: contract not found", nil)
		return domain.ErrContractNotFound
	}

	repoLogger.Debug("Contract updated", nil)
	return nil
}

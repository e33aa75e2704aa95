package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/pkg/errors"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

// MoleculeRecord is one stored molecule: the structural document as JSONB
// plus denormalized columns for listing without deserialization.
type MoleculeRecord struct {
	ID          string
	Name        string
	SMILES      string
	Document    chem.MoleculeDocument
	AtomCount   int
	BondCount   int
	TotalCharge int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MoleculeRepository persists molecules in PostgreSQL.
type MoleculeRepository struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewMoleculeRepository constructs a ready-to-use MoleculeRepository.
func NewMoleculeRepository(pool *pgxpool.Pool, log logging.Logger) *MoleculeRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &MoleculeRepository{pool: pool, log: log}
}

// Save upserts one molecule keyed by its id.
func (r *MoleculeRepository) Save(ctx context.Context, rec *MoleculeRecord) error {
	docJSON, err := json.Marshal(rec.Document)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to serialize molecule document")
	}

	now := time.Now().UTC()
	_, err = r.pool.Exec(ctx, `
		INSERT INTO molecules (id, name, smiles, document, atom_count, bond_count, total_charge, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			smiles = EXCLUDED.smiles,
			document = EXCLUDED.document,
			atom_count = EXCLUDED.atom_count,
			bond_count = EXCLUDED.bond_count,
			total_charge = EXCLUDED.total_charge,
			updated_at = EXCLUDED.updated_at`,
		rec.ID, rec.Name, rec.SMILES, docJSON,
		rec.AtomCount, rec.BondCount, rec.TotalCharge, now,
	)
	if err != nil {
		r.log.Error("molecule save failed", logging.String("id", rec.ID), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save molecule")
	}
	return nil
}

// Get loads one molecule by id.
func (r *MoleculeRepository) Get(ctx context.Context, id string) (*MoleculeRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, smiles, document, atom_count, bond_count, total_charge, created_at, updated_at
		FROM molecules WHERE id = $1`, id)

	rec, err := scanMolecule(row)
	if err == pgx.ErrNoRows {
		return nil, errors.Newf(errors.ErrCodeNotFound, "molecule %q not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load molecule")
	}
	return rec, nil
}

// List returns molecules ordered by creation time, newest first.
func (r *MoleculeRepository) List(ctx context.Context, limit, offset int) ([]*MoleculeRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, smiles, document, atom_count, bond_count, total_charge, created_at, updated_at
		FROM molecules ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list molecules")
	}
	defer rows.Close()

	var records []*MoleculeRecord
	for rows.Next() {
		rec, err := scanMolecule(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan molecule row")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "molecule listing failed")
	}
	return records, nil
}

// Delete removes one molecule by id.  Deleting a missing molecule is an error
// so callers can distinguish no-ops.
func (r *MoleculeRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM molecules WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete molecule")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeNotFound, "molecule %q not found", id)
	}
	return nil
}

// scanMolecule reads one molecule row from either a Row or Rows.
func scanMolecule(row pgx.Row) (*MoleculeRecord, error) {
	rec := &MoleculeRecord{}
	var docJSON []byte
	err := row.Scan(&rec.ID, &rec.Name, &rec.SMILES, &docJSON,
		&rec.AtomCount, &rec.BondCount, &rec.TotalCharge, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(docJSON, &rec.Document); err != nil {
		return nil, err
	}
	return rec, nil
}

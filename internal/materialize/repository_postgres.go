package materialize

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save writes the whole document tree in one transaction. Any failed
// insert rolls back everything; a half-written catalog must never persist.
func (r *PostgresRepository) Save(ctx context.Context, doc *Document) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO catalog_documents (id, name, created_at)
		VALUES ($1, $2, $3)
	`, doc.ID, doc.Name, doc.CreatedAt)
	if err != nil {
		return err
	}

	for _, section := range doc.Sections {
		_, err = tx.Exec(ctx, `
			INSERT INTO catalog_sections (id, document_id, name, position)
			VALUES ($1, $2, $3, $4)
		`, section.ID, doc.ID, section.Name, section.Position)
		if err != nil {
			return err
		}

		for _, entry := range section.Entries {
			_, err = tx.Exec(ctx, `
				INSERT INTO catalog_entries (id, section_id, name, description, price, tags)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, entry.ID, section.ID, entry.Name, entry.Description, entry.Price, entry.Tags)
			if err != nil {
				return err
			}

			if entry.Asset != nil {
				_, err = tx.Exec(ctx, `
					INSERT INTO catalog_asset_refs (id, entry_id, asset_id, filename, url)
					VALUES ($1, $2, $3, $4, $5)
				`, entry.Asset.ID, entry.ID, entry.Asset.AssetID, entry.Asset.Filename, entry.Asset.URL)
				if err != nil {
					return err
				}
			}
		}
	}

	return tx.Commit(ctx)
}

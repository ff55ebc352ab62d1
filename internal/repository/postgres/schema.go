package postgres

import (
	"context"
	"database/sql"

	"toolshed-backend/internal/repository"

	"github.com/lib/pq"
)

type schemaInspector struct {
	db *sql.DB
}

func NewSchemaInspector(db *sql.DB) repository.SchemaInspector {
	return &schemaInspector{db: db}
}

// MissingColumns returns the subset of columns that table does not have.
func (p *schemaInspector) MissingColumns(ctx context.Context, table string, columns ...string) ([]string, error) {
	query := `SELECT column_name FROM information_schema.columns
	          WHERE table_schema = current_schema() AND table_name = $1 AND column_name = ANY($2)`
	rows, err := p.db.QueryContext(ctx, query, table, pq.Array(columns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	present := make(map[string]bool, len(columns))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, c := range columns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing, nil
}

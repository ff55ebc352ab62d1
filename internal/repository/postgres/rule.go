package postgres

import (
	"context"
	"database/sql"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/repository"
)

type ruleRepository struct {
	db *sql.DB
}

func NewRuleRepository(db *sql.DB) repository.RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) ListEnabled(ctx context.Context) ([]domain.AutoApprovalRule, error) {
	query := `SELECT id, name, COALESCE(condition, ''), enabled, created_on FROM auto_approval_rules WHERE enabled = TRUE ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []domain.AutoApprovalRule
	for rows.Next() {
		var rule domain.AutoApprovalRule
		if err := rows.Scan(&rule.ID, &rule.Name, &rule.Condition, &rule.Enabled, &rule.CreatedOn); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

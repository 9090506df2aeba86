package repository

import (
	"context"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// RuleRepository loads the status progression reference data. The table is
// seeded by migrations and read once at startup; it is not runtime-editable.
type RuleRepository interface {
	LoadRules(ctx context.Context) (domain.RuleSet, error)
}

type ruleRepository struct {
	db DBTX
}

// NewRuleRepository instantiates repository.
func NewRuleRepository(db DBTX) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) LoadRules(ctx context.Context) (domain.RuleSet, error) {
	const query = `SELECT current_status, allowed_next_status, can_reverse FROM status_progression_rules`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []domain.ProgressionRule
	for rows.Next() {
		var rule domain.ProgressionRule
		if err := rows.Scan(&rule.Current, &rule.Next, &rule.Reverse); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return domain.DefaultRules(), nil
	}
	return domain.NewRuleSet(rules), nil
}

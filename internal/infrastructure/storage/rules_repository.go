package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"newstracker/internal/domain"
	"newstracker/internal/matcher"
	"newstracker/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// RulesRepository loads active tracking rules from Postgres, joining
// each rule's owner profile for recipient and plan.
type RulesRepository struct {
	db         *sql.DB
	adminEmail string
}

var _ ports.RulesStore = (*RulesRepository)(nil)

// NewRulesRepository wires the database handle. adminEmail is the
// fallback recipient for rules whose owner has no email on file.
func NewRulesRepository(db *sql.DB, adminEmail string) *RulesRepository {
	return &RulesRepository{db: db, adminEmail: adminEmail}
}

// ActiveRules returns the enabled rules with normalized keywords.
// Rules whose keyword set normalizes to empty are dropped here.
func (r *RulesRepository) ActiveRules(ctx context.Context) ([]domain.Rule, error) {
	query, args, err := psql.
		Select("r.keywords", "r.reason", "p.email", "p.plan").
		From("news_tracking_rules r").
		LeftJoin("profiles p ON p.id = r.user_id").
		Where(sq.Eq{"r.is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build rules query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query active rules: %v: %w", err, domain.ErrStoreUnavailable)
	}
	defer rows.Close()

	var rules []domain.Rule
	for rows.Next() {
		var (
			rawKeywords sql.NullString
			reason      sql.NullString
			email       sql.NullString
			plan        sql.NullString
		)
		if err := rows.Scan(&rawKeywords, &reason, &email, &plan); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}

		keywords := matcher.NormalizeKeywords(rawKeywords.String)
		if len(keywords) == 0 {
			continue
		}

		recipient := email.String
		if recipient == "" {
			recipient = r.adminEmail
		}

		reasonText := reason.String
		if reasonText == "" {
			reasonText = "無特定理由"
		}

		rules = append(rules, domain.Rule{
			Keywords:  keywords,
			Reason:    reasonText,
			Recipient: recipient,
			Tier:      domain.ParseTier(plan.String),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %v: %w", err, domain.ErrStoreUnavailable)
	}

	return rules, nil
}

package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mettware/slack-notifier/internal/service/models/product"
)

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresProductRepository loads products with translations, variant options
// and a one-level parent reference.
type PostgresProductRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresProductRepository creates a new Postgres product repository.
func NewPostgresProductRepository(conn GenericConn) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// FetchByIDs retrieves the given products keyed by ID. Parents of variant
// products are loaded one level deep so that translation fallback can consult
// them without further queries.
func (r *PostgresProductRepository) FetchByIDs(
	ctx context.Context,
	ids []string,
) (map[string]*product.Product, error) {
	result := make(map[string]*product.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	products, err := r.fetchRows(ctx, ids)
	if err != nil {
		return nil, err
	}

	parentIDs := make([]string, 0)
	for _, p := range products {
		if p.ParentID != "" {
			if _, ok := products[p.ParentID]; !ok {
				parentIDs = append(parentIDs, p.ParentID)
			}
		}
	}

	parents := make(map[string]*product.Product)
	if len(parentIDs) > 0 {
		parents, err = r.fetchRows(ctx, parentIDs)
		if err != nil {
			return nil, err
		}
	}

	translationIDs := make([]string, 0, len(products)+len(parents))
	for id := range products {
		translationIDs = append(translationIDs, id)
	}
	for id := range parents {
		translationIDs = append(translationIDs, id)
	}

	if err := r.attachTranslations(ctx, products, parents, translationIDs); err != nil {
		return nil, err
	}

	if err := r.attachOptions(ctx, products, ids); err != nil {
		return nil, err
	}

	for _, p := range products {
		if p.ParentID == "" {
			continue
		}
		if parent, ok := parents[p.ParentID]; ok {
			p.Parent = parent
		} else if parent, ok := products[p.ParentID]; ok {
			p.Parent = parent
		}
	}

	for id, p := range products {
		result[id] = p
	}

	return result, nil
}

// fetchRows loads the bare product rows for the given IDs.
func (r *PostgresProductRepository) fetchRows(
	ctx context.Context,
	ids []string,
) (map[string]*product.Product, error) {
	query, args, err := r.sb.Select("id", "parent_id").
		From("products").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build product query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make(map[string]*product.Product)
	for rows.Next() {
		var (
			id       string
			parentID *string
		)
		if err := rows.Scan(&id, &parentID); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		p := &product.Product{
			ID:           id,
			Translations: make(map[string]string),
		}
		if parentID != nil {
			p.ParentID = *parentID
		}
		products[id] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return products, nil
}

// attachTranslations loads the name translations for products and parents.
func (r *PostgresProductRepository) attachTranslations(
	ctx context.Context,
	products map[string]*product.Product,
	parents map[string]*product.Product,
	ids []string,
) error {
	query, args, err := r.sb.Select("product_id", "language_id", "name").
		From("product_translations").
		Where(sq.Eq{"product_id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build translation query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query product translations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID, languageID, name string
		if err := rows.Scan(&productID, &languageID, &name); err != nil {
			return fmt.Errorf("failed to scan product translation: %w", err)
		}

		if p, ok := products[productID]; ok {
			p.Translations[languageID] = name
		}
		if p, ok := parents[productID]; ok {
			p.Translations[languageID] = name
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}

	return nil
}

// attachOptions loads the ordered variant options with their translations.
func (r *PostgresProductRepository) attachOptions(
	ctx context.Context,
	products map[string]*product.Product,
	ids []string,
) error {
	query, args, err := r.sb.Select("o.id", "o.product_id", "o.position", "t.language_id", "t.name").
		From("product_options o").
		Join("product_option_translations t ON t.option_id = o.id").
		Where(sq.Eq{"o.product_id": ids}).
		OrderBy("o.product_id", "o.position ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build option query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query product options: %w", err)
	}
	defer rows.Close()

	options := make(map[string]*product.Option)
	order := make(map[string][]string)
	for rows.Next() {
		var (
			optionID, productID string
			position            int
			languageID, name    string
		)
		if err := rows.Scan(&optionID, &productID, &position, &languageID, &name); err != nil {
			return fmt.Errorf("failed to scan product option: %w", err)
		}

		opt, ok := options[optionID]
		if !ok {
			opt = &product.Option{
				ID:           optionID,
				Position:     position,
				Translations: make(map[string]string),
			}
			options[optionID] = opt
			order[productID] = append(order[productID], optionID)
		}
		opt.Translations[languageID] = name
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}

	for productID, optionIDs := range order {
		p, ok := products[productID]
		if !ok {
			continue
		}
		for _, optionID := range optionIDs {
			p.Options = append(p.Options, *options[optionID])
		}
	}

	return nil
}

package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mettware/slack-notifier/internal/dal/interfaces/iproductrepo"
	"github.com/mettware/slack-notifier/internal/service/models/currency"
	"github.com/mettware/slack-notifier/internal/service/models/lineitem"
	"github.com/mettware/slack-notifier/internal/service/models/order"
)

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id                          string    `db:"id"`
	OrderNumber                 string    `db:"order_number"`
	AmountTotal                 float64   `db:"amount_total"`
	OrderDate                   time.Time `db:"order_date"`
	BillingFirstName            string    `db:"billing_first_name"`
	BillingLastName             string    `db:"billing_last_name"`
	BillingAdditionalAddrLine1  string    `db:"billing_additional_address_line1"`
	CustomerId                  *string   `db:"customer_id"`
	CustomerFirstName           *string   `db:"customer_first_name"`
	CustomerLastName            *string   `db:"customer_last_name"`
	CustomerLanguageId          *string   `db:"customer_language_id"`
	CurrencyIsoCode             string    `db:"iso_code"`
	CurrencySymbol              string    `db:"symbol"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() *order.Order {
	model := &order.Order{
		ID:          o.Id,
		OrderNumber: o.OrderNumber,
		AmountTotal: o.AmountTotal,
		OrderDate:   o.OrderDate,
		Currency: currency.Currency{
			ISOCode: o.CurrencyIsoCode,
			Symbol:  o.CurrencySymbol,
		},
		BillingAddress: order.BillingAddress{
			FirstName:              o.BillingFirstName,
			LastName:               o.BillingLastName,
			AdditionalAddressLine1: o.BillingAdditionalAddrLine1,
		},
	}

	if o.CustomerFirstName != nil || o.CustomerLastName != nil {
		oc := &order.OrderCustomer{}
		if o.CustomerFirstName != nil {
			oc.FirstName = *o.CustomerFirstName
		}
		if o.CustomerLastName != nil {
			oc.LastName = *o.CustomerLastName
		}
		if o.CustomerId != nil {
			oc.Customer = &order.Customer{ID: *o.CustomerId}
			if o.CustomerLanguageId != nil {
				oc.Customer.LanguageID = *o.CustomerLanguageId
			}
		}
		model.OrderCustomer = oc
	}

	return model
}

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresOrderRepository loads open order aggregates from the order store.
type PostgresOrderRepository struct {
	conn     GenericConn
	products iproductrepo.IProductRepository
	sb       sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository. The
// product repository hydrates the products referenced by order line items.
func NewPostgresOrderRepository(
	conn GenericConn,
	products iproductrepo.IProductRepository,
) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn:     conn,
		products: products,
		sb:       sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// FetchOpenOrders returns open orders sorted ascending by order date, fully
// hydrated with billing address, customer language, currency, transactions
// and line items including their products. A non-empty slackID restricts the
// result to orders billed to that Slack ID.
func (r *PostgresOrderRepository) FetchOpenOrders(
	ctx context.Context,
	slackID string,
) ([]order.Order, error) {
	builder := r.sb.Select(
		"o.id",
		"o.order_number",
		"o.amount_total",
		"o.order_date",
		"o.billing_first_name",
		"o.billing_last_name",
		"o.billing_additional_address_line1",
		"o.customer_id",
		"o.customer_first_name",
		"o.customer_last_name",
		"o.customer_language_id",
		"c.iso_code",
		"c.symbol",
	).
		From("orders o").
		Join("currencies c ON c.id = o.currency_id").
		Where(sq.Gt{"o.amount_total": 0}).
		Where(sq.Expr(
			"NOT EXISTS (SELECT 1 FROM order_transactions t WHERE t.order_id = o.id AND t.state_technical_name = ?)",
			order.TransactionStatePaid,
		)).
		OrderBy("o.order_date ASC")

	if slackID != "" {
		builder = builder.Where(sq.Eq{"o.billing_additional_address_line1": slackID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build order query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query open orders: %w", err)
	}
	defer rows.Close()

	orders := make([]order.Order, 0)
	index := make(map[string]int)
	for rows.Next() {
		var dal OrderDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderNumber,
			&dal.AmountTotal,
			&dal.OrderDate,
			&dal.BillingFirstName,
			&dal.BillingLastName,
			&dal.BillingAdditionalAddrLine1,
			&dal.CustomerId,
			&dal.CustomerFirstName,
			&dal.CustomerLastName,
			&dal.CustomerLanguageId,
			&dal.CurrencyIsoCode,
			&dal.CurrencySymbol,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		index[dal.Id] = len(orders)
		orders = append(orders, *dal.ToModel())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	orderIDs := make([]string, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}

	if err := r.attachTransactions(ctx, orders, index, orderIDs); err != nil {
		return nil, err
	}

	if err := r.attachLineItems(ctx, orders, index, orderIDs); err != nil {
		return nil, err
	}

	return orders, nil
}

// attachTransactions loads the payment transactions of the given orders.
func (r *PostgresOrderRepository) attachTransactions(
	ctx context.Context,
	orders []order.Order,
	index map[string]int,
	orderIDs []string,
) error {
	query, args, err := r.sb.Select("id", "order_id", "state_technical_name").
		From("order_transactions").
		Where(sq.Eq{"order_id": orderIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build transaction query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query order transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, orderID, state string
		if err := rows.Scan(&id, &orderID, &state); err != nil {
			return fmt.Errorf("failed to scan order transaction: %w", err)
		}

		if i, ok := index[orderID]; ok {
			orders[i].Transactions = append(orders[i].Transactions, order.Transaction{
				ID:                 id,
				StateTechnicalName: state,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}

	return nil
}

// attachLineItems loads the line items of the given orders and hydrates their
// products through the product repository.
func (r *PostgresOrderRepository) attachLineItems(
	ctx context.Context,
	orders []order.Order,
	index map[string]int,
	orderIDs []string,
) error {
	query, args, err := r.sb.Select(
		"id",
		"order_id",
		"product_id",
		"label",
		"quantity",
		"unit_price",
		"total_price",
		"position",
	).
		From("order_line_items").
		Where(sq.Eq{"order_id": orderIDs}).
		OrderBy("order_id", "position ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build line item query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query order line items: %w", err)
	}
	defer rows.Close()

	productIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for rows.Next() {
		var (
			dal       lineitem.LineItem
			productID *string
		)
		err := rows.Scan(
			&dal.ID,
			&dal.OrderID,
			&productID,
			&dal.Label,
			&dal.Quantity,
			&dal.UnitPrice,
			&dal.TotalPrice,
			&dal.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to scan order line item: %w", err)
		}

		if productID != nil {
			dal.ProductID = *productID
			if _, ok := seen[dal.ProductID]; !ok {
				seen[dal.ProductID] = struct{}{}
				productIDs = append(productIDs, dal.ProductID)
			}
		}

		if i, ok := index[dal.OrderID]; ok {
			orders[i].LineItems = append(orders[i].LineItems, dal)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}

	products, err := r.products.FetchByIDs(ctx, productIDs)
	if err != nil {
		return fmt.Errorf("failed to hydrate line item products: %w", err)
	}

	for i := range orders {
		for j := range orders[i].LineItems {
			li := &orders[i].LineItems[j]
			if li.ProductID == "" {
				continue
			}
			li.Product = products[li.ProductID]
		}
	}

	return nil
}

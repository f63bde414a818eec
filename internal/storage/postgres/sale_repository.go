package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

const (
	opTimeout = 5 * time.Second

	saleColumns = `id, sale_number, sale_date, customer_id, customer_name,
		branch_id, branch_name, status, version, created_at, updated_at`
)

// Сумма продажи считается по позициям прямо в SQL, чтобы сортировка по
// totalamount происходила на стороне базы.
const totalAmountExpr = `(
	SELECT COALESCE(SUM(quantity * unit_price * (1 - discount / 100)), 0)
	FROM sale_items
	WHERE sale_items.sale_id = sales.id
)`

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository создаёт PostgreSQL-реализацию SaleRepository.
func NewSaleRepository(store *Store) domain.SaleRepository {
	return &saleRepository{db: store.DB()}
}

func (r *saleRepository) Create(sale domain.Sale) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (
			id, sale_number, sale_date, customer_id, customer_name,
			branch_id, branch_name, status, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		sale.ID, sale.SaleNumber, sale.SaleDate, sale.CustomerID, sale.CustomerName,
		sale.BranchID, sale.BranchName, string(sale.Status), sale.Version,
		sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		if isSaleNumberViolation(err) {
			return domain.ErrSaleNumberConflict
		}
		if isUniqueViolation(err) {
			return domain.ErrSaleIDConflict
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	if err = insertItemsTx(ctx, tx, sale.ID, sale.Items); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create sale: %w", err)
	}

	return nil
}

func (r *saleRepository) Get(id string) (domain.Sale, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

func (r *saleRepository) GetBySaleNumber(number string) (domain.Sale, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE sale_number = $1`, number)
}

func (r *saleRepository) ListByCustomer(customerID string, limit int) ([]domain.Sale, error) {
	return r.listFiltered("customer_id", customerID, limit)
}

func (r *saleRepository) ListByBranch(branchID string, limit int) ([]domain.Sale, error) {
	return r.listFiltered("branch_id", branchID, limit)
}

func (r *saleRepository) ListPage(page domain.PageRequest) ([]domain.Sale, error) {
	page = page.Normalize()

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT %s
		FROM sales
		ORDER BY %s
		LIMIT $1 OFFSET $2
	`, saleColumns, sortClause(page.SortBy, page.Order))

	rows, err := r.db.QueryContext(ctx, query, page.Size, (page.Page-1)*page.Size)
	if err != nil {
		return nil, fmt.Errorf("list sales page: %w", err)
	}
	defer rows.Close()

	return r.collectSales(ctx, rows)
}

func (r *saleRepository) Count() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return count, nil
}

func (r *saleRepository) Update(sale domain.Sale) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE sales
		SET sale_date = $1,
		    customer_id = $2,
		    customer_name = $3,
		    branch_id = $4,
		    branch_name = $5,
		    status = $6,
		    version = version + 1,
		    updated_at = $7
		WHERE id = $8
		  AND version = $9
	`,
		sale.SaleDate, sale.CustomerID, sale.CustomerName,
		sale.BranchID, sale.BranchName, string(sale.Status),
		sale.UpdatedAt, sale.ID, sale.Version,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, existsErr := r.saleExistsTx(ctx, tx, sale.ID)
		if existsErr != nil {
			err = existsErr
			return err
		}
		if !exists {
			err = domain.ErrSaleNotFound
			return err
		}
		err = domain.ErrSaleVersionConflict
		return err
	}

	// Позиции заменяются целиком: агрегат владеет ими эксклюзивно.
	if _, err = tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, sale.ID); err != nil {
		return fmt.Errorf("delete sale items: %w", err)
	}
	if err = insertItemsTx(ctx, tx, sale.ID, sale.Items); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update sale: %w", err)
	}

	return nil
}

func (r *saleRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	// Позиции удаляются каскадом по внешнему ключу.
	res, err := r.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrSaleNotFound
	}

	return nil
}

func (r *saleRepository) getOne(ctx context.Context, query string, arg any) (domain.Sale, error) {
	var sale domain.Sale
	var status string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&sale.ID, &sale.SaleNumber, &sale.SaleDate, &sale.CustomerID, &sale.CustomerName,
		&sale.BranchID, &sale.BranchName, &status, &sale.Version,
		&sale.CreatedAt, &sale.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Sale{}, domain.ErrSaleNotFound
		}
		return domain.Sale{}, fmt.Errorf("select sale: %w", err)
	}
	sale.Status = domain.SaleStatus(status)

	items, err := r.loadItems(ctx, sale.ID)
	if err != nil {
		return domain.Sale{}, err
	}
	sale.Items = items

	return sale, nil
}

func (r *saleRepository) listFiltered(column, value string, limit int) ([]domain.Sale, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT %s
		FROM sales
		WHERE %s = $1
		ORDER BY sale_date DESC, id DESC
	`, saleColumns, column)

	var (
		rows *sql.Rows
		err  error
	)

	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $2", value, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query, value)
	}
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	return r.collectSales(ctx, rows)
}

func (r *saleRepository) collectSales(ctx context.Context, rows *sql.Rows) ([]domain.Sale, error) {
	sales := make([]domain.Sale, 0)
	for rows.Next() {
		var sale domain.Sale
		var status string
		if err := rows.Scan(
			&sale.ID, &sale.SaleNumber, &sale.SaleDate, &sale.CustomerID, &sale.CustomerName,
			&sale.BranchID, &sale.BranchName, &status, &sale.Version,
			&sale.CreatedAt, &sale.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sale row: %w", err)
		}
		sale.Status = domain.SaleStatus(status)
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale rows: %w", err)
	}

	for idx := range sales {
		items, err := r.loadItems(ctx, sales[idx].ID)
		if err != nil {
			return nil, err
		}
		sales[idx].Items = items
	}

	return sales, nil
}

func (r *saleRepository) loadItems(ctx context.Context, saleID string) ([]domain.SaleItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price, discount, is_cancelled, created_at
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY created_at ASC, id ASC
	`, saleID)
	if err != nil {
		return nil, fmt.Errorf("load sale items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.SaleItem, 0)
	for rows.Next() {
		var item domain.SaleItem
		if err := rows.Scan(
			&item.ID, &item.SaleID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.Discount, &item.IsCancelled, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale items: %w", err)
	}

	return items, nil
}

func (r *saleRepository) saleExistsTx(ctx context.Context, tx *sql.Tx, saleID string) (bool, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM sales WHERE id = $1`, saleID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check sale exists: %w", err)
}

func insertItemsTx(ctx context.Context, tx *sql.Tx, saleID string, items []domain.SaleItem) error {
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sale_items (
				id, sale_id, product_id, product_name, quantity, unit_price, discount, is_cancelled, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`,
			item.ID, saleID, item.ProductID, item.ProductName,
			item.Quantity, item.UnitPrice, item.Discount, item.IsCancelled, item.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

// sortClause отображает поле сортировки в SQL. Значения приходят только из
// нормализованного PageRequest, произвольные строки сюда не попадают.
func sortClause(field domain.SortField, order domain.SortOrder) string {
	direction := "ASC"
	if order == domain.SortDesc {
		direction = "DESC"
	}

	switch field {
	case domain.SortByTotalAmount:
		return totalAmountExpr + " " + direction + ", id " + direction
	case domain.SortByCustomerName:
		return "customer_name " + direction + ", id " + direction
	case domain.SortByBranchName:
		return "branch_name " + direction + ", id " + direction
	case domain.SortBySaleNumber:
		return "sale_number " + direction + ", id " + direction
	default:
		return "sale_date " + direction + ", id " + direction
	}
}

func isSaleNumberViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "sales_sale_number_key"
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.SaleRepository = (*saleRepository)(nil)

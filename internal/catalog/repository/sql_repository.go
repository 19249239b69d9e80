package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/payetonkawa/catalog-service/internal/catalog/domain"
	"github.com/payetonkawa/catalog-service/internal/platform/database"
	"github.com/payetonkawa/catalog-service/internal/platform/logger"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	// CreateProduct stores the product with all of its lots and media, or
	// nothing at all. Generated ids are written back into product.
	CreateProduct(ctx context.Context, product *domain.Product) error
	ListProducts(ctx context.Context) ([]domain.ProductListing, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
}

type sqlProductRepository struct {
	db *sql.DB
}

func NewSQLProductRepository(db *sql.DB) ProductRepository {
	return &sqlProductRepository{db: db}
}

func (r *sqlProductRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		// 1. Product row; its id is needed by every child row.
		product.ID = uuid.NewString()
		product.CreatedAt = time.Now().UTC()
		_, err := tx.ExecContext(ctx,
			`INSERT INTO products (id, name, description, price, created_at) VALUES ($1, $2, $3, $4, $5)`,
			product.ID, product.Name, product.Description, product.Price, product.CreatedAt)
		if err != nil {
			return oops.Code("PRODUCT_INSERT_FAILED").Wrap(err)
		}

		// 2. Stock lots
		if err := insertLots(ctx, tx, product); err != nil {
			return err
		}

		// 3. Media assets
		return insertMedia(ctx, tx, product)
	})
	if err != nil {
		logger.Error("CreateProduct: aggregate rolled back", err, "product_name", product.Name)
		product.ID = ""
		return err
	}
	return nil
}

func insertLots(ctx context.Context, tx database.DBTX, product *domain.Product) error {
	if len(product.Lots) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO stock_lots (id, product_id, quantity, position, created_at) VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return oops.Code("STOCK_LOT_PREPARE_FAILED").Wrap(err)
	}
	defer stmt.Close()

	for i := range product.Lots {
		lot := &product.Lots[i]
		lot.ID = uuid.NewString()
		lot.ProductID = product.ID
		if _, err := stmt.ExecContext(ctx, lot.ID, lot.ProductID, lot.Quantity, i, product.CreatedAt); err != nil {
			return oops.Code("STOCK_LOT_INSERT_FAILED").With("lot_index", i).Wrap(err)
		}
	}
	return nil
}

func insertMedia(ctx context.Context, tx database.DBTX, product *domain.Product) error {
	if len(product.Media) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO media_assets (id, product_id, type, url, position, created_at) VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return oops.Code("MEDIA_ASSET_PREPARE_FAILED").Wrap(err)
	}
	defer stmt.Close()

	for i := range product.Media {
		media := &product.Media[i]
		media.ID = uuid.NewString()
		media.ProductID = product.ID
		if _, err := stmt.ExecContext(ctx, media.ID, media.ProductID, media.Type, media.URL, i, product.CreatedAt); err != nil {
			return oops.Code("MEDIA_ASSET_INSERT_FAILED").With("media_index", i).Wrap(err)
		}
	}
	return nil
}

func (r *sqlProductRepository) ListProducts(ctx context.Context) ([]domain.ProductListing, error) {
	query := `SELECT p.id, p.name, p.description, p.price, p.created_at,
                     COALESCE(SUM(s.quantity), 0) AS quantity, COUNT(s.id) AS lots
              FROM products p
              LEFT JOIN stock_lots s ON s.product_id = p.id
              GROUP BY p.id, p.name, p.description, p.price, p.created_at
              ORDER BY p.created_at ASC, p.id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, oops.Code("PRODUCT_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	products := make([]domain.ProductListing, 0)
	for rows.Next() {
		var p domain.ProductListing
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CreatedAt, &p.Quantity, &p.Lots); err != nil {
			return nil, oops.Code("PRODUCT_LIST_SCAN_FAILED").Wrap(err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PRODUCT_LIST_FAILED").Wrap(err)
	}
	return products, nil
}

func (r *sqlProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	p := &domain.Product{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, price, created_at FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, oops.Code("PRODUCT_QUERY_FAILED").With("product_id", id).Wrap(err)
	}

	if p.Lots, err = r.lotsOf(ctx, id); err != nil {
		return nil, err
	}
	if p.Media, err = r.mediaOf(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *sqlProductRepository) lotsOf(ctx context.Context, productID string) ([]domain.StockLot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, quantity FROM stock_lots WHERE product_id = $1 ORDER BY position ASC, id ASC`, productID)
	if err != nil {
		return nil, oops.Code("STOCK_LOT_QUERY_FAILED").With("product_id", productID).Wrap(err)
	}
	defer rows.Close()

	lots := make([]domain.StockLot, 0)
	for rows.Next() {
		var l domain.StockLot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Quantity); err != nil {
			return nil, oops.Code("STOCK_LOT_SCAN_FAILED").Wrap(err)
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}

func (r *sqlProductRepository) mediaOf(ctx context.Context, productID string) ([]domain.MediaAsset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, type, url FROM media_assets WHERE product_id = $1 ORDER BY position ASC, id ASC`, productID)
	if err != nil {
		return nil, oops.Code("MEDIA_ASSET_QUERY_FAILED").With("product_id", productID).Wrap(err)
	}
	defer rows.Close()

	media := make([]domain.MediaAsset, 0)
	for rows.Next() {
		var m domain.MediaAsset
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.URL); err != nil {
			return nil, oops.Code("MEDIA_ASSET_SCAN_FAILED").Wrap(err)
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"storefront/domain"
	"storefront/internal/catalog"

	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
)

type PgRepository struct {
	db *sqlx.DB
}

func NewPgRepository(host, database, user, password, port string) *PgRepository {
	db := sqlx.MustConnect("postgres", fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, database,
	))

	// Keep the pool small; several replicas share the default
	// max_connections=100 on the Postgres side.
	db.SetMaxOpenConns(15)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return &PgRepository{db: db}
}

func (r *PgRepository) Close() error {
	return r.db.Close()
}

// GetPoolStats returns current connection pool statistics
func (r *PgRepository) GetPoolStats() map[string]interface{} {
	stats := r.db.Stats()
	return map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}
}

func (r *PgRepository) CreateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	var created domain.Item
	query := `
		INSERT INTO items (name, price, sold, image_url, created_at)
		VALUES (:name, :price, :sold, :image_url, :created_at)
		RETURNING *`

	rows, err := r.db.NamedQueryContext(ctx, query, item)
	if err != nil {
		return created, err
	}
	defer rows.Close()

	if rows.Next() {
		err = rows.StructScan(&created)
	}
	return created, err
}

func (r *PgRepository) GetItems(ctx context.Context, limit, offset int) ([]domain.Item, error) {
	items := make([]domain.Item, 0)
	query := `SELECT * FROM items ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	err := r.db.SelectContext(ctx, &items, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// List reads the full ordered collection for the sync engine. The
// created_at ordering with the id tie-break matches what the engine
// enforces locally, so both paths agree on the rendered order.
func (r *PgRepository) List(ctx context.Context, q catalog.Query) ([]domain.Item, error) {
	items := make([]domain.Item, 0)

	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}

	query := fmt.Sprintf(`SELECT * FROM items ORDER BY created_at %s, id %s`, dir, dir)

	err := r.db.SelectContext(ctx, &items, query)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *PgRepository) CountItems(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM items`

	err := r.db.GetContext(ctx, &count, query)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *PgRepository) GetItem(ctx context.Context, id string) (domain.Item, error) {
	var i domain.Item
	query := `SELECT * FROM items WHERE id = $1`

	err := r.db.GetContext(ctx, &i, query, id)
	if err != nil {
		return i, err
	}

	return i, nil
}

func (r *PgRepository) SetItemImage(ctx context.Context, itemID, imageURL string) (domain.Item, error) {
	var i domain.Item
	query := `UPDATE items SET image_url = $2 WHERE id = $1 RETURNING *`

	err := r.db.GetContext(ctx, &i, query, itemID, imageURL)
	if err != nil {
		return i, err
	}

	return i, nil
}

func (r *PgRepository) GetComments(ctx context.Context, itemID string, page, pageSize int) ([]domain.Comment, error) {
	comments := make([]domain.Comment, 0)
	offset := (page - 1) * pageSize
	query := `SELECT * FROM comments WHERE item_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`

	err := r.db.SelectContext(ctx, &comments, query, itemID, pageSize, offset)
	if err != nil {
		return nil, err
	}

	return comments, nil
}

func (r *PgRepository) CountComments(ctx context.Context, itemID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM comments WHERE item_id = $1`

	err := r.db.GetContext(ctx, &count, query, itemID)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *PgRepository) CreateComment(ctx context.Context, itemID, content string, rating int, authorName string) (domain.Comment, error) {
	var c domain.Comment
	query := `
		INSERT INTO comments (item_id, content, rating, author_name, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING *`

	err := r.db.GetContext(ctx, &c, query, itemID, content, rating, authorName)
	if err != nil {
		return c, err
	}

	return c, nil
}

func (r *PgRepository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, &u, query, email)
	if err != nil {
		return u, err
	}

	return u, nil
}

func (r *PgRepository) CreateUser(ctx context.Context, email, passwordHash string) (domain.User, error) {
	var u domain.User
	query := `
		INSERT INTO users (email, password_hash, created_at)
		VALUES ($1, $2, NOW())
		RETURNING *`

	err := r.db.GetContext(ctx, &u, query, email, passwordHash)
	if err != nil {
		return u, err
	}

	return u, nil
}

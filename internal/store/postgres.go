package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuscanteen/canteen-api/internal/models"
)

// Postgres is the hosted-database client. Every method wraps failures in
// a RemoteError so callers can fall back to local data.
type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// Connect opens a connection pool against the hosted database and
// verifies it with a ping.
func Connect(ctx context.Context, databaseURL string, log *slog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool, log: log}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// MenuItems fetches menu items, optionally only available ones,
// ordered by category like the storefront expects.
func (p *Postgres) MenuItems(ctx context.Context, onlyAvailable bool) ([]models.MenuItem, error) {
	q := `SELECT id, name, description, price, category, veg, available, image_url, created_at
		FROM menu_items`
	if onlyAvailable {
		q += ` WHERE available`
	}
	q += ` ORDER BY category, name`

	rows, err := p.pool.Query(ctx, q)
	if err != nil {
		return nil, remoteErr("fetch-all", "menu_items", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var it models.MenuItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Category,
			&it.Veg, &it.Available, &it.ImageURL, &it.CreatedAt); err != nil {
			return nil, remoteErr("scan", "menu_items", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("fetch-all", "menu_items", err)
	}
	return items, nil
}

// InsertMenuItem persists a new menu item.
func (p *Postgres) InsertMenuItem(ctx context.Context, it models.MenuItem) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO menu_items (id, name, description, price, category, veg, available, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		it.ID, it.Name, it.Description, it.Price, it.Category, it.Veg, it.Available, it.ImageURL, it.CreatedAt)
	if err != nil {
		return remoteErr("insert", "menu_items", err)
	}
	return nil
}

// UpdateMenuItem overwrites the mutable fields of a menu item.
func (p *Postgres) UpdateMenuItem(ctx context.Context, it models.MenuItem) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE menu_items
		SET name = $2, description = $3, price = $4, category = $5, veg = $6, available = $7, image_url = $8
		WHERE id = $1`,
		it.ID, it.Name, it.Description, it.Price, it.Category, it.Veg, it.Available, it.ImageURL)
	if err != nil {
		return remoteErr("update", "menu_items", err)
	}
	return nil
}

// Offers fetches all offer definitions.
func (p *Postgres) Offers(ctx context.Context) ([]models.Offer, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, code, title, description, percentage, valid_from, valid_until, active, image_url, created_at
		FROM offers ORDER BY created_at DESC`)
	if err != nil {
		return nil, remoteErr("fetch-all", "offers", err)
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var o models.Offer
		if err := rows.Scan(&o.ID, &o.Code, &o.Title, &o.Description, &o.Percentage,
			&o.ValidFrom, &o.ValidUntil, &o.Active, &o.ImageURL, &o.CreatedAt); err != nil {
			return nil, remoteErr("scan", "offers", err)
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("fetch-all", "offers", err)
	}
	return offers, nil
}

// InsertOffer persists a new offer.
func (p *Postgres) InsertOffer(ctx context.Context, o models.Offer) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO offers (id, code, title, description, percentage, valid_from, valid_until, active, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.Code, o.Title, o.Description, o.Percentage, o.ValidFrom, o.ValidUntil, o.Active, o.ImageURL, o.CreatedAt)
	if err != nil {
		return remoteErr("insert", "offers", err)
	}
	return nil
}

// UpdateOffer overwrites the mutable fields of an offer.
func (p *Postgres) UpdateOffer(ctx context.Context, o models.Offer) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE offers
		SET code = $2, title = $3, description = $4, percentage = $5, valid_from = $6, valid_until = $7, active = $8, image_url = $9
		WHERE id = $1`,
		o.ID, o.Code, o.Title, o.Description, o.Percentage, o.ValidFrom, o.ValidUntil, o.Active, o.ImageURL)
	if err != nil {
		return remoteErr("update", "offers", err)
	}
	return nil
}

// DeleteOffer removes an offer definition.
func (p *Postgres) DeleteOffer(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return remoteErr("delete", "offers", err)
	}
	return nil
}

// InsertOrder persists a confirmed order. Cart lines are stored as a
// JSON document since they are an immutable snapshot, never queried
// line-by-line.
func (p *Postgres) InsertOrder(ctx context.Context, o *models.Order) error {
	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return remoteErr("insert", "orders", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO orders (id, student_id, lines, subtotal, discount, tax, total,
			pickup_time, instructions, status, payment_method, redeemed_points, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		o.ID, o.StudentID, lines, o.Subtotal, o.Discount, o.Tax, o.Total,
		o.PickupTime, o.Instructions, string(o.Status), o.PaymentMethod, o.RedeemedPoints, o.PaidAt, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return remoteErr("insert", "orders", err)
	}
	return nil
}

// UpdateOrder overwrites the mutable fields of an order.
func (p *Postgres) UpdateOrder(ctx context.Context, o *models.Order) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE orders
		SET total = $2, status = $3, payment_method = $4, redeemed_points = $5, paid_at = $6, updated_at = $7
		WHERE id = $1`,
		o.ID, o.Total, string(o.Status), o.PaymentMethod, o.RedeemedPoints, o.PaidAt, o.UpdatedAt)
	if err != nil {
		return remoteErr("update", "orders", err)
	}
	return nil
}

// OrderByID fetches a single order.
func (p *Postgres) OrderByID(ctx context.Context, id string) (*models.Order, error) {
	o, err := p.scanOrder(p.pool.QueryRow(ctx, orderSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, remoteErr("fetch-by-id", "orders", err)
	}
	return o, nil
}

// OrdersByStudent fetches a student's orders, newest first.
func (p *Postgres) OrdersByStudent(ctx context.Context, studentID string) ([]models.Order, error) {
	rows, err := p.pool.Query(ctx, orderSelect+` WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, remoteErr("fetch-all", "orders", err)
	}
	return p.collectOrders(rows)
}

// Orders fetches every order for the admin console, newest first.
func (p *Postgres) Orders(ctx context.Context) ([]models.Order, error) {
	rows, err := p.pool.Query(ctx, orderSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, remoteErr("fetch-all", "orders", err)
	}
	return p.collectOrders(rows)
}

const orderSelect = `SELECT id, student_id, lines, subtotal, discount, tax, total,
	pickup_time, instructions, status, payment_method, redeemed_points, paid_at, created_at, updated_at
	FROM orders`

func (p *Postgres) scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	var lines []byte
	var status string
	if err := row.Scan(&o.ID, &o.StudentID, &lines, &o.Subtotal, &o.Discount, &o.Tax, &o.Total,
		&o.PickupTime, &o.Instructions, &status, &o.PaymentMethod, &o.RedeemedPoints,
		&o.PaidAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return nil, err
	}
	o.Status = models.Status(status)
	return &o, nil
}

func (p *Postgres) collectOrders(rows pgx.Rows) ([]models.Order, error) {
	defer rows.Close()
	var orders []models.Order
	for rows.Next() {
		o, err := p.scanOrder(rows)
		if err != nil {
			return nil, remoteErr("scan", "orders", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("fetch-all", "orders", err)
	}
	return orders, nil
}

// InsertStudent persists a new student account.
func (p *Postgres) InsertStudent(ctx context.Context, s *models.StudentAccount) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO students (id, roll, name, email, password_hash, rewards, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.Roll, s.Name, s.Email, s.PasswordHash, s.Rewards, s.JoinedAt)
	if err != nil {
		return remoteErr("insert", "students", err)
	}
	return nil
}

// UpdateStudent overwrites the mutable fields of a student account.
func (p *Postgres) UpdateStudent(ctx context.Context, s *models.StudentAccount) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE students SET name = $2, email = $3, password_hash = $4, rewards = $5 WHERE roll = $1`,
		s.Roll, s.Name, s.Email, s.PasswordHash, s.Rewards)
	if err != nil {
		return remoteErr("update", "students", err)
	}
	return nil
}

// StudentByRoll fetches a student account by roll number.
func (p *Postgres) StudentByRoll(ctx context.Context, roll string) (*models.StudentAccount, error) {
	var s models.StudentAccount
	err := p.pool.QueryRow(ctx, `
		SELECT id, roll, name, email, password_hash, rewards, joined_at FROM students WHERE roll = $1`, roll).
		Scan(&s.ID, &s.Roll, &s.Name, &s.Email, &s.PasswordHash, &s.Rewards, &s.JoinedAt)
	if err != nil {
		return nil, remoteErr("fetch-by-id", "students", err)
	}
	return &s, nil
}

// Students fetches every student account, ordered by name.
func (p *Postgres) Students(ctx context.Context) ([]models.StudentAccount, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, roll, name, email, password_hash, rewards, joined_at FROM students ORDER BY name`)
	if err != nil {
		return nil, remoteErr("fetch-all", "students", err)
	}
	defer rows.Close()

	var students []models.StudentAccount
	for rows.Next() {
		var s models.StudentAccount
		if err := rows.Scan(&s.ID, &s.Roll, &s.Name, &s.Email, &s.PasswordHash, &s.Rewards, &s.JoinedAt); err != nil {
			return nil, remoteErr("scan", "students", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("fetch-all", "students", err)
	}
	return students, nil
}

// InsertComplaint persists a new complaint.
func (p *Postgres) InsertComplaint(ctx context.Context, c *models.Complaint) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO complaints (id, student_id, subject, description, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.StudentID, c.Subject, c.Description, string(c.Status), string(c.Priority), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return remoteErr("insert", "complaints", err)
	}
	return nil
}

// UpdateComplaint overwrites a complaint's status fields.
func (p *Postgres) UpdateComplaint(ctx context.Context, c *models.Complaint) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE complaints SET status = $2, priority = $3, updated_at = $4 WHERE id = $1`,
		c.ID, string(c.Status), string(c.Priority), c.UpdatedAt)
	if err != nil {
		return remoteErr("update", "complaints", err)
	}
	return nil
}

// ComplaintsByStudent fetches a student's complaints, newest first.
func (p *Postgres) ComplaintsByStudent(ctx context.Context, studentID string) ([]models.Complaint, error) {
	return p.queryComplaints(ctx, `WHERE student_id = $1`, studentID)
}

// Complaints fetches every complaint for the admin console.
func (p *Postgres) Complaints(ctx context.Context) ([]models.Complaint, error) {
	return p.queryComplaints(ctx, ``)
}

func (p *Postgres) queryComplaints(ctx context.Context, where string, args ...any) ([]models.Complaint, error) {
	q := `SELECT id, student_id, subject, description, status, priority, created_at, updated_at FROM complaints `
	q += where + ` ORDER BY created_at DESC`

	rows, err := p.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, remoteErr("fetch-all", "complaints", err)
	}
	defer rows.Close()

	var complaints []models.Complaint
	for rows.Next() {
		var c models.Complaint
		var status, priority string
		if err := rows.Scan(&c.ID, &c.StudentID, &c.Subject, &c.Description, &status, &priority, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, remoteErr("scan", "complaints", err)
		}
		c.Status = models.ComplaintStatus(status)
		c.Priority = models.Priority(priority)
		complaints = append(complaints, c)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("fetch-all", "complaints", err)
	}
	return complaints, nil
}

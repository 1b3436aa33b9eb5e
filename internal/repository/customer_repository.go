package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Raymond9734/customer-directory-api/internal/models"
)

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	SelectAll(ctx context.Context) ([]*models.Customer, error)
	SelectByID(ctx context.Context, id int64) (*models.Customer, error)
	SelectByEmail(ctx context.Context, email string) (*models.Customer, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Insert(ctx context.Context, customer *models.Customer) error
	Update(ctx context.Context, customer *models.Customer) error
	DeleteByID(ctx context.Context, id int64) error
}

// customerRepository implements CustomerRepository using PostgreSQL
type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// SelectAll retrieves every customer
func (r *customerRepository) SelectAll(ctx context.Context) ([]*models.Customer, error) {
	query := `
		SELECT id, name, email, age, gender, password_hash
		FROM customers`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		customer := &models.Customer{}
		err := rows.Scan(
			&customer.ID,
			&customer.Name,
			&customer.Email,
			&customer.Age,
			&customer.Gender,
			&customer.PasswordHash,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

// SelectByID retrieves a customer by ID
func (r *customerRepository) SelectByID(ctx context.Context, id int64) (*models.Customer, error) {
	query := `
		SELECT id, name, email, age, gender, password_hash
		FROM customers
		WHERE id = $1`

	customer := &models.Customer{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.Age,
		&customer.Gender,
		&customer.PasswordHash,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return customer, nil
}

// SelectByEmail retrieves a customer by email
func (r *customerRepository) SelectByEmail(ctx context.Context, email string) (*models.Customer, error) {
	query := `
		SELECT id, name, email, age, gender, password_hash
		FROM customers
		WHERE email = $1`

	customer := &models.Customer{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.Age,
		&customer.Gender,
		&customer.PasswordHash,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("customer with email %s not found", email))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer by email: %w", err)
	}

	return customer, nil
}

// ExistsByEmail reports whether a customer with the given email exists
func (r *customerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM customers WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// ExistsByID reports whether a customer with the given ID exists
func (r *customerRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check customer existence: %w", err)
	}

	return exists, nil
}

// Insert inserts a new customer; the store assigns the ID
func (r *customerRepository) Insert(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (name, email, age, gender, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(
		ctx,
		query,
		customer.Name,
		customer.Email,
		customer.Age,
		customer.Gender,
		customer.PasswordHash,
	).Scan(&customer.ID)

	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}

	return nil
}

// Update overwrites the identified customer row
func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, email = $2, age = $3, gender = $4, password_hash = $5
		WHERE id = $6
		`

	result, err := r.db.ExecContext(
		ctx,
		query,
		customer.Name,
		customer.Email,
		customer.Age,
		customer.Gender,
		customer.PasswordHash,
		customer.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %d not found", customer.ID))
	}

	return nil
}

// DeleteByID removes a customer
func (r *customerRepository) DeleteByID(ctx context.Context, id int64) error {
	query := `DELETE FROM customers WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %d not found", id))
	}

	return nil
}

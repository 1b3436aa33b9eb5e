package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Raymond9734/customer-directory-api/internal/lockout"
	"github.com/Raymond9734/customer-directory-api/internal/models"
	"github.com/Raymond9734/customer-directory-api/internal/repository"
)

// TokenIssuer abstracts the token service collaborator
type TokenIssuer interface {
	Issue(subject string, roles []string) (string, error)
}

// CustomerService enforces the business rules over the customer store
type CustomerService interface {
	List(ctx context.Context) ([]*CustomerView, error)
	Get(ctx context.Context, id int64) (*CustomerView, error)
	Register(ctx context.Context, req *models.RegistrationRequest) (*CustomerView, string, error)
	Update(ctx context.Context, id int64, req *models.UpdateRequest) error
	Delete(ctx context.Context, id int64) error
	Authenticate(ctx context.Context, email, password string) (*CustomerView, string, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	hasher       PasswordHasher
	tokens       TokenIssuer
	lockout      lockout.Store
	logger       *slog.Logger
}

// NewCustomerService creates a new customer service.
// lockoutStore may be nil, in which case login throttling is disabled.
func NewCustomerService(
	customerRepo repository.CustomerRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	lockoutStore lockout.Store,
	logger *slog.Logger,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		hasher:       hasher,
		tokens:       tokens,
		lockout:      lockoutStore,
		logger:       logger,
	}
}

// List returns the view projection of every stored customer
func (s *customerService) List(ctx context.Context) ([]*CustomerView, error) {
	customers, err := s.customerRepo.SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	views := make([]*CustomerView, 0, len(customers))
	for _, customer := range customers {
		views = append(views, newCustomerView(customer))
	}

	return views, nil
}

// Get returns the view projection of the customer with the given ID
func (s *customerService) Get(ctx context.Context, id int64) (*CustomerView, error) {
	customer, err := s.customerRepo.SelectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return newCustomerView(customer), nil
}

// Register creates a new customer and issues an access token for it.
// The duplicate-email check runs strictly before any mutation; the unique
// index on customers.email remains the authority under concurrent writers.
func (s *customerService) Register(ctx context.Context, req *models.RegistrationRequest) (*CustomerView, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	exists, err := s.customerRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, "", models.ErrDuplicateWithMsg(
			fmt.Sprintf("email %s already taken", req.Email),
		)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, "", err
	}

	customer := &models.Customer{
		Name:         req.Name,
		Email:        req.Email,
		Age:          req.Age,
		Gender:       req.Gender,
		PasswordHash: passwordHash,
	}

	if err := s.customerRepo.Insert(ctx, customer); err != nil {
		s.logger.Error("failed to register customer",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		return nil, "", fmt.Errorf("failed to register customer: %w", err)
	}

	tokenString, err := s.tokens.Issue(customer.Email, []string{RoleUser})
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("customer registered",
		slog.Int64("customer_id", customer.ID),
		slog.String("email", customer.Email),
	)

	return newCustomerView(customer), tokenString, nil
}

// applyUpdate stages the requested changes on a copy of the current record.
// Absent or identical-valued fields are no-ops and do not count as changes.
func applyUpdate(current models.Customer, req *models.UpdateRequest) (models.Customer, bool) {
	changed := false

	if req.Name != nil && *req.Name != current.Name {
		current.Name = *req.Name
		changed = true
	}

	if req.Age != nil && *req.Age != current.Age {
		current.Age = *req.Age
		changed = true
	}

	if req.Email != nil && *req.Email != current.Email {
		current.Email = *req.Email
		changed = true
	}

	return current, changed
}

// Update applies a partial update to an existing customer. It fails with
// models.ErrNoChanges when the request stages nothing new, so a successful
// update always means the store was written.
func (s *customerService) Update(ctx context.Context, id int64, req *models.UpdateRequest) error {
	customer, err := s.customerRepo.SelectByID(ctx, id)
	if err != nil {
		return err
	}

	staged, changed := applyUpdate(*customer, req)

	// The uniqueness check only runs when the email is actually changing.
	if staged.Email != customer.Email {
		exists, err := s.customerRepo.ExistsByEmail(ctx, staged.Email)
		if err != nil {
			return fmt.Errorf("failed to check email existence: %w", err)
		}
		if exists {
			return models.ErrDuplicateWithMsg(
				fmt.Sprintf("email %s already taken", staged.Email),
			)
		}
	}

	if !changed {
		return models.ErrNoChangesWithMsg("no data changes found")
	}

	if err := s.customerRepo.Update(ctx, &staged); err != nil {
		s.logger.Error("failed to update customer",
			slog.Int64("customer_id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to update customer: %w", err)
	}

	s.logger.Info("customer updated",
		slog.Int64("customer_id", id),
	)

	return nil
}

// Delete removes a customer. Deleting the same ID twice fails with
// models.ErrNotFound; deletion is not idempotent.
func (s *customerService) Delete(ctx context.Context, id int64) error {
	exists, err := s.customerRepo.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check customer existence: %w", err)
	}
	if !exists {
		return models.ErrNotFoundWithMsg(
			fmt.Sprintf("customer with ID %d not found", id),
		)
	}

	if err := s.customerRepo.DeleteByID(ctx, id); err != nil {
		s.logger.Error("failed to delete customer",
			slog.Int64("customer_id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.logger.Info("customer deleted",
		slog.Int64("customer_id", id),
	)

	return nil
}

// Authenticate verifies a customer's credentials and issues an access token.
// Failed attempts count toward the lockout threshold; a missing customer and
// a wrong password are indistinguishable to the caller.
func (s *customerService) Authenticate(ctx context.Context, email, password string) (*CustomerView, string, error) {
	if s.lockout != nil {
		locked, err := s.lockout.IsLocked(ctx, email)
		if err != nil {
			// Lockout store failures never block logins.
			s.logger.Warn("lockout check failed",
				slog.String("email", email),
				slog.String("error", err.Error()),
			)
		} else if locked {
			return nil, "", models.ErrLockedOut
		}
	}

	customer, err := s.customerRepo.SelectByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.recordLoginFailure(ctx, email)
			return nil, "", models.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := s.hasher.Compare(customer.PasswordHash, password); err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			s.recordLoginFailure(ctx, email)
			return nil, "", models.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if s.lockout != nil {
		if err := s.lockout.Clear(ctx, email); err != nil {
			s.logger.Warn("failed to clear login failures",
				slog.String("email", email),
				slog.String("error", err.Error()),
			)
		}
	}

	tokenString, err := s.tokens.Issue(customer.Email, []string{RoleUser})
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("customer authenticated",
		slog.Int64("customer_id", customer.ID),
		slog.String("email", customer.Email),
	)

	return newCustomerView(customer), tokenString, nil
}

func (s *customerService) recordLoginFailure(ctx context.Context, email string) {
	if s.lockout == nil {
		return
	}

	if _, err := s.lockout.RecordFailure(ctx, email); err != nil {
		s.logger.Warn("failed to record login failure",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}
}

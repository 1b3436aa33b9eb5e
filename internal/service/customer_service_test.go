package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/Raymond9734/customer-directory-api/internal/lockout"
	"github.com/Raymond9734/customer-directory-api/internal/models"
)

// mockCustomerRepository for testing
type mockCustomerRepository struct {
	customers []*models.Customer
	nextID    int64
}

func (m *mockCustomerRepository) SelectAll(ctx context.Context) ([]*models.Customer, error) {
	out := make([]*models.Customer, len(m.customers))
	copy(out, m.customers)
	return out, nil
}

func (m *mockCustomerRepository) SelectByID(ctx context.Context, id int64) (*models.Customer, error) {
	for _, c := range m.customers {
		if c.ID == id {
			clone := *c
			return &clone, nil
		}
	}
	return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %d not found", id))
}

func (m *mockCustomerRepository) SelectByEmail(ctx context.Context, email string) (*models.Customer, error) {
	for _, c := range m.customers {
		if c.Email == email {
			clone := *c
			return &clone, nil
		}
	}
	return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("customer with email %s not found", email))
}

func (m *mockCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, c := range m.customers {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCustomerRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	for _, c := range m.customers {
		if c.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCustomerRepository) Insert(ctx context.Context, customer *models.Customer) error {
	m.nextID++
	customer.ID = m.nextID
	clone := *customer
	m.customers = append(m.customers, &clone)
	return nil
}

func (m *mockCustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	for i, c := range m.customers {
		if c.ID == customer.ID {
			clone := *customer
			m.customers[i] = &clone
			return nil
		}
	}
	return models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %d not found", customer.ID))
}

func (m *mockCustomerRepository) DeleteByID(ctx context.Context, id int64) error {
	for i, c := range m.customers {
		if c.ID == id {
			m.customers = append(m.customers[:i], m.customers[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %d not found", id))
}

// fakeHasher avoids bcrypt cost in service tests
type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}

func (fakeHasher) Compare(hash, plaintext string) error {
	if hash != "hashed:"+plaintext {
		return models.ErrInvalidCredentials
	}
	return nil
}

// stubIssuer issues predictable tokens
type stubIssuer struct{}

func (stubIssuer) Issue(subject string, roles []string) (string, error) {
	return "token-for-" + subject, nil
}

func newTestService(repo *mockCustomerRepository, lockoutStore lockout.Store) CustomerService {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return NewCustomerService(repo, fakeHasher{}, stubIssuer{}, lockoutStore, logger)
}

func registrationRequest(name, email string, age int, gender models.Gender) *models.RegistrationRequest {
	return &models.RegistrationRequest{
		Name:     name,
		Email:    email,
		Password: "password",
		Age:      age,
		Gender:   gender,
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCustomerService_Register_RoundTrip(t *testing.T) {
	repo := &mockCustomerRepository{}
	svc := newTestService(repo, nil)
	ctx := context.Background()

	view, tokenString, err := svc.Register(ctx, registrationRequest("Ada Lovelace", "ada@x.com", 30, models.GenderFemale))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if tokenString != "token-for-ada@x.com" {
		t.Errorf("Register() token = %q, want token for ada@x.com", tokenString)
	}

	got, err := svc.Get(ctx, view.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got.Name != "Ada Lovelace" || got.Email != "ada@x.com" || got.Age != 30 || got.Gender != models.GenderFemale {
		t.Errorf("Get() = %+v, want registered values", got)
	}
	if got.Username != "ada@x.com" {
		t.Errorf("Get() username = %q, want email", got.Username)
	}
	if len(got.Roles) != 1 || got.Roles[0] != RoleUser {
		t.Errorf("Get() roles = %v, want [%s]", got.Roles, RoleUser)
	}

	// The stored credential is the hash, never the plaintext
	stored, _ := repo.SelectByID(ctx, view.ID)
	if stored.PasswordHash != "hashed:password" {
		t.Errorf("stored hash = %q, want hashed credential", stored.PasswordHash)
	}
}

func TestCustomerService_Register_DuplicateEmail(t *testing.T) {
	repo := &mockCustomerRepository{}
	svc := newTestService(repo, nil)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, registrationRequest("Ada", "ada@x.com", 30, models.GenderFemale)); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, _, err := svc.Register(ctx, registrationRequest("Other Ada", "ada@x.com", 40, models.GenderFemale))
	if !errors.Is(err, models.ErrDuplicate) {
		t.Errorf("second Register() error = %v, want ErrDuplicate", err)
	}

	if len(repo.customers) != 1 {
		t.Errorf("customer count = %d, want 1", len(repo.customers))
	}
}

func TestCustomerService_Register_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request *models.RegistrationRequest
	}{
		{
			name:    "missing name",
			request: registrationRequest("", "a@x.com", 30, models.GenderMale),
		},
		{
			name:    "missing email",
			request: registrationRequest("A", "", 30, models.GenderMale),
		},
		{
			name: "missing password",
			request: &models.RegistrationRequest{
				Name: "A", Email: "a@x.com", Age: 30, Gender: models.GenderMale,
			},
		},
		{
			name:    "invalid gender",
			request: registrationRequest("A", "a@x.com", 30, models.Gender("OTHER")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockCustomerRepository{}
			svc := newTestService(repo, nil)

			_, _, err := svc.Register(context.Background(), tt.request)

			var appErr *models.AppError
			if !errors.As(err, &appErr) || appErr.Code != "INVALID_INPUT" {
				t.Errorf("Register() error = %v, want INVALID_INPUT", err)
			}
			if len(repo.customers) != 0 {
				t.Errorf("customer count = %d, want 0", len(repo.customers))
			}
		})
	}
}

func TestCustomerService_Update(t *testing.T) {
	tests := []struct {
		name      string
		request   *models.UpdateRequest
		wantErr   error
		wantName  string
		wantAge   int
		wantEmail string
	}{
		{
			name:    "all fields absent",
			request: &models.UpdateRequest{},
			wantErr: models.ErrNoChanges,
		},
		{
			name: "all fields identical",
			request: &models.UpdateRequest{
				Name:  strPtr("Ada Lovelace"),
				Age:   intPtr(30),
				Email: strPtr("ada@x.com"),
			},
			wantErr: models.ErrNoChanges,
		},
		{
			name: "name change only",
			request: &models.UpdateRequest{
				Name: strPtr("Ada King"),
			},
			wantName:  "Ada King",
			wantAge:   30,
			wantEmail: "ada@x.com",
		},
		{
			name: "age change with identical name",
			request: &models.UpdateRequest{
				Name: strPtr("Ada Lovelace"),
				Age:  intPtr(31),
			},
			wantName:  "Ada Lovelace",
			wantAge:   31,
			wantEmail: "ada@x.com",
		},
		{
			name: "email change to taken address",
			request: &models.UpdateRequest{
				Email: strPtr("grace@x.com"),
			},
			wantErr: models.ErrDuplicate,
		},
		{
			name: "email change to free address",
			request: &models.UpdateRequest{
				Email: strPtr("countess@x.com"),
			},
			wantName:  "Ada Lovelace",
			wantAge:   30,
			wantEmail: "countess@x.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockCustomerRepository{}
			svc := newTestService(repo, nil)
			ctx := context.Background()

			ada, _, err := svc.Register(ctx, registrationRequest("Ada Lovelace", "ada@x.com", 30, models.GenderFemale))
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			if _, _, err := svc.Register(ctx, registrationRequest("Grace Hopper", "grace@x.com", 37, models.GenderFemale)); err != nil {
				t.Fatalf("Register() error = %v", err)
			}

			err = svc.Update(ctx, ada.ID, tt.request)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Update() error = %v, want %v", err, tt.wantErr)
				}
				// A failed update never mutates the store
				current, _ := svc.Get(ctx, ada.ID)
				if current.Name != "Ada Lovelace" || current.Age != 30 || current.Email != "ada@x.com" {
					t.Errorf("customer mutated on failed update: %+v", current)
				}
				return
			}

			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}

			current, err := svc.Get(ctx, ada.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if current.Name != tt.wantName || current.Age != tt.wantAge || current.Email != tt.wantEmail {
				t.Errorf("Update() result = %+v, want {%s %d %s}", current, tt.wantName, tt.wantAge, tt.wantEmail)
			}
		})
	}
}

func TestCustomerService_Update_NotFound(t *testing.T) {
	svc := newTestService(&mockCustomerRepository{}, nil)

	err := svc.Update(context.Background(), 42, &models.UpdateRequest{Name: strPtr("Nobody")})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestCustomerService_Update_RepeatFailsWithNoChanges(t *testing.T) {
	repo := &mockCustomerRepository{}
	svc := newTestService(repo, nil)
	ctx := context.Background()

	ada, _, err := svc.Register(ctx, registrationRequest("Ada Lovelace", "ada@x.com", 30, models.GenderFemale))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	request := &models.UpdateRequest{Name: strPtr("Ada King"), Age: intPtr(31)}

	if err := svc.Update(ctx, ada.ID, request); err != nil {
		t.Fatalf("first Update() error = %v", err)
	}

	// After the first call the values already match
	err = svc.Update(ctx, ada.ID, request)
	if !errors.Is(err, models.ErrNoChanges) {
		t.Errorf("second Update() error = %v, want ErrNoChanges", err)
	}
}

func TestCustomerService_Delete_NotIdempotent(t *testing.T) {
	repo := &mockCustomerRepository{}
	svc := newTestService(repo, nil)
	ctx := context.Background()

	ada, _, err := svc.Register(ctx, registrationRequest("Ada Lovelace", "ada@x.com", 30, models.GenderFemale))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.Delete(ctx, ada.ID); err != nil {
		t.Fatalf("first Delete() error = %v", err)
	}

	err = svc.Delete(ctx, ada.ID)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestCustomerService_List_Completeness(t *testing.T) {
	repo := &mockCustomerRepository{}
	svc := newTestService(repo, nil)
	ctx := context.Background()

	emails := map[string]bool{}
	for i := 0; i < 5; i++ {
		email := fmt.Sprintf("customer%d@x.com", i)
		emails[email] = false
		if _, _, err := svc.Register(ctx, registrationRequest(fmt.Sprintf("Customer %d", i), email, 20+i, models.GenderMale)); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	views, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(views) != 5 {
		t.Fatalf("List() returned %d views, want 5", len(views))
	}

	for _, view := range views {
		seen, ok := emails[view.Email]
		if !ok {
			t.Errorf("List() returned unknown email %s", view.Email)
			continue
		}
		if seen {
			t.Errorf("List() returned email %s twice", view.Email)
		}
		emails[view.Email] = true
	}
}

func TestCustomerService_Authenticate(t *testing.T) {
	repo := &mockCustomerRepository{}
	svc := newTestService(repo, nil)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, registrationRequest("Ada Lovelace", "ada@x.com", 30, models.GenderFemale)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	view, tokenString, err := svc.Authenticate(ctx, "ada@x.com", "password")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if tokenString != "token-for-ada@x.com" {
		t.Errorf("Authenticate() token = %q, want token for ada@x.com", tokenString)
	}
	if view.Email != "ada@x.com" {
		t.Errorf("Authenticate() view email = %q, want ada@x.com", view.Email)
	}

	_, _, err = svc.Authenticate(ctx, "ada@x.com", "wrong")
	if !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("Authenticate() wrong password error = %v, want ErrInvalidCredentials", err)
	}

	// Unknown emails are indistinguishable from wrong passwords
	_, _, err = svc.Authenticate(ctx, "nobody@x.com", "password")
	if !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("Authenticate() unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestCustomerService_Authenticate_Lockout(t *testing.T) {
	repo := &mockCustomerRepository{}
	store := lockout.NewMemoryStore(3, time.Minute)
	svc := newTestService(repo, store)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, registrationRequest("Ada Lovelace", "ada@x.com", 30, models.GenderFemale)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, _, err := svc.Authenticate(ctx, "ada@x.com", "wrong"); !errors.Is(err, models.ErrInvalidCredentials) {
			t.Fatalf("attempt %d error = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	// Threshold reached: even the correct password is rejected
	_, _, err := svc.Authenticate(ctx, "ada@x.com", "password")
	if !errors.Is(err, models.ErrLockedOut) {
		t.Errorf("Authenticate() after lockout error = %v, want ErrLockedOut", err)
	}
}

func TestCustomerService_Authenticate_SuccessClearsFailures(t *testing.T) {
	repo := &mockCustomerRepository{}
	store := lockout.NewMemoryStore(3, time.Minute)
	svc := newTestService(repo, store)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, registrationRequest("Ada Lovelace", "ada@x.com", 30, models.GenderFemale)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, _, err := svc.Authenticate(ctx, "ada@x.com", "wrong"); !errors.Is(err, models.ErrInvalidCredentials) {
			t.Fatalf("attempt %d error = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	if _, _, err := svc.Authenticate(ctx, "ada@x.com", "password"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	locked, err := store.IsLocked(ctx, "ada@x.com")
	if err != nil {
		t.Fatalf("IsLocked() error = %v", err)
	}
	if locked {
		t.Error("failures not cleared after successful login")
	}
}

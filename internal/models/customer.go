package models

// Gender is the customer gender enumeration
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Valid reports whether the gender is one of the known values
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Customer represents a customer record as persisted.
// PasswordHash is never serialized.
type Customer struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Age          int    `json:"age"`
	Gender       Gender `json:"gender"`
	PasswordHash string `json:"-"`
}

// RegistrationRequest holds the input for registering a new customer.
// The plaintext password is hashed before a Customer is built and is
// never persisted as-is.
type RegistrationRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
	Gender   Gender `json:"gender"`
}

// Validate performs basic validation on the registration input
func (r *RegistrationRequest) Validate() error {
	if r.Name == "" {
		return ErrInvalidInput("name is required")
	}
	if r.Email == "" {
		return ErrInvalidInput("email is required")
	}
	if r.Password == "" {
		return ErrInvalidInput("password is required")
	}
	if !r.Gender.Valid() {
		return ErrInvalidInput("gender must be MALE or FEMALE")
	}
	return nil
}

// UpdateRequest holds the input for a partial customer update.
// A nil field means "no change requested" for that field.
type UpdateRequest struct {
	Name  *string `json:"name"`
	Age   *int    `json:"age"`
	Email *string `json:"email"`
}

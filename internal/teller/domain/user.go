package domain

import "time"

type User struct {
	ID           string
	Username     string
	Email        string // lower-cased
	PasswordHash string // argon2id PHC, or bcrypt for imported users
	Profile      Profile
	SSNSealed    *string    // AES-GCM sealed, never returned
	ApprovedAt   *time.Time // nil while awaiting approval
	MFAEnabledAt *time.Time // Timestamp when MFA was enabled (nullable)
	MFASecret    *string    // sealed TOTP secret (nullable)
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the customer details collected at signup.
type Profile struct {
	FirstName    string `json:"first_name" bson:"first_name"`
	MiddleName   string `json:"middle_name,omitempty" bson:"middle_name,omitempty"`
	LastName     string `json:"last_name" bson:"last_name"`
	DateOfBirth  string `json:"dob,omitempty" bson:"dob,omitempty"` // YYYY-MM-DD
	Street       string `json:"street,omitempty" bson:"street,omitempty"`
	Apt          string `json:"apt,omitempty" bson:"apt,omitempty"`
	City         string `json:"city,omitempty" bson:"city,omitempty"`
	State        string `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode      string `json:"zip_code,omitempty" bson:"zip_code,omitempty"`
	Phone        string `json:"phone,omitempty" bson:"phone,omitempty"`
	IDNumber     string `json:"id_number,omitempty" bson:"id_number,omitempty"`
	IssueState   string `json:"issue_state,omitempty" bson:"issue_state,omitempty"`
	IDExpiration string `json:"id_expiration,omitempty" bson:"id_expiration,omitempty"` // YYYY-MM-DD
}

func (u User) MFAEnabled() bool { return u.MFAEnabledAt != nil }

func (u User) Approved() bool { return u.ApprovedAt != nil }

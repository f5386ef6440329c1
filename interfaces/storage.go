package interfaces

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Account is the record created by the signup API for every accepted
// registration.
type Account struct {
	// ID is a random UUID assigned on creation.
	ID string `json:"id"`

	// AccountNumber has the form ddMMyy-HHmmss-NNN, where NNN is the number
	// of stored accounts plus one.
	AccountNumber string `json:"account_number"`

	FullName string `json:"full_name"`

	// PIN is the initial account PIN. It is stored but never returned by the API.
	PIN string `json:"pin_number"`

	Status    string    `json:"status"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`

	// User holds the registration form as submitted.
	User FormState `json:"user"`

	// Transactions lists cash-ins in the order they were applied.
	Transactions []Transaction `json:"transactions,omitempty"`
}

// Transaction is one balance change applied to an account.
type Transaction struct {
	Number    string    `json:"transaction_number"`
	Amount    float64   `json:"amount"`
	Withdraw  float64   `json:"withdraw"`
	Charge    float64   `json:"charge"`
	Timestamp time.Time `json:"timestamp"`
}

// IsActive reports whether the account may log in. Status comparison
// ignores case.
func (a *Account) IsActive() bool {
	return strings.EqualFold(a.Status, AccountStatusActive)
}

// Default values for newly created accounts.
const (
	DefaultAccountPIN    = "0000"
	AccountStatusActive  = "Active"
	UnnamedAccountHolder = "Unnamed User"
)

var accountNumberRe = regexp.MustCompile(`^[0-9]{6}-[0-9]{6}-[0-9]{3,}$`)

// ValidAccountNumber reports whether s has the ddMMyy-HHmmss-NNN shape.
// Stores use it before turning an account number into a path or key.
func ValidAccountNumber(s string) bool {
	return accountNumberRe.MatchString(s)
}

// StorageBackendLocation represents URI for an account store.
type StorageBackendLocation struct {
	Raw    string     // Original URI
	Scheme string     // Protocol
	Host   string     // Hostname
	Path   string     // Resource path
	Query  url.Values // Query parameters
	Auth   string     // Authentication info
}

// NewStorageBackendLocation creates a new storage location from a URI string with validation.
func NewStorageBackendLocation(uri string) (StorageBackendLocation, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return StorageBackendLocation{}, fmt.Errorf("%w: %v", ErrInvalidLocationURI, err)
	}

	scheme := parsed.Scheme
	switch scheme {
	case "memory", "file", "s3", "vault":
	default:
		return StorageBackendLocation{}, fmt.Errorf("%w: unsupported storage scheme %q", ErrInvalidLocationURI, scheme)
	}

	var auth string
	if parsed.User != nil {
		auth = parsed.User.String()
	}

	return StorageBackendLocation{
		Raw:    uri,
		Scheme: scheme,
		Host:   parsed.Host,
		Path:   parsed.Path,
		Query:  parsed.Query(),
		Auth:   auth,
	}, nil
}

// String returns the original URI string.
func (loc StorageBackendLocation) String() string {
	return loc.Raw
}

// GetParam returns a query parameter value.
func (loc StorageBackendLocation) GetParam(name string) string {
	return loc.Query.Get(name)
}

// GetParamBool returns a boolean query parameter value.
func (loc StorageBackendLocation) GetParamBool(name string) bool {
	value := loc.Query.Get(name)
	return value == "true" || value == "1" || value == "yes"
}

var (
	// ErrAccountNotFound is returned when no account exists for an account number.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists is returned when an account number is already taken.
	ErrAccountExists = errors.New("account already exists")

	// ErrAccountConflict is returned when an account changed between read and
	// update.
	ErrAccountConflict = errors.New("account was modified concurrently")

	// ErrBackendUnavailable is returned when a storage backend is not accessible.
	// This could be due to network issues, authentication failures, or service outages.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrInvalidLocationURI is returned when a storage location URI is malformed or unsupported.
	// URIs must follow the format: [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid storage location URI")

	// ErrUnknownField is returned when a form field name is not recognized.
	ErrUnknownField = errors.New("unknown form field")
)

// AccountStore persists account records created by the signup API.
type AccountStore interface {
	// Create stores a new account. Returns ErrAccountExists if the account
	// number is already taken.
	Create(ctx context.Context, account *Account) error

	// Update replaces a stored account. Returns ErrAccountNotFound if no
	// account exists for its account number.
	Update(ctx context.Context, account *Account) error

	// Fetch retrieves an account by account number.
	Fetch(ctx context.Context, accountNumber string) (*Account, error)

	// Count returns the number of stored accounts.
	Count(ctx context.Context) (int, error)

	// Available checks if the store is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this store.
	LocationURI() string
}

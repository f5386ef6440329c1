package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ruteri/registration-form/interfaces"
)

// Endpoint paths served by the signup API. Which one a client posts to is
// configuration; the snake-case backend historically listens on UsersPath
// and the camel-case backend on SignupPath.
const (
	UsersPath  = "/api/v3/users"
	SignupPath = "/api/v3/users/signup"
)

// Session and transaction endpoints. The transaction paths are followed by
// "/{account_number}".
const (
	LoginPath   = "/api/v3/users/login"
	LogoutPath  = "/api/v3/users/logout"
	BalancePath = "/api/v3/transactions/balance"
	CashInPath  = "/api/v3/transactions/cashin"
)

// DisplayTimeLayout formats the timestamps returned by the session and
// transaction endpoints, e.g. "October 19, 2026 2:30 PM".
const DisplayTimeLayout = "January 02, 2006 3:04 PM"

// DefaultServerAddr is the address the registration form posts to unless
// configured otherwise.
const DefaultServerAddr = "http://localhost:8080"

// SignupProvider submits a registration payload to the signup API.
type SignupProvider interface {
	// Signup sends payload as the JSON body of a single POST request.
	// Returns:
	//   - nil for any 2xx response; the response body is ignored
	//   - *StatusError for a non-2xx response
	//   - any other error when no response was received
	Signup(ctx context.Context, payload any) error
}

// StatusError is returned by the API clients when the server answered with
// a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned non-2xx response: %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned error %d: %s", e.StatusCode, e.Body)
}

// ServerMessage returns the message of an ErrorResponse body, or the raw
// body when it is not one.
func (e *StatusError) ServerMessage() string {
	var resp ErrorResponse
	if err := json.Unmarshal([]byte(e.Body), &resp); err == nil && resp.Message != "" {
		return resp.Message
	}
	return e.Body
}

// Convention selects the key naming of the registration payload.
type Convention string

const (
	SnakeCase Convention = "snake"
	CamelCase Convention = "camel"
)

var ErrUnknownConvention = errors.New("unknown payload convention")

// ParseConvention accepts "snake", "snake_case", "camel" and "camelCase",
// case-insensitively.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "snake", "snake_case":
		return SnakeCase, nil
	case "camel", "camelcase":
		return CamelCase, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownConvention, s)
	}
}

// DefaultPath returns the endpoint path the backend using this convention
// listens on.
func (c Convention) DefaultPath() string {
	if c == CamelCase {
		return SignupPath
	}
	return UsersPath
}

// Encode builds the payload for state. The result marshals to a flat JSON
// object containing every form field.
func (c Convention) Encode(state interfaces.FormState) (any, error) {
	switch c {
	case SnakeCase:
		return &SnakeCasePayload{
			FirstName:     state.FirstName,
			MiddleName:    state.MiddleName,
			LastName:      state.LastName,
			Suffix:        state.Suffix,
			BlkRoom:       state.BlkRoom,
			Building:      state.Building,
			Street:        state.Street,
			Barangay:      state.Barangay,
			Province:      state.Province,
			ZipCode:       state.ZipCode,
			ContactNo:     state.ContactNo,
			TelNo:         state.TelNo,
			Email:         state.EmailAddress,
			ValidIDType:   state.SelectedID,
			ValidIDNumber: state.IDNumber,
		}, nil
	case CamelCase:
		return &CamelCasePayload{
			FirstName:     state.FirstName,
			MiddleName:    state.MiddleName,
			LastName:      state.LastName,
			Suffix:        state.Suffix,
			BlkRoom:       state.BlkRoom,
			Building:      state.Building,
			Street:        state.Street,
			Barangay:      state.Barangay,
			Province:      state.Province,
			ZipCode:       state.ZipCode,
			ContactNo:     state.ContactNo,
			TelNo:         state.TelNo,
			Email:         state.EmailAddress,
			ValidIDType:   state.SelectedID,
			ValidIDNumber: state.IDNumber,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownConvention, string(c))
	}
}

// SnakeCasePayload is the registration body with snake_case keys.
type SnakeCasePayload struct {
	FirstName     string `json:"firstname"`
	MiddleName    string `json:"middlename"`
	LastName      string `json:"lastname"`
	Suffix        string `json:"suffix"`
	BlkRoom       string `json:"blk_room"`
	Building      string `json:"building"`
	Street        string `json:"street"`
	Barangay      string `json:"barangay"`
	Province      string `json:"province"`
	ZipCode       string `json:"zip_code"`
	ContactNo     string `json:"contact_no"`
	TelNo         string `json:"tel_no"`
	Email         string `json:"email"`
	ValidIDType   string `json:"valid_id_type"`
	ValidIDNumber string `json:"valid_id_number"`
}

// CamelCasePayload is the registration body with camelCase keys.
type CamelCasePayload struct {
	FirstName     string `json:"firstname"`
	MiddleName    string `json:"middlename"`
	LastName      string `json:"lastname"`
	Suffix        string `json:"suffix"`
	BlkRoom       string `json:"blkRoom"`
	Building      string `json:"building"`
	Street        string `json:"street"`
	Barangay      string `json:"barangay"`
	Province      string `json:"province"`
	ZipCode       string `json:"zipCode"`
	ContactNo     string `json:"contactNo"`
	TelNo         string `json:"telNo"`
	Email         string `json:"email"`
	ValidIDType   string `json:"validIdType"`
	ValidIDNumber string `json:"validIdNumber"`
}

// camelOnlyKeys appear only in camel-case payloads.
var camelOnlyKeys = []string{"blkRoom", "zipCode", "contactNo", "telNo", "validIdType", "validIdNumber"}

// DecodePayload parses a registration body in either convention. The
// convention is camel-case when any camel-only key is present, snake-case
// otherwise. Non-string values are rejected.
func DecodePayload(body []byte) (interfaces.FormState, Convention, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return interfaces.FormState{}, "", fmt.Errorf("could not parse registration payload: %w", err)
	}

	convention := SnakeCase
	for _, k := range camelOnlyKeys {
		if _, ok := raw[k]; ok {
			convention = CamelCase
			break
		}
	}

	var state interfaces.FormState
	var err error
	switch convention {
	case CamelCase:
		var p CamelCasePayload
		err = json.Unmarshal(body, &p)
		state = interfaces.FormState{
			FirstName: p.FirstName, MiddleName: p.MiddleName, LastName: p.LastName, Suffix: p.Suffix,
			BlkRoom: p.BlkRoom, Building: p.Building, Street: p.Street, Barangay: p.Barangay,
			Province: p.Province, ZipCode: p.ZipCode, ContactNo: p.ContactNo, TelNo: p.TelNo,
			EmailAddress: p.Email, SelectedID: p.ValidIDType, IDNumber: p.ValidIDNumber,
		}
	default:
		var p SnakeCasePayload
		err = json.Unmarshal(body, &p)
		state = interfaces.FormState{
			FirstName: p.FirstName, MiddleName: p.MiddleName, LastName: p.LastName, Suffix: p.Suffix,
			BlkRoom: p.BlkRoom, Building: p.Building, Street: p.Street, Barangay: p.Barangay,
			Province: p.Province, ZipCode: p.ZipCode, ContactNo: p.ContactNo, TelNo: p.TelNo,
			EmailAddress: p.Email, SelectedID: p.ValidIDType, IDNumber: p.ValidIDNumber,
		}
	}
	if err != nil {
		return interfaces.FormState{}, "", fmt.Errorf("could not parse registration payload: %w", err)
	}
	return state, convention, nil
}

// SignupResponse is returned by the signup API for a created account. The
// account PIN is deliberately absent.
type SignupResponse struct {
	ID            string  `json:"id"`
	AccountNumber string  `json:"account_number"`
	FullName      string  `json:"full_name"`
	Status        string  `json:"status"`
	Balance       float64 `json:"balance"`
	CreatedAt     string  `json:"created_at"`
}

// ErrorResponse is the JSON body of every rejected request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LoginRequest carries the credentials of POST /users/login. The handler
// also accepts the snake-case keys account_number and pin_number.
type LoginRequest struct {
	AccountNumber string `json:"accountNumber"`
	PIN           string `json:"pinNumber"`
}

// LoginResponse is returned for a successful login.
type LoginResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Token         string `json:"token"`
	AccountNumber string `json:"accountNumber"`
	FullName      string `json:"fullName"`
	Status        string `json:"status"`
}

// LogoutResponse is returned when a token was revoked.
type LogoutResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// BalanceData is the account summary returned by the balance endpoint.
type BalanceData struct {
	AccountNumber string  `json:"accountNumber"`
	FullName      string  `json:"fullName"`
	Balance       float64 `json:"balance"`
	Status        string  `json:"status"`
	Timestamp     string  `json:"timestamp"`
}

type BalanceResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    BalanceData `json:"data"`
}

// CashInRequest is the body of POST /transactions/cashin/{account_number}.
// Amount may be a JSON number or a numeric string.
type CashInRequest struct {
	Amount json.RawMessage `json:"amount"`
}

// CashInData describes an applied cash-in.
type CashInData struct {
	AccountNumber     string  `json:"accountNumber"`
	FullName          string  `json:"fullName"`
	NewBalance        float64 `json:"newBalance"`
	TransactionNumber string  `json:"transactionNumber"`
	Status            string  `json:"status"`
	Timestamp         string  `json:"timestamp"`
}

type CashInResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    CashInData `json:"data"`
}

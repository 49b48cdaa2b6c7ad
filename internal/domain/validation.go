package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidBankName      = errors.New("invalid bank name")
	ErrInvalidAccountNumber = errors.New("invalid account number")
	ErrInvalidRoutingNumber = errors.New("invalid routing number")
	ErrInvalidDescription   = errors.New("invalid description")
	ErrInvalidClientID      = errors.New("client id is required")
	ErrInvalidMatterID      = errors.New("matter id is required")
	ErrAmountTooLarge       = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall       = errors.New("amount below minimum allowed")
)

// Validation constants
const (
	MaxBankNameLength    = 255
	MaxDescriptionLength = 500
	MaxPostingAmount     = "1000000000" // 1 billion, per posting
	MinPostingAmount     = "0.01"
)

var routingNumberRegex = regexp.MustCompile(`^[0-9]{9}$`)
var accountNumberRegex = regexp.MustCompile(`^[0-9]{4,17}$`)

// ValidateBankName validates the bank name on a trust account.
func ValidateBankName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidBankName)
	}

	if len(name) > MaxBankNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidBankName, MaxBankNameLength)
	}

	return nil
}

// ValidateAccountNumber validates a bank account number.
func ValidateAccountNumber(number string) error {
	if !accountNumberRegex.MatchString(strings.TrimSpace(number)) {
		return ErrInvalidAccountNumber
	}
	return nil
}

// ValidateRoutingNumber validates an ABA routing number (9 digits).
func ValidateRoutingNumber(number string) error {
	if !routingNumberRegex.MatchString(strings.TrimSpace(number)) {
		return ErrInvalidRoutingNumber
	}
	return nil
}

// ValidateDescription validates a human-readable transaction description.
func ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description cannot be empty", ErrInvalidDescription)
	}

	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidDescription, MaxDescriptionLength)
	}

	return nil
}

// ValidateAmount validates a posting amount. Amounts are always supplied
// positive; the transaction type determines the sign.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount, _ := decimal.NewFromString(MinPostingAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinPostingAmount)
	}

	maxAmount, _ := decimal.NewFromString(MaxPostingAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxPostingAmount)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

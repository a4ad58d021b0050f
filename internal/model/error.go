package model

// Standard error codes for storefront responses
const (
	ErrCodeProductNotFound = "PRODUCT_NOT_FOUND"
	ErrCodeNameRequired    = "NAME_REQUIRED"
	ErrCodeEmptyCart       = "EMPTY_CART"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrNameRequired    = NewDomainError(ErrCodeNameRequired, "Please enter your full name to proceed.")
	ErrEmptyCart       = NewDomainError(ErrCodeEmptyCart, "Your cart is empty.")
)

package service

// Kind classifies domain failures so the transport layer can pick a status code.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindInsufficientFunds
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInsufficientFunds:
		return "insufficient_funds"
	default:
		return "unknown"
	}
}

// Error is a domain failure whose Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrUsernameRequired    = &Error{Kind: KindValidation, Code: "USERNAME_REQUIRED", Message: "Username required"}
	ErrUsernameTaken       = &Error{Kind: KindConflict, Code: "USERNAME_EXISTS", Message: "Username exists"}
	ErrUserNotFound        = &Error{Kind: KindNotFound, Code: "USER_NOT_FOUND", Message: "User not found"}
	ErrProductNotFound     = &Error{Kind: KindNotFound, Code: "PRODUCT_NOT_FOUND", Message: "Product not found"}
	ErrProductNotInCart    = &Error{Kind: KindNotFound, Code: "PRODUCT_NOT_IN_CART", Message: "Product not in cart"}
	ErrQuantityTooLow      = &Error{Kind: KindValidation, Code: "INVALID_QUANTITY", Message: "Quantity must be at least 1"}
	ErrQuantityNegative    = &Error{Kind: KindValidation, Code: "INVALID_QUANTITY", Message: "Quantity must be non-negative"}
	ErrQuantityTooHigh     = &Error{Kind: KindValidation, Code: "INVALID_QUANTITY", Message: "Quantity too large"}
	ErrBalanceNegative     = &Error{Kind: KindValidation, Code: "INVALID_BALANCE", Message: "Balance must be non-negative"}
	ErrBalanceTooHigh      = &Error{Kind: KindValidation, Code: "INVALID_BALANCE", Message: "Balance too large"}
	ErrCartEmpty           = &Error{Kind: KindValidation, Code: "CART_EMPTY", Message: "Cart empty"}
	ErrInsufficientBalance = &Error{Kind: KindInsufficientFunds, Code: "INSUFFICIENT_BALANCE", Message: "Insufficient balance"}
)

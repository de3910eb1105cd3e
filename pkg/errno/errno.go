package errno

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	switch typed := err.(type) {
	case *Errno:
		return typed.Code, typed.Message
	case Errno:
		return typed.Code, typed.Message
	default:
		return InternalServerError.Code, err.Error()
	}
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrConfigInvalid    = Errno{Code: 10002, Message: "Invalid configuration"}
	ErrNetworkUnknown   = Errno{Code: 10003, Message: "Network not found in registry"}
)

// Chain Errors (20000+)
var (
	ErrProxyExhausted      = Errno{Code: 20101, Message: "RPC request failed after all proxy retries"}
	ErrAmbiguousFeeFields  = Errno{Code: 20102, Message: "Transaction carries both legacy and EIP-1559 fee fields"}
	ErrUnsupportedDecimals = Errno{Code: 20103, Message: "Unsupported token decimals"}
)

// Business Errors (30000+)
var (
	ErrInsufficientBalance  = Errno{Code: 30101, Message: "Insufficient token balance"}
	ErrInsufficientGasFunds = Errno{Code: 30102, Message: "Insufficient native balance to cover gas"}
	ErrAllowanceNotSet      = Errno{Code: 30103, Message: "Allowance still insufficient after confirmed approve"}
)

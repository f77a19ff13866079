package checkout

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-checkout/internal/common"
)

// Error is the error type returned by checkout operations.
type Error = common.AppError

// Error codes carried by Error.
const (
	CodeInvalidArgument    = common.CodeInvalidArgument
	CodeFailedPrecondition = common.CodeFailedPrecondition
)

var (
	// ErrInvalidArgument is wrapped by every error caused by a missing or malformed input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDuplicateOffer is wrapped when OfferPolicyReject refuses a second offer for a SKU.
	ErrDuplicateOffer = errors.New("offer already registered for sku")
)

// ErrorCode returns the code of a checkout error, or "" for any other error.
func ErrorCode(err error) string {
	return common.CodeOf(err)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

func invalidArgument(message string, details any) *Error {
	err := common.NewAppError(CodeInvalidArgument, message, ErrInvalidArgument)
	err.Details = details
	return err
}

func validateInput(kind string, v any) *Error {
	err := structValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalidArgument("invalid "+kind, err.Error())
	}
	fields := make(map[string]string, len(verrs))
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fe.Field()] = rule
		parts = append(parts, fmt.Sprintf("%s must satisfy %s", fe.Field(), rule))
	}
	return invalidArgument(fmt.Sprintf("invalid %s: %s", kind, strings.Join(parts, ", ")), fields)
}

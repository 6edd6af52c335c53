package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
	CodeCartNotFound  Code = "CART_NOT_FOUND"
	CodeAddressAbsent Code = "ADDRESS_NOT_FOUND"

	CodeCouponNotFound         Code = "COUPON_NOT_FOUND"
	CodeCouponInactive         Code = "COUPON_INACTIVE"
	CodeCouponMinimumNotMet    Code = "COUPON_MINIMUM_NOT_MET"
	CodeCouponLimitReached     Code = "COUPON_LIMIT_REACHED"
	CodeCouponRequiresUser     Code = "COUPON_REQUIRES_USER"
	CodeCouponUserLimitReached Code = "COUPON_USER_LIMIT_REACHED"
	CodeCouponNotAllowed       Code = "COUPON_NOT_ALLOWED"

	CodeShippingUnavailable Code = "SHIPPING_METHOD_NOT_AVAILABLE"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeUnauthorized: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "authentication required",
	},
	CodeForbidden: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: "access denied",
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "resource not found",
	},
	CodeConflict: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "conflict detected",
	},
	CodeIdempotency: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "idempotency key reused",
		DetailsAllowed: true,
	},
	CodeRateLimit: {
		HTTPStatus:    http.StatusTooManyRequests,
		PublicMessage: "rate limit exceeded",
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "internal server error",
	},
	CodeDependency: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "dependency unavailable",
		DetailsAllowed: true,
	},
	CodeCartNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "cart not found",
	},
	CodeAddressAbsent: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "address not found",
	},
	CodeCouponNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "coupon code is not valid",
	},
	CodeCouponInactive: {
		HTTPStatus:    http.StatusUnprocessableEntity,
		PublicMessage: "coupon is not active",
	},
	CodeCouponMinimumNotMet: {
		HTTPStatus:     http.StatusUnprocessableEntity,
		PublicMessage:  "cart does not meet the coupon minimum",
		DetailsAllowed: true,
	},
	CodeCouponLimitReached: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "coupon redemption limit reached",
	},
	CodeCouponRequiresUser: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "sign in to use this coupon",
	},
	CodeCouponUserLimitReached: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "coupon already used the maximum number of times",
	},
	CodeCouponNotAllowed: {
		HTTPStatus:    http.StatusUnprocessableEntity,
		PublicMessage: "coupons can only be applied from the cart",
	},
	CodeShippingUnavailable: {
		HTTPStatus:    http.StatusUnprocessableEntity,
		PublicMessage: "shipping method not available for this address",
	},
}

var couponCodes = map[Code]struct{}{
	CodeCouponNotFound:         {},
	CodeCouponInactive:         {},
	CodeCouponMinimumNotMet:    {},
	CodeCouponLimitReached:     {},
	CodeCouponRequiresUser:     {},
	CodeCouponUserLimitReached: {},
	CodeCouponNotAllowed:       {},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// IsCouponCode reports whether the code belongs to the coupon validation family.
func IsCouponCode(code Code) bool {
	_, ok := couponCodes[code]
	return ok
}

// IsBusiness reports whether the code is a known, user-facing business failure as
// opposed to an internal or dependency failure.
func IsBusiness(code Code) bool {
	switch code {
	case CodeInternal, CodeDependency:
		return false
	}
	_, ok := metadataByCode[code]
	return ok
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether err carries the provided code anywhere in its chain.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

package e

import "net/http"

// business codes
const (
	SUCCESS        = 0
	ERROR          = 1
	INVALID_PARAMS = 2

	ERROR_AUTH_CHECK_TOKEN_FAIL    = 10001
	ERROR_AUTH_CHECK_TOKEN_TIMEOUT = 10002
	ERROR_AUTH_TOKEN               = 10003
	ERROR_AUTH                     = 10004
	ERROR_ADMIN_REQUIRED           = 10005

	ERROR_USER_EXISTS     = 20001
	ERROR_USER_NOT_EXISTS = 20002
	ERROR_PASSWORD        = 20003

	ERROR_PRODUCT_NOT_EXISTS = 30001
	ERROR_STOCK_NOT_ENOUGH   = 30002

	ERROR_CART_EMPTY           = 40001
	ERROR_GUEST_EMAIL_REQUIRED = 40002
	ERROR_ORDER_NOT_EXISTS     = 40003
	ERROR_ORDER_STATUS_CHANGED = 40004
	ERROR_ORDER_FORBIDDEN      = 40005
)

var MsgFlags = map[int]string{
	SUCCESS:        "success",
	ERROR:          "internal error",
	INVALID_PARAMS: "invalid request parameters",

	ERROR_AUTH_CHECK_TOKEN_FAIL:    "token verification failed",
	ERROR_AUTH_CHECK_TOKEN_TIMEOUT: "token expired",
	ERROR_AUTH_TOKEN:               "token generation failed",
	ERROR_AUTH:                     "authentication required",
	ERROR_ADMIN_REQUIRED:           "admin access required",

	ERROR_USER_EXISTS:     "user already exists",
	ERROR_USER_NOT_EXISTS: "user does not exist",
	ERROR_PASSWORD:        "wrong password",

	ERROR_PRODUCT_NOT_EXISTS: "product does not exist",
	ERROR_STOCK_NOT_ENOUGH:   "product out of stock or insufficient quantity",

	ERROR_CART_EMPTY:           "cart is empty",
	ERROR_GUEST_EMAIL_REQUIRED: "guest email is required",
	ERROR_ORDER_NOT_EXISTS:     "order does not exist",
	ERROR_ORDER_STATUS_CHANGED: "order status has changed",
	ERROR_ORDER_FORBIDDEN:      "no access to this order",
}

// statusFlags maps business codes to HTTP status codes. This service speaks
// only HTTP, so the mapping lives next to the codes.
var statusFlags = map[int]int{
	SUCCESS:        http.StatusOK,
	ERROR:          http.StatusInternalServerError,
	INVALID_PARAMS: http.StatusBadRequest,

	ERROR_AUTH_CHECK_TOKEN_FAIL:    http.StatusUnauthorized,
	ERROR_AUTH_CHECK_TOKEN_TIMEOUT: http.StatusUnauthorized,
	ERROR_AUTH_TOKEN:               http.StatusInternalServerError,
	ERROR_AUTH:                     http.StatusUnauthorized,
	ERROR_ADMIN_REQUIRED:           http.StatusForbidden,

	ERROR_USER_EXISTS:     http.StatusConflict,
	ERROR_USER_NOT_EXISTS: http.StatusNotFound,
	ERROR_PASSWORD:        http.StatusUnauthorized,

	ERROR_PRODUCT_NOT_EXISTS: http.StatusNotFound,
	ERROR_STOCK_NOT_ENOUGH:   http.StatusConflict,

	ERROR_CART_EMPTY:           http.StatusBadRequest,
	ERROR_GUEST_EMAIL_REQUIRED: http.StatusBadRequest,
	ERROR_ORDER_NOT_EXISTS:     http.StatusNotFound,
	ERROR_ORDER_STATUS_CHANGED: http.StatusConflict,
	ERROR_ORDER_FORBIDDEN:      http.StatusForbidden,
}

func GetMsg(code int) string {
	msg, ok := MsgFlags[code]
	if ok {
		return msg
	}
	return MsgFlags[ERROR]
}

// GetHTTPStatus returns the HTTP status for a business code
func GetHTTPStatus(code int) int {
	if status, ok := statusFlags[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

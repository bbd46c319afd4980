package oauth

// ErrorCode is surfaced to the browser as the error query parameter when a
// login cannot complete.
type ErrorCode string

const (
	ErrorCodeAuthFailed          ErrorCode = "auth_failed"
	ErrorCodeTokenExchangeFailed ErrorCode = "token_exchange_failed"
	ErrorCodeUserIDMissing       ErrorCode = "user_id_missing"
	ErrorCodeDBTokenSaveFailed   ErrorCode = "db_token_save_failed"
	ErrorCodeCallbackException   ErrorCode = "oauth_callback_exception"
	ErrorCodeAuthRedirectFailed  ErrorCode = "auth_redirect_failed"
	ErrorCodeNotLoggedIn         ErrorCode = "not_logged_in"
)

const (
	ReasonNoCode        = "no_code"
	ReasonInvalidState  = "invalid_state"
	ReasonRequestFailed = "request_failed"
)

const (
	ParamCode             = "code"
	ParamState            = "state"
	ParamError            = "error"
	ParamErrorDescription = "error_description"
	ParamReason           = "reason"
)

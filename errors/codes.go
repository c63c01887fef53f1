package errors

// ErrorCode is the machine readable code returned in error bodies.
type ErrorCode int32

const (
	ErrorCode_UNSPECIFIED ErrorCode = 0

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS    ErrorCode = 1003
	ErrorCode_PERMISSION_DENIED ErrorCode = 1004
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1005
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1006
	ErrorCode_PAYLOAD_TOO_LARGE ErrorCode = 1007

	// Auth
	ErrorCode_AUTH_INVALID_TOKEN       ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED       ErrorCode = 2001
	ErrorCode_AUTH_INVALID_CREDENTIALS ErrorCode = 2002
	ErrorCode_AUTH_USER_NOT_FOUND      ErrorCode = 2003
	ErrorCode_AUTH_USER_ALREADY_EXISTS ErrorCode = 2004
	ErrorCode_AUTH_SESSION_REVOKED     ErrorCode = 2005

	// Organizations and sales reps
	ErrorCode_ORG_NOT_FOUND           ErrorCode = 3000
	ErrorCode_ORG_ACCESS_DENIED       ErrorCode = 3001
	ErrorCode_ORG_REQUIRED            ErrorCode = 3002
	ErrorCode_SALES_REP_NOT_FOUND     ErrorCode = 3100
	ErrorCode_SALES_REP_ACCESS_DENIED ErrorCode = 3101

	// Calls and insights
	ErrorCode_CALL_LOG_NOT_FOUND      ErrorCode = 4000
	ErrorCode_TRANSCRIPT_NOT_FOUND    ErrorCode = 4001
	ErrorCode_TRANSCRIPT_MISSING      ErrorCode = 4002
	ErrorCode_INSIGHTS_NOT_FOUND      ErrorCode = 4003
	ErrorCode_INSIGHTS_FAILED         ErrorCode = 4004
	ErrorCode_AI_ANALYSIS_FAILED      ErrorCode = 4100
	ErrorCode_AI_TRANSCRIPTION_FAILED ErrorCode = 4101
	ErrorCode_AI_SERVICE_UNAVAILABLE  ErrorCode = 4102
	ErrorCode_REPORT_EXPORT_FAILED    ErrorCode = 4200

	// Integrations
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 5000
	ErrorCode_INTEGRATION_CACHE_FAILED   ErrorCode = 5001
	ErrorCode_WEBHOOK_INVALID_SIGNATURE  ErrorCode = 5003

	// Database
	ErrorCode_DB_CONNECTION_FAILED ErrorCode = 6000
	ErrorCode_DB_QUERY_FAILED      ErrorCode = 6001
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNSPECIFIED:                "UNSPECIFIED",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:             "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:          "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:            "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_PAYLOAD_TOO_LARGE:          "PAYLOAD_TOO_LARGE",
	ErrorCode_AUTH_INVALID_TOKEN:         "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:         "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_INVALID_CREDENTIALS:   "AUTH_INVALID_CREDENTIALS",
	ErrorCode_AUTH_USER_NOT_FOUND:        "AUTH_USER_NOT_FOUND",
	ErrorCode_AUTH_USER_ALREADY_EXISTS:   "AUTH_USER_ALREADY_EXISTS",
	ErrorCode_AUTH_SESSION_REVOKED:       "AUTH_SESSION_REVOKED",
	ErrorCode_ORG_NOT_FOUND:              "ORG_NOT_FOUND",
	ErrorCode_ORG_ACCESS_DENIED:          "ORG_ACCESS_DENIED",
	ErrorCode_ORG_REQUIRED:               "ORG_REQUIRED",
	ErrorCode_SALES_REP_NOT_FOUND:        "SALES_REP_NOT_FOUND",
	ErrorCode_SALES_REP_ACCESS_DENIED:    "SALES_REP_ACCESS_DENIED",
	ErrorCode_CALL_LOG_NOT_FOUND:         "CALL_LOG_NOT_FOUND",
	ErrorCode_TRANSCRIPT_NOT_FOUND:       "TRANSCRIPT_NOT_FOUND",
	ErrorCode_TRANSCRIPT_MISSING:         "TRANSCRIPT_MISSING",
	ErrorCode_INSIGHTS_NOT_FOUND:         "INSIGHTS_NOT_FOUND",
	ErrorCode_INSIGHTS_FAILED:            "INSIGHTS_FAILED",
	ErrorCode_AI_ANALYSIS_FAILED:         "AI_ANALYSIS_FAILED",
	ErrorCode_AI_TRANSCRIPTION_FAILED:    "AI_TRANSCRIPTION_FAILED",
	ErrorCode_AI_SERVICE_UNAVAILABLE:     "AI_SERVICE_UNAVAILABLE",
	ErrorCode_REPORT_EXPORT_FAILED:       "REPORT_EXPORT_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:   "INTEGRATION_CACHE_FAILED",
	ErrorCode_WEBHOOK_INVALID_SIGNATURE:  "WEBHOOK_INVALID_SIGNATURE",
	ErrorCode_DB_CONNECTION_FAILED:       "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

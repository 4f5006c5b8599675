package errors

// ErrorCode identifies a class of application error. Codes are stable and
// machine-readable; clients switch on them instead of parsing messages.
type ErrorCode int32

const (
	ErrorCode_UNSPECIFIED ErrorCode = 0

	// General
	ErrorCode_INTERNAL         ErrorCode = 1
	ErrorCode_INVALID_ARGUMENT ErrorCode = 2
	ErrorCode_NOT_FOUND        ErrorCode = 3
	ErrorCode_ALREADY_EXISTS   ErrorCode = 4
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 5
	ErrorCode_HTTP_OK          ErrorCode = 6

	// Recording job provider
	ErrorCode_JOB_CREATION_FAILED  ErrorCode = 100
	ErrorCode_JOB_NOT_FOUND        ErrorCode = 101
	ErrorCode_JOB_DELETION_FAILED  ErrorCode = 102
	ErrorCode_RECORDING_FAILED     ErrorCode = 103
	ErrorCode_PROVIDER_UNREACHABLE ErrorCode = 104

	// Meeting sessions
	ErrorCode_SESSION_NOT_FOUND      ErrorCode = 200
	ErrorCode_SESSION_ALREADY_ACTIVE ErrorCode = 201
	ErrorCode_SESSION_NOT_COMPLETED  ErrorCode = 202
	ErrorCode_MONITOR_TIMEOUT        ErrorCode = 203

	// Processing
	ErrorCode_TRANSCRIPT_UNAVAILABLE     ErrorCode = 300
	ErrorCode_ARTIFACT_GENERATION_FAILED ErrorCode = 301
	ErrorCode_PERSISTENCE_REJECTED       ErrorCode = 302

	// Knowledge store
	ErrorCode_KNOWLEDGE_INGEST_FAILED ErrorCode = 400
	ErrorCode_KNOWLEDGE_QUERY_FAILED  ErrorCode = 401
	ErrorCode_EMBEDDING_FAILED        ErrorCode = 402

	// Content generation
	ErrorCode_UNKNOWN_CONTENT_KIND ErrorCode = 500
	ErrorCode_COMPLETION_FAILED    ErrorCode = 501

	// Infrastructure
	ErrorCode_DB_QUERY_FAILED     ErrorCode = 600
	ErrorCode_STORAGE_FAILED      ErrorCode = 601
	ErrorCode_EXTERNAL_API_FAILED ErrorCode = 602
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNSPECIFIED:                "UNSPECIFIED",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:             "ALREADY_EXISTS",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_HTTP_OK:                    "OK",
	ErrorCode_JOB_CREATION_FAILED:        "JOB_CREATION_FAILED",
	ErrorCode_JOB_NOT_FOUND:              "JOB_NOT_FOUND",
	ErrorCode_JOB_DELETION_FAILED:        "JOB_DELETION_FAILED",
	ErrorCode_RECORDING_FAILED:           "RECORDING_FAILED",
	ErrorCode_PROVIDER_UNREACHABLE:       "PROVIDER_UNREACHABLE",
	ErrorCode_SESSION_NOT_FOUND:          "SESSION_NOT_FOUND",
	ErrorCode_SESSION_ALREADY_ACTIVE:     "SESSION_ALREADY_ACTIVE",
	ErrorCode_SESSION_NOT_COMPLETED:      "SESSION_NOT_COMPLETED",
	ErrorCode_MONITOR_TIMEOUT:            "MONITOR_TIMEOUT",
	ErrorCode_TRANSCRIPT_UNAVAILABLE:     "TRANSCRIPT_UNAVAILABLE",
	ErrorCode_ARTIFACT_GENERATION_FAILED: "ARTIFACT_GENERATION_FAILED",
	ErrorCode_PERSISTENCE_REJECTED:       "PERSISTENCE_REJECTED",
	ErrorCode_KNOWLEDGE_INGEST_FAILED:    "KNOWLEDGE_INGEST_FAILED",
	ErrorCode_KNOWLEDGE_QUERY_FAILED:     "KNOWLEDGE_QUERY_FAILED",
	ErrorCode_EMBEDDING_FAILED:           "EMBEDDING_FAILED",
	ErrorCode_UNKNOWN_CONTENT_KIND:       "UNKNOWN_CONTENT_KIND",
	ErrorCode_COMPLETION_FAILED:          "COMPLETION_FAILED",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
	ErrorCode_STORAGE_FAILED:             "STORAGE_FAILED",
	ErrorCode_EXTERNAL_API_FAILED:        "EXTERNAL_API_FAILED",
}

// String returns the stable name for the code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

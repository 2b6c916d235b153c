package constants

// Common error messages
const (
	ErrInvalidJSON        = "invalid json or missing fields"
	ErrInvalidRequestBody = "Invalid request body"
	ErrMethodNotAllowed   = "Method Not Allowed"
	ErrInvalidHorizon     = "horizon must be an integer between 0 and %d"
	ErrInvalidDate        = "%s must be a date in YYYY-MM-DD format"
	ErrInvalidAmount      = "%s must be a number"
	ErrSnapshotLoad       = "ledger snapshot could not be loaded"
	ErrConfigSave         = "configuration could not be saved"
	ErrExportFailed       = "workbook could not be generated"
	ErrStreamUnsupported  = "Streaming unsupported"
)

// Content Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "Content-Type"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeSSE  = "text/event-stream"
)

// Headers
const (
	HeaderAccessControlAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAccessControlAllowHeaders = "Access-Control-Allow-Headers"
	HeaderAccessControlAllowMethods = "Access-Control-Allow-Methods"
	HeaderContentDisposition        = "Content-Disposition"
	HeaderCacheControl              = "Cache-Control"
)

// Query parameters
const (
	QueryHorizon = "horizon"
	QueryStart   = "start"
	QueryOpening = "opening"
	QueryAsOf    = "as_of"
)

// Date formats
const (
	DateTimeFormat = "2006-01-02 15:04:05"
	DateFormat     = "2006-01-02"
)

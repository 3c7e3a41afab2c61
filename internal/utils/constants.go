package utils

const (
	DefaultAppName = "intake-service"

	EnvDevelopment = "development"

	HeaderRequestID = "X-Request-ID"

	// ISOMillisLayout is ISO-8601 with millisecond precision, e.g. 2024-05-01T12:00:00.000Z.
	ISOMillisLayout = "2006-01-02T15:04:05.000Z07:00"
)

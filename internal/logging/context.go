package logging

import "context"

type logDataKey struct{}

// ContextWithLogData attaches request-scoped log data to the context.
func ContextWithLogData(ctx context.Context, logData *LogData) context.Context {
	return context.WithValue(ctx, logDataKey{}, logData)
}

// GetLogData returns the request's log data, or nil when the request did
// not pass through the logging middleware. Callers must tolerate nil.
func GetLogData(ctx context.Context) *LogData {
	logData, _ := ctx.Value(logDataKey{}).(*LogData)
	return logData
}

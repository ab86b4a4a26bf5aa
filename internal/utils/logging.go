package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TraceIDKey 日志字段和context键名
const TraceIDKey = "traceId"

type traceIDCtxKey struct{}

// InitLogging 配置logrus全局日志：级别、格式和输出
func InitLogging(level, format string, out io.Writer) {
	if out == nil {
		out = os.Stderr
	}
	logrus.SetOutput(out)
	logrus.SetLevel(ParseLevel(level))

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006/01/02 15:04:05",
			DisableColors:   true,
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				return "", fmt.Sprintf("%s:%d", f.File, f.Line)
			},
		})
	}
	logrus.SetReportCaller(logrus.GetLevel() >= logrus.DebugLevel)
}

// ParseLevel 解析日志级别，无效值回退到info
func ParseLevel(raw string) logrus.Level {
	level, err := logrus.ParseLevel(strings.TrimSpace(raw))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// GenerateTraceID 生成TraceID
func GenerateTraceID() string {
	return uuid.NewString()
}

// WithTraceID 将TraceID添加到context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDCtxKey{}, traceID)
}

// GetTraceIDFromContext 从context获取TraceID
func GetTraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDCtxKey{}).(string); ok {
		return traceID
	}
	return ""
}

// LoggerFromContext 返回带TraceID字段的日志入口
func LoggerFromContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(logrus.StandardLogger())
	if traceID := GetTraceIDFromContext(ctx); traceID != "" {
		entry = entry.WithField(TraceIDKey, traceID)
	}
	return entry
}

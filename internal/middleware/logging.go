package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor logs every RPC with its procedure, caller, result code and duration.
// Client-side failures log at WARN, server-side failures at ERROR.
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()

			resp, err := next(ctx, req)

			attrs := []slog.Attr{
				slog.String("procedure", req.Spec().Procedure),
				slog.String("user_id", GetUserID(ctx)),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			if err == nil {
				logger.LogAttrs(ctx, slog.LevelInfo, "RPC ok", attrs...)
				return resp, nil
			}

			code := connect.CodeOf(err)
			attrs = append(attrs, slog.String("code", code.String()))
			var connectErr *connect.Error
			if errors.As(err, &connectErr) {
				attrs = append(attrs, slog.String("error", connectErr.Message()))
			} else {
				attrs = append(attrs, slog.Any("error", err))
			}
			logger.LogAttrs(ctx, levelFor(code), "RPC error", attrs...)
			return resp, err
		}
	}
}

func levelFor(code connect.Code) slog.Level {
	switch code {
	case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodeAlreadyExists,
		connect.CodeUnauthenticated, connect.CodePermissionDenied, connect.CodeCanceled:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

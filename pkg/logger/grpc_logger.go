package logger

import (
	"context"
	"path"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewGrpcUnaryServerInterceptor logs every unary call.
func NewGrpcUnaryServerInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		startTime := time.Now()
		service, method := splitMethod(info.FullMethod)

		resp, err = handler(ctx, req)

		logGrpcResult(logger, "gRPC request", err,
			zap.String("grpc.service", service),
			zap.String("grpc.method", method),
			zap.Duration("grpc.duration", time.Since(startTime)),
		)
		return resp, err
	}
}

// NewGrpcStreamServerInterceptor logs every streaming call with message counts.
func NewGrpcStreamServerInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		startTime := time.Now()
		service, method := splitMethod(info.FullMethod)

		logger.Debug("gRPC stream started",
			zap.String("grpc.service", service),
			zap.String("grpc.method", method),
			zap.Bool("grpc.is_client_stream", info.IsClientStream),
			zap.Bool("grpc.is_server_stream", info.IsServerStream),
		)

		wrappedStream := &wrappedServerStream{ServerStream: ss}
		err := handler(srv, wrappedStream)

		logGrpcResult(logger, "gRPC stream", err,
			zap.String("grpc.service", service),
			zap.String("grpc.method", method),
			zap.Int("grpc.recv_count", wrappedStream.recvCount),
			zap.Int("grpc.send_count", wrappedStream.sendCount),
			zap.Duration("grpc.duration", time.Since(startTime)),
		)
		return err
	}
}

func splitMethod(fullMethod string) (string, string) {
	return path.Dir(fullMethod)[1:], path.Base(fullMethod)
}

// logGrpcResult picks the level from the status code. Transient codes are Warn.
func logGrpcResult(logger *zap.Logger, msg string, err error, fields ...zap.Field) {
	statusCode := codes.OK
	if err != nil {
		if st, ok := status.FromError(err); ok {
			statusCode = st.Code()
		} else {
			statusCode = codes.Unknown
		}
	}
	fields = append(fields, zap.String("grpc.code", statusCode.String()))

	switch statusCode {
	case codes.OK:
		logger.Info(msg+" completed", fields...)
	case codes.Canceled, codes.DeadlineExceeded, codes.ResourceExhausted,
		codes.Aborted, codes.Unavailable, codes.DataLoss:
		logger.Warn(msg+" failed", append(fields, zap.Error(err))...)
	default:
		logger.Error(msg+" error", append(fields, zap.Error(err))...)
	}
}

// wrappedServerStream counts messages in each direction.
type wrappedServerStream struct {
	grpc.ServerStream
	recvCount int
	sendCount int
}

func (w *wrappedServerStream) RecvMsg(m interface{}) error {
	err := w.ServerStream.RecvMsg(m)
	if err == nil {
		w.recvCount++
	}
	return err
}

func (w *wrappedServerStream) SendMsg(m interface{}) error {
	err := w.ServerStream.SendMsg(m)
	if err == nil {
		w.sendCount++
	}
	return err
}

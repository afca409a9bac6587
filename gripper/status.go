package gripper

import (
	"context"

	"github.com/teranos/gripterra/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps an error onto the gRPC status a client sees.
func toStatus(err error) *status.Status {
	switch {
	case err == nil:
		return status.New(codes.OK, "")
	case errors.IsNotFoundError(err):
		return status.New(codes.NotFound, err.Error())
	case errors.IsInvalidPathError(err):
		return status.New(codes.InvalidArgument, err.Error())
	case errors.IsUpstreamUnavailableError(err):
		return status.New(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.New(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.New(codes.DeadlineExceeded, err.Error())
	}
	if st, ok := status.FromError(err); ok {
		return st
	}
	return status.New(codes.Internal, err.Error())
}

// replyError renders a per-request failure for Row.Error.
func replyError(err error) string {
	st := toStatus(err)
	return st.Code().String() + ": " + st.Message()
}

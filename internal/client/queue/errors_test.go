package queue

import (
	"context"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/vibecast/vibecast/internal/common"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"audio missing", fmt.Errorf("task x: %w", common.ErrAudioMissing), MsgAudioMissing},
		{"audio empty", fmt.Errorf("task x: %w", common.ErrAudioEmpty), MsgAudioEmpty},
		{"no connection sentinel", common.ErrNoConnection, MsgNoConnection},
		{"connection refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, MsgNoConnection},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "api.test"}, MsgNoConnection},
		{"timeout sentinel", fmt.Errorf("request: %w", common.ErrTimeout), MsgTimeout},
		{"context deadline", context.DeadlineExceeded, MsgTimeout},
		{"permission sentinel", common.ErrPermissionDenied, MsgPermissionDenied},
		{"permission os", os.ErrPermission, MsgPermissionDenied},
		{"quota", common.ErrQuotaExceeded, MsgQuotaExceeded},
		{"unknown", fmt.Errorf("something odd"), MsgGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Fatalf("ClassifyError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

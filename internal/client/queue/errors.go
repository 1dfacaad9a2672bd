package queue

import (
	"errors"
	"os"

	"github.com/vibecast/vibecast/internal/common"
	"github.com/vibecast/vibecast/internal/netx"
)

// User-facing failure messages. The sender sees one of these; internal
// exception detail is logged, never shown.
const (
	MsgNoConnection     = "No internet connection"
	MsgPermissionDenied = "Permission denied"
	MsgTimeout          = "Request timed out"
	MsgQuotaExceeded    = "Storage limit reached"
	MsgAudioMissing     = "Audio file missing"
	MsgAudioEmpty       = "Audio file empty"
	MsgGeneric          = "Failed to send"
)

// ClassifyError maps a pipeline failure onto its user-facing message.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, common.ErrAudioEmpty):
		return MsgAudioEmpty
	case errors.Is(err, common.ErrAudioMissing):
		return MsgAudioMissing
	case errors.Is(err, common.ErrNoConnection) || netx.IsConnectionError(err):
		return MsgNoConnection
	case errors.Is(err, common.ErrTimeout) || netx.IsTimeoutError(err):
		return MsgTimeout
	case errors.Is(err, common.ErrPermissionDenied) || os.IsPermission(err):
		return MsgPermissionDenied
	case errors.Is(err, common.ErrQuotaExceeded):
		return MsgQuotaExceeded
	default:
		return MsgGeneric
	}
}

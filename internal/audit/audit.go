package audit

import (
	"context"

	"github.com/deiparinemarwen-tech/AletheianDocs/pkg/log"
)

// Audit actions for the chat subsystem.
const (
	ActionJoinRoom       = "chat.join_room"
	ActionSendMessage    = "chat.send_message"
	ActionDisconnect     = "chat.disconnect"
	ActionModerateDelete = "chat.moderate_delete"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, username string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUsername, username).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, username string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUsername, username).
		Str(FieldDetail, detail).
		Msg(msg)
}

// LogWithTarget emits an audit log naming the entity acted on.
func LogWithTarget(ctx context.Context, action string, username string, targetID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUsername, username).
		Str(FieldTargetID, targetID).
		Msg(msg)
}

package taskcore

import (
	"context"
	"time"
)

const (
	auditEventRegisterSuccess   = "register_success"
	auditEventRegisterDuplicate = "register_duplicate"
	auditEventLoginSuccess      = "login_success"
	auditEventLoginFailure      = "login_failure"
	auditEventRefreshSuccess    = "refresh_success"
	auditEventRefreshInvalid    = "refresh_invalid"
	auditEventRefreshRevoked    = "refresh_revoked"
	auditEventLogout            = "logout"
	auditEventAccessDenied      = "access_denied"
	auditEventTaskCreated       = "task_created"
	auditEventTaskUpdated       = "task_updated"
	auditEventTaskDeleted       = "task_deleted"
)

func (e *Engine) auditEmit(ctx context.Context, eventType, userID, taskID string, success bool, err error) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		TaskID:    taskID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}

	e.audit.Emit(ctx, event)
}

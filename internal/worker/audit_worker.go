package worker

import (
	"github.com/rtcstack/rtc-token-service/internal/service"
)

// StartAuditWorker registers issuance audit handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}

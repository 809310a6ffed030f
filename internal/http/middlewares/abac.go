package middlewares

import (
	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// PriorityRequester is implemented by payloads that may carry a task priority.
type PriorityRequester interface {
	RequestedPriority() *string
}

// CanAssignHighPriority refuses priority "high" from callers below Manager.
// It reads the validated payload when one is attached, else peeks the JSON body.
func (m *AuthMiddleware) CanAssignHighPriority() gin.HandlerFunc {
	return func(c *gin.Context) {
		var caller *authz.Identity
		if id, ok := Identity(c); ok {
			caller = &id
		}

		if err := authz.CanAssignPriority(caller, requestedPriority(c)); err != nil {
			m.deny(c, "high_priority", err)
			return
		}

		m.allow(c, "high_priority")
		c.Next()
	}
}

func requestedPriority(c *gin.Context) *string {
	if body, ok := Body(c); ok {
		if pr, ok := body.(PriorityRequester); ok {
			return pr.RequestedPriority()
		}
	}

	var probe struct {
		Priority *string `json:"priority"`
	}
	if err := c.ShouldBindBodyWith(&probe, binding.JSON); err != nil {
		return nil
	}
	return probe.Priority
}

// CanViewTask admits any authenticated caller; Employees are narrowed to their
// own tasks by the handler once the record is loaded.
func (m *AuthMiddleware) CanViewTask() gin.HandlerFunc {
	return m.taskScopeGate("view_task_scope")
}

// CanUpdateTask admits any authenticated caller; ownership is enforced by the
// handler once the record is loaded.
func (m *AuthMiddleware) CanUpdateTask() gin.HandlerFunc {
	return m.taskScopeGate("update_task_scope")
}

func (m *AuthMiddleware) taskScopeGate(gate string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Identity(c); !ok {
			m.deny(c, gate, &authz.Denial{Kind: authz.Unauthenticated, Message: authz.MsgAuthRequired})
			return
		}
		m.allow(c, gate)
		c.Next()
	}
}

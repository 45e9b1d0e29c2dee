package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-hub-api/internal/authz"
	"github.com/noah-isme/thesis-hub-api/internal/middleware"
	"github.com/noah-isme/thesis-hub-api/internal/models"
	"github.com/noah-isme/thesis-hub-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth      *AuthHandler
	Principal *PrincipalHandler
	Semester  *SemesterHandler
	Topic     *TopicHandler
	Role      *RoleHandler
	Audit     *AuditHandler
	Metrics   *MetricsHandler
}

// RegisterRoutes mounts the API surface on the router group. Every
// authenticated route passes through JWT validation first; mutating routes
// additionally pass through the RBAC layer keyed by action.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, authSvc *service.AuthService, auditSvc *service.AuditService, rbac *middleware.RBAC) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), h.Auth.Logout)
	}

	principals := api.Group("/principals", middleware.JWT(authSvc))
	{
		principals.GET("", rbac.Require(authz.ActionManagePrincipals), h.Principal.List)
		principals.GET("/:id", rbac.Require(authz.ActionManagePrincipals), h.Principal.Get)
		principals.POST("", rbac.Require(authz.ActionManagePrincipals), h.Principal.Create)
		principals.PUT("/:id", rbac.Require(authz.ActionManagePrincipals), h.Principal.Update)
		principals.DELETE("/:id", rbac.Require(authz.ActionManagePrincipals), h.Principal.Delete)
		principals.POST("/:id/restore", rbac.Require(authz.ActionManagePrincipals), h.Principal.Restore)
		principals.GET("/:id/roles", rbac.Require(authz.ActionManageRoles), h.Role.ListForPrincipal)
	}

	roles := api.Group("/roles", middleware.JWT(authSvc))
	{
		roles.POST("", rbac.Require(authz.ActionManageRoles), h.Role.Grant)
		roles.DELETE("/:id", rbac.Require(authz.ActionManageRoles), h.Role.Revoke)
	}

	semesters := api.Group("/semesters", middleware.JWT(authSvc))
	{
		semesters.GET("", h.Semester.List)
		semesters.GET("/:id", h.Semester.Get)
		semesters.POST("", rbac.Require(authz.ActionManageSemesters), h.Semester.Create)
		semesters.PUT("/:id", rbac.Require(authz.ActionManageSemesters), h.Semester.Update)
		semesters.DELETE("/:id", rbac.Require(authz.ActionManageSemesters), h.Semester.Delete)
		semesters.POST("/:id/restore", rbac.Require(authz.ActionManageSemesters), h.Semester.Restore)
	}

	topics := api.Group("/topics", middleware.JWT(authSvc))
	{
		topics.GET("", h.Topic.List)
		topics.GET("/:id", h.Topic.Get)
		topics.POST("", rbac.Require(authz.ActionManageTopics), h.Topic.Create)
		topics.PUT("/:id", rbac.Require(authz.ActionManageTopics), h.Topic.Update)
		topics.DELETE("/:id", rbac.Require(authz.ActionManageTopics), h.Topic.Delete)
		topics.POST("/:id/restore", rbac.Require(authz.ActionManageTopics), h.Topic.Restore)
	}

	audit := api.Group("/audit", middleware.JWT(authSvc), rbac.Require(authz.ActionViewAudit))
	{
		audit.GET("", h.Audit.List)
		audit.GET("/:entity_type/:entity_id/export",
			middleware.Audit(auditSvc, models.AuditActionAuditExport, "audit_trail"), h.Audit.ExportTrail)
	}

	api.GET("/metrics/snapshot", middleware.JWT(authSvc), rbac.Require(authz.ActionViewAudit), h.Metrics.Snapshot)
}

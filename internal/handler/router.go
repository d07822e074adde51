package handler

import (
	"github.com/gin-gonic/gin"
)

// Routes groups the handlers mounted under the API prefix. Nil handlers leave their
// routes unregistered, which is how disabled features (plan store, exports) disappear.
type Routes struct {
	Health      *HealthHandler
	Roster      *RosterHandler
	Seating     *SeatingHandler
	Duties      *DutyHandler
	SeatingPlan *SeatingPlanHandler
	Exports     *ExportHandler
}

// Register mounts every configured route on group.
func (r Routes) Register(group *gin.RouterGroup) {
	if r.Health != nil {
		group.GET("/health", r.Health.Health)
		group.GET("/ready", r.Health.Ready)
	}
	if r.Roster != nil {
		group.POST("/roster/parse", r.Roster.Parse)
		group.POST("/roster/upload", r.Roster.Upload)
	}
	if r.Seating != nil {
		group.POST("/seating/allocate", r.Seating.Allocate)
	}
	if r.Duties != nil {
		group.POST("/invigilators/allocate", r.Duties.Allocate)
		group.POST("/invigilators/allocate/pdf", r.Duties.PDF)
	}
	if r.SeatingPlan != nil {
		plans := group.Group("/seating-plans")
		plans.GET("", r.SeatingPlan.List)
		plans.GET("/:id", r.SeatingPlan.Get)
		plans.DELETE("/:id", r.SeatingPlan.Delete)
		if r.Exports != nil {
			plans.POST("/:id/exports", r.Exports.Create)
		}
	}
	if r.Exports != nil {
		group.GET("/exports/download/:token", r.Exports.Download)
		group.GET("/exports/:id", r.Exports.Status)
	}
}

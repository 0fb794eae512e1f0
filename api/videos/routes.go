package videos

import (
	"github.com/gin-gonic/gin"
	"github.com/vidslice/vidslice-api/api/types"
)

// RegisterRoutes registers video routes on the given group
func RegisterRoutes(group *gin.RouterGroup, deps *types.Dependencies) {
	group.POST("", Upload(deps))
	group.POST("/youtube", FromYouTube(deps))
	group.POST("/url", FromURL(deps))
	group.GET("", List(deps))
	group.GET("/:id", Get(deps))
	group.DELETE("/:id", Delete(deps))
}

package subtitles

import (
	"github.com/gin-gonic/gin"
	"github.com/vidslice/vidslice-api/api/types"
)

// RegisterRoutes registers subtitle embed routes on the videos group
func RegisterRoutes(group *gin.RouterGroup, deps *types.Dependencies) {
	group.POST("/:id/embed", Embed(deps))
	group.GET("/:id/embed", GetStatus(deps))
	group.GET("/:id/embed/download", Download(deps))
}

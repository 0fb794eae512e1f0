package transcription

import (
	"github.com/gin-gonic/gin"
	"github.com/vidslice/vidslice-api/api/types"
)

// RegisterRoutes registers transcription routes on the videos group
func RegisterRoutes(group *gin.RouterGroup, deps *types.Dependencies) {
	group.POST("/:id/transcription", Start(deps))
	group.GET("/:id/transcription", GetStatus(deps))
	group.GET("/:id/transcription/download", Download(deps))
}

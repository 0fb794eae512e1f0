package segments

import (
	"github.com/gin-gonic/gin"
	"github.com/vidslice/vidslice-api/api/types"
)

// RegisterRoutes registers split and segment routes on the videos group
func RegisterRoutes(group *gin.RouterGroup, deps *types.Dependencies) {
	group.POST("/:id/split", Split(deps))
	group.GET("/:id/segments", List(deps))
	group.GET("/:id/segments/:part/video", DownloadVideo(deps))
	group.GET("/:id/segments/:part/subtitles", DownloadSubtitles(deps))
}

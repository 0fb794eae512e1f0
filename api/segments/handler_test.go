package segments_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apisegments "github.com/vidslice/vidslice-api/api/segments"
	"github.com/vidslice/vidslice-api/api/types"
	"github.com/vidslice/vidslice-api/internal/models"
	"github.com/vidslice/vidslice-api/internal/services/segmenter"
	videosvc "github.com/vidslice/vidslice-api/internal/services/videos"
	"github.com/vidslice/vidslice-api/pkg/download"
	"github.com/vidslice/vidslice-api/pkg/ffmpeg"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeProber struct {
	duration float64
}

func (p fakeProber) ProbeDuration(ctx context.Context, path string) (float64, error) {
	return p.duration, nil
}

// fakeCutter writes a placeholder file instead of running ffmpeg
type fakeCutter struct{}

func (fakeCutter) CutSegment(ctx context.Context, videoPath, outPath string, start, duration float64, quality ffmpeg.Quality) error {
	return os.WriteFile(outPath, []byte("segment"), 0644)
}

type segmentsSuite struct {
	router       *gin.Engine
	videoService videosvc.Service
}

func setupSegmentsSuite(t *testing.T) *segmentsSuite {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, db.AutoMigrate(&models.Video{}, &models.Segment{}))

	videoService := videosvc.NewService(videosvc.NewRepository(db), fakeProber{duration: 60}, t.TempDir(), download.Options{})
	segmenterService := segmenter.NewService(segmenter.NewRepository(db), videoService, fakeCutter{}, 20)

	deps := &types.Dependencies{
		VideoService:     videoService,
		SegmenterService: segmenterService,
	}

	router := gin.New()
	apisegments.RegisterRoutes(router.Group("/videos"), deps)

	return &segmentsSuite{router: router, videoService: videoService}
}

func (s *segmentsSuite) registerVideo(t *testing.T) *models.Video {
	video, err := s.videoService.RegisterUpload(context.Background(), "clip.mp4", bytes.NewReader([]byte("fake video bytes")))
	require.NoError(t, err)
	return video
}

func (s *segmentsSuite) postSplit(t *testing.T, videoID, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/videos/"+videoID+"/split", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)
	return w
}

type splitResponse struct {
	Segments []types.SegmentResponse `json:"segments"`
}

func TestSplit(t *testing.T) {
	suite := setupSegmentsSuite(t)
	video := suite.registerVideo(t)

	t.Run("equal parts", func(t *testing.T) {
		w := suite.postSplit(t, video.ID, `{"parts":3}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp splitResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Segments, 3)
		assert.Equal(t, 1, resp.Segments[0].Part)
		assert.Equal(t, 0.0, resp.Segments[0].StartSeconds)
		assert.Equal(t, 60.0, resp.Segments[2].EndSeconds)
	})

	t.Run("timestamps", func(t *testing.T) {
		w := suite.postSplit(t, video.ID, `{"timestamps":[15,45]}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp splitResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Segments, 3)
		assert.Equal(t, 15.0, resp.Segments[1].StartSeconds)
		assert.Equal(t, 45.0, resp.Segments[1].EndSeconds)
	})

	t.Run("parts and timestamps together", func(t *testing.T) {
		w := suite.postSplit(t, video.ID, `{"parts":2,"timestamps":[30]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("neither parts nor timestamps", func(t *testing.T) {
		w := suite.postSplit(t, video.ID, `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("single part rejected", func(t *testing.T) {
		w := suite.postSplit(t, video.ID, `{"parts":1}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("invalid quality", func(t *testing.T) {
		w := suite.postSplit(t, video.ID, `{"parts":2,"quality":"ultra"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown video", func(t *testing.T) {
		w := suite.postSplit(t, "no-such-id", `{"parts":2}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListSegments(t *testing.T) {
	suite := setupSegmentsSuite(t)
	video := suite.registerVideo(t)

	t.Run("before splitting", func(t *testing.T) {
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/videos/"+video.ID+"/segments", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp splitResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Segments)
	})

	t.Run("resplit replaces segments", func(t *testing.T) {
		require.Equal(t, http.StatusOK, suite.postSplit(t, video.ID, `{"parts":4}`).Code)
		require.Equal(t, http.StatusOK, suite.postSplit(t, video.ID, `{"parts":2}`).Code)

		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/videos/"+video.ID+"/segments", nil))

		var resp splitResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Segments, 2)
	})
}

func TestDownloadSegment(t *testing.T) {
	suite := setupSegmentsSuite(t)
	video := suite.registerVideo(t)
	require.Equal(t, http.StatusOK, suite.postSplit(t, video.ID, `{"parts":2}`).Code)

	t.Run("video file", func(t *testing.T) {
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/videos/"+video.ID+"/segments/1/video", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "segment", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Disposition"), "part_01.mp4")
	})

	t.Run("no subtitles available", func(t *testing.T) {
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/videos/"+video.ID+"/segments/1/subtitles", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("part out of range", func(t *testing.T) {
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/videos/"+video.ID+"/segments/9/video", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid part", func(t *testing.T) {
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/videos/"+video.ID+"/segments/zero/video", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSplitWithSubtitles(t *testing.T) {
	suite := setupSegmentsSuite(t)
	video := suite.registerVideo(t)

	// Drop a transcription result into the work dir; each part then
	// gets its own rebased SRT.
	srtContent := "1\n00:00:05,000 --> 00:00:10,000\nfirst half\n\n2\n00:00:35,000 --> 00:00:40,000\nsecond half\n"
	require.NoError(t, os.WriteFile(video.WorkDir+"/subtitles.srt", []byte(srtContent), 0644))

	w := suite.postSplit(t, video.ID, `{"parts":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp splitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Segments, 2)
	assert.True(t, resp.Segments[0].HasSubtitles)
	assert.True(t, resp.Segments[1].HasSubtitles)

	// The second part's entry is rebased to start at zero
	dw := httptest.NewRecorder()
	suite.router.ServeHTTP(dw, httptest.NewRequest(http.MethodGet, "/videos/"+video.ID+"/segments/2/subtitles", nil))
	require.Equal(t, http.StatusOK, dw.Code)
	assert.Contains(t, dw.Body.String(), "00:00:05,000 --> 00:00:10,000")
	assert.Contains(t, dw.Body.String(), "second half")
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	videodomain "github.com/kairahstudio/kairah/internal/video/domain"
)

func (s *Server) GenerateVideo(c *gin.Context) {
	var req videodomain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.videosvc.Generate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if resp.PaymentRequired {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"message": resp.Message,
			"price":   resp.Price,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   resp.Message,
		"video":     resp.Video,
		"video_url": resp.Video.URL,
	})
}

func (s *Server) DownloadVideo(c *gin.Context) {
	var req videodomain.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.videosvc.Download(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": resp.URL})
}

func (s *Server) ListUserVideos(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	videos, err := s.videosvc.ListByEmail(c.Request.Context(), email)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

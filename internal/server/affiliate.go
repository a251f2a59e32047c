package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) AffiliateEarnings(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	// The owning user must exist before an account is provisioned.
	if _, err := s.usersvc.Get(c.Request.Context(), email); err != nil {
		AbortWithError(c, err)
		return
	}

	earnings, err := s.affiliatesvc.GetEarningsByEmail(c.Request.Context(), email)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, earnings)
}

func (s *Server) AffiliateByCode(c *gin.Context) {
	earnings, err := s.affiliatesvc.GetEarnings(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, earnings)
}

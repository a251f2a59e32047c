package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	userdomain "github.com/kairahstudio/kairah/internal/user/domain"
)

func (s *Server) Signup(c *gin.Context) {
	var req userdomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.usersvc.Register(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "signup success",
		"user":          resp.User,
		"referral_code": resp.ReferralCode,
	})
}

func (s *Server) Login(c *gin.Context) {
	var req userdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user, err := s.usersvc.Login(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "login success",
		"user":    user,
	})
}

func (s *Server) GetUser(c *gin.Context) {
	user, err := s.usersvc.Get(c.Request.Context(), c.Param("email"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	affiliatedomain "github.com/kairahstudio/kairah/internal/affiliate/domain"
	paymentdomain "github.com/kairahstudio/kairah/internal/payment/domain"
	snapshotdomain "github.com/kairahstudio/kairah/internal/snapshot/domain"
)

func (s *Server) AdminConfirmPayment(c *gin.Context) {
	var req paymentdomain.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.paymentsvc.Confirm(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) AdminPayout(c *gin.Context) {
	var req affiliatedomain.PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	payout, err := s.affiliatesvc.Payout(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payout": payout})
}

// AdminExport dumps one entity table as JSON or CSV.
func (s *Server) AdminExport(c *gin.Context) {
	entity := c.Param("entity")
	format := c.DefaultQuery("format", "json")
	ctx := c.Request.Context()

	switch entity {
	case "users":
		users, err := s.usersvc.List(ctx)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if format == "csv" {
			header := []string{"email", "display_name", "plan", "referral_code", "referred_by", "generated_videos", "downloads", "fame_booster_paid", "created_at"}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{
					u.Email, u.DisplayName, u.Plan, u.ReferralCode, u.ReferredBy,
					strconv.Itoa(u.GeneratedVideos), strconv.Itoa(u.Downloads),
					strconv.FormatBool(u.FameBoosterPaid), u.CreatedAt.Format(time.RFC3339),
				})
			}
			writeCSV(c, "users.csv", header, rows)
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
	case "videos":
		videos, err := s.videosvc.List(ctx)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if format == "csv" {
			header := []string{"id", "email", "prompt", "url", "length_seconds", "aspect_ratio", "fame_booster", "created_at"}
			rows := make([][]string, 0, len(videos))
			for _, v := range videos {
				rows = append(rows, []string{
					v.ID.String(), v.Email, v.Prompt, v.URL,
					strconv.Itoa(v.LengthSeconds), v.AspectRatio,
					strconv.FormatBool(v.FameBooster), v.CreatedAt.Format(time.RFC3339),
				})
			}
			writeCSV(c, "videos.csv", header, rows)
			return
		}
		c.JSON(http.StatusOK, gin.H{"videos": videos})
	case "payments":
		payments, err := s.paymentsvc.List(ctx)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if format == "csv" {
			header := []string{"payment_id", "email", "method", "amount", "plan", "status", "created_at"}
			rows := make([][]string, 0, len(payments))
			for _, p := range payments {
				rows = append(rows, []string{
					p.PaymentID, p.Email, p.Method,
					strconv.FormatFloat(p.Amount, 'f', 2, 64),
					p.Plan, string(p.Status), p.CreatedAt.Format(time.RFC3339),
				})
			}
			writeCSV(c, "payments.csv", header, rows)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payments": payments})
	case "affiliates":
		affiliates, err := s.affiliatesvc.List(ctx)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if format == "csv" {
			header := []string{"code", "email", "balance", "bonus_total", "qualified_sales", "milestone_awarded", "referred", "payouts"}
			rows := make([][]string, 0, len(affiliates))
			for _, a := range affiliates {
				rows = append(rows, []string{
					a.Code, a.Email,
					strconv.FormatFloat(a.Balance, 'f', 2, 64),
					strconv.FormatFloat(a.BonusTotal, 'f', 2, 64),
					strconv.Itoa(a.QualifiedSales),
					strconv.FormatBool(a.MilestoneAwarded),
					strconv.Itoa(len(a.Referred)),
					strconv.Itoa(len(a.Payouts)),
				})
			}
			writeCSV(c, "affiliates.csv", header, rows)
			return
		}
		c.JSON(http.StatusOK, gin.H{"affiliates": affiliates})
	default:
		AbortWithError(c, ErrInvalidRequest)
	}
}

func (s *Server) AdminSnapshotExport(c *gin.Context) {
	doc, err := s.snapshotsvc.Export(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) AdminSnapshotImport(c *gin.Context) {
	var doc snapshotdomain.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		AbortWithError(c, snapshotdomain.ErrInvalidSnapshot)
		return
	}

	if err := s.snapshotsvc.Import(c.Request.Context(), doc); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "imported"})
}

func writeCSV(c *gin.Context, filename string, header []string, rows [][]string) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(header)
	for _, row := range rows {
		_ = w.Write(row)
	}
	w.Flush()
}

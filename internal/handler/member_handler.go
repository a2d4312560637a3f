package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/service"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
	"github.com/AmrAnter44/sys-body-sub000/pkg/response"
)

type memberAccounts interface {
	Create(ctx context.Context, req service.CreateMemberRequest) (*models.Member, error)
	Points(ctx context.Context, number, limit int) (*service.MemberPoints, error)
	Award(ctx context.Context, number int, req service.AwardPointsRequest) (*models.Member, error)
}

// MemberHandler exposes loyalty accounts.
type MemberHandler struct {
	members memberAccounts
}

// NewMemberHandler constructs a MemberHandler.
func NewMemberHandler(members memberAccounts) *MemberHandler {
	return &MemberHandler{members: members}
}

// Create godoc
// @Summary Open a loyalty account
// @Tags Members
// @Accept json
// @Produce json
// @Param payload body service.CreateMemberRequest true "Member payload"
// @Success 201 {object} response.Envelope
// @Router /members [post]
func (h *MemberHandler) Create(c *gin.Context) {
	var req service.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "member"))
		return
	}
	member, err := h.members.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// Points godoc
// @Summary Points balance and history
// @Tags Members
// @Produce json
// @Param number path int true "Member number"
// @Param limit query int false "History entries"
// @Success 200 {object} response.Envelope
// @Router /members/{number}/points [get]
func (h *MemberHandler) Points(c *gin.Context) {
	number, err := memberNumber(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	points, err := h.members.Points(c.Request.Context(), number, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, points, nil)
}

// Award godoc
// @Summary Award or adjust points
// @Tags Members
// @Accept json
// @Produce json
// @Param number path int true "Member number"
// @Param payload body service.AwardPointsRequest true "Points payload"
// @Success 200 {object} response.Envelope
// @Router /members/{number}/points [post]
func (h *MemberHandler) Award(c *gin.Context) {
	number, err := memberNumber(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AwardPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "points"))
		return
	}
	member, err := h.members.Award(c.Request.Context(), number, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

func memberNumber(c *gin.Context) (int, error) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "member number must be a positive integer")
	}
	return number, nil
}

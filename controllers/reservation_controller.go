package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/models"
	"hotel-ops/services"
	"hotel-ops/utils"
)

type ReservationController struct {
	ReservationSvc *services.ReservationService
}

func NewReservationController(svc *services.ReservationService) *ReservationController {
	return &ReservationController{ReservationSvc: svc}
}

// ----------------------------------------------------
// GET /api/reservations/future
// ----------------------------------------------------

func (rc *ReservationController) ListFuture(c *gin.Context) {
	list, err := rc.ReservationSvc.ListFuture(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// ----------------------------------------------------
// POST /api/reservations
// ----------------------------------------------------

func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var in services.CreateReservationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := rc.ReservationSvc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, res)
}

// ----------------------------------------------------
// GET /api/reservations/:id
// ----------------------------------------------------

func (rc *ReservationController) GetReservation(c *gin.Context) {
	res, err := rc.ReservationSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// GET /api/reservations/:id/total
func (rc *ReservationController) GetTotal(c *gin.Context) {
	total, err := rc.ReservationSvc.PriceBreakdown(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, total)
}

// ----------------------------------------------------
// POST /api/reservations/:id/{cancel,check-in,check-out}
// ----------------------------------------------------

func (rc *ReservationController) Cancel(c *gin.Context) {
	rc.transition(c, rc.ReservationSvc.Cancel)
}

func (rc *ReservationController) CheckIn(c *gin.Context) {
	rc.transition(c, rc.ReservationSvc.CheckIn)
}

func (rc *ReservationController) CheckOut(c *gin.Context) {
	rc.transition(c, rc.ReservationSvc.CheckOut)
}

func (rc *ReservationController) transition(c *gin.Context, op func(context.Context, string) (*models.Reservation, error)) {
	res, err := op(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

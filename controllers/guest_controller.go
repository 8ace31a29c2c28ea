package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/services"
	"hotel-ops/utils"
)

type GuestController struct {
	GuestSvc *services.GuestService
}

func NewGuestController(svc *services.GuestService) *GuestController {
	return &GuestController{GuestSvc: svc}
}

// POST /api/guests/:id/expenses
func (gc *GuestController) AddExpense(c *gin.Context) {
	var in services.AddExpenseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	expense, err := gc.GuestSvc.AddExpense(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, expense)
}

// GET /api/guests/:id/expenses
func (gc *GuestController) ListExpenses(c *gin.Context) {
	list, err := gc.GuestSvc.ListExpenses(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GET /api/guests/:id/stay-history
func (gc *GuestController) StayHistory(c *gin.Context) {
	list, err := gc.GuestSvc.StayHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GET /api/stay-history
func (gc *GuestController) AllStayHistory(c *gin.Context) {
	list, err := gc.GuestSvc.AllStayHistory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

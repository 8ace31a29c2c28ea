package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hotel-ops/apperrors"
	"hotel-ops/models"
	"hotel-ops/services"
	"hotel-ops/utils"
)

type RoomController struct {
	RoomSvc *services.RoomService
}

func NewRoomController(svc *services.RoomService) *RoomController {
	return &RoomController{RoomSvc: svc}
}

// ----------------------------------------------------
// GET /api/rooms?type&status&minPrice&maxPrice
// ----------------------------------------------------

func (rc *RoomController) ListRooms(c *gin.Context) {
	filter, err := parseRoomFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rooms, err := rc.RoomSvc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

func parseRoomFilter(c *gin.Context) (models.RoomFilter, error) {
	var f models.RoomFilter
	f.Type = strings.TrimSpace(c.Query("type"))
	if raw := c.Query("status"); raw != "" {
		st, err := models.ParseRoomStatus(raw)
		if err != nil {
			return f, apperrors.Validation(apperrors.ErrCodeInvalidState, err.Error())
		}
		f.Status = st
	}
	var err error
	if f.MinPrice, err = queryDecimal(c, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryDecimal(c, "maxPrice"); err != nil {
		return f, err
	}
	return f, nil
}

func queryDecimal(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperrors.Validation(apperrors.ErrCodeValidation, name+" must be a number")
	}
	return &d, nil
}

// ----------------------------------------------------
// GET /api/rooms/:id
// ----------------------------------------------------

func (rc *RoomController) GetRoom(c *gin.Context) {
	room, err := rc.RoomSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// ----------------------------------------------------
// POST /api/rooms
// ----------------------------------------------------

func (rc *RoomController) CreateRoom(c *gin.Context) {
	var in services.CreateRoomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	room, err := rc.RoomSvc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

// ----------------------------------------------------
// PUT|PATCH /api/rooms/:id
// ----------------------------------------------------

func (rc *RoomController) UpdateRoom(c *gin.Context) {
	var in services.UpdateRoomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	room, err := rc.RoomSvc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// ----------------------------------------------------
// DELETE /api/rooms/:id
// ----------------------------------------------------

func (rc *RoomController) DeleteRoom(c *gin.Context) {
	if err := rc.RoomSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": c.Param("id"), "deleted": true})
}

// ----------------------------------------------------
// GET /api/rooms/:id/availability?check_in&check_out
// ----------------------------------------------------

func (rc *RoomController) GetAvailability(c *gin.Context) {
	stay, err := parseStayQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := rc.RoomSvc.Availability(c.Request.Context(), c.Param("id"), stay)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}

func parseStayQuery(c *gin.Context) (models.Stay, error) {
	checkIn, err := models.ParseDate(c.Query("check_in"))
	if err != nil {
		return models.Stay{}, apperrors.Validation(apperrors.ErrCodeInvalidDates, "check_in: "+err.Error())
	}
	checkOut, err := models.ParseDate(c.Query("check_out"))
	if err != nil {
		return models.Stay{}, apperrors.Validation(apperrors.ErrCodeInvalidDates, "check_out: "+err.Error())
	}
	return models.Stay{CheckIn: checkIn, CheckOut: checkOut}, nil
}

// ----------------------------------------------------
// GET /api/rooms/:id/active-reservation
// ----------------------------------------------------

func (rc *RoomController) GetActiveReservation(c *gin.Context) {
	res, err := rc.RoomSvc.ActiveReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

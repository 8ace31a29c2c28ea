package models

import "github.com/shopspring/decimal"

type HotelStatistics struct {
	TotalRooms       int             `json:"totalRooms"`
	OccupiedRooms    int             `json:"occupiedRooms"`
	AvailableRooms   int             `json:"availableRooms"`
	ReservedRooms    int             `json:"reservedRooms"`
	MaintenanceRooms int             `json:"maintenanceRooms"`
	OccupancyRate    float64         `json:"occupancyRate"`
	RoomsByType      map[string]int  `json:"roomsByType"`
	MonthlyRevenue   decimal.Decimal `json:"monthlyRevenue"`
	ActiveGuests     int             `json:"activeGuests"`
}

// SyncReport summarizes one synchronization sweep.
type SyncReport struct {
	Skipped   bool `json:"skipped"`
	Examined  int  `json:"examined"`
	Activated int  `json:"activated"`
	Completed int  `json:"completed"`
	Failed    int  `json:"failed"`
}

package model

type SlotAvailability struct {
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Free         bool   `json:"free"`
	BlockingID   string `json:"blocking_reservation_id,omitempty"`
	ConflictType string `json:"conflict_type,omitempty"`
}

type DayAvailability struct {
	Date       string `json:"date"`
	Available  bool   `json:"available"`
	FreeSlots  int    `json:"free_slots"`
	TotalSlots int    `json:"total_slots"`
}

type Suggestion struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Kind      string `json:"kind"`
}

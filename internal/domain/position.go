package domain

import "time"

// Position is the last known location of a courier.
type Position struct {
	CourierID  int64
	Lat        float64
	Lon        float64
	CapturedAt time.Time
}

// CourierPositionView is one entry of a position snapshot.
type CourierPositionView struct {
	CourierID int64         `json:"courier_id"`
	Name      string        `json:"name"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Status    CourierStatus `json:"status"`
}

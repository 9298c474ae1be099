package dto

// BookingRequest payload for booking a flight.
type BookingRequest struct {
	FlightID   int64 `json:"flight_id"`
	Passengers int   `json:"passengers"`
}

package domain

import "time"

// FlightStatus mirrors the status values the upstream inventory reports.
type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "Scheduled"
	FlightStatusDelayed   FlightStatus = "Delayed"
	FlightStatusCancelled FlightStatus = "Cancelled"
)

// Flight is the upstream's flight listing shape, passed through unmodified.
type Flight struct {
	ID             int64        `json:"id"`
	FlightNumber   string       `json:"flight_number"`
	Origin         string       `json:"origin"`
	Destination    string       `json:"destination"`
	DepartureTime  time.Time    `json:"departure_time"`
	ArrivalTime    time.Time    `json:"arrival_time"`
	Price          float64      `json:"price"`
	TotalSeats     int          `json:"total_seats"`
	AvailableSeats int          `json:"available_seats"`
	Status         FlightStatus `json:"status"`
}

// FlightQuery carries the search filters forwarded to the upstream listing.
type FlightQuery struct {
	Origin      string
	Destination string
}

// Booking is the upstream's confirmation for a booked flight.
type Booking struct {
	ID       int64     `json:"id"`
	FlightID int64     `json:"flight_id"`
	Status   string    `json:"status"`
	BookedAt time.Time `json:"booked_at"`
}

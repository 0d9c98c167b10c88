package model

// Flight is a scheduled flight and its seat grid.  Everything except
// the seat statuses inside Seats is fixed at creation; flights are
// never deleted or resized.
//
// Fields:
//  ID          – unique flight identifier (e.g. FL1).
//  Origin      – origin airport code, free text.
//  Destination – destination airport code, free text.
//  Time        – scheduled time exactly as supplied by the airline.
//  Seats       – rows × columns grid of seat statuses.
type Flight struct {
	ID          string
	Origin      string
	Destination string
	Time        string
	Seats       *SeatMap
}

// FlightSummary is the read-only listing view of a flight.
type FlightSummary struct {
	ID          string `json:"id"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Time        string `json:"time"`
	Available   int    `json:"available"`
	Total       int    `json:"total"`
}

// Summary computes the listing view by scanning the grid.
func (f *Flight) Summary() FlightSummary {
	return FlightSummary{
		ID:          f.ID,
		Origin:      f.Origin,
		Destination: f.Destination,
		Time:        f.Time,
		Available:   f.Seats.Available(),
		Total:       f.Seats.Total(),
	}
}

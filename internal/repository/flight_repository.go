package repository

import (
	"strings"

	"github.com/iliyamo/airline-reservation/internal/model"
)

// FlightRepo is the flight half of the directory.  Flights keep their
// creation order so that listings are stable.
type FlightRepo struct {
	byID  map[string]*model.Flight
	order []string
}

// NewFlightRepo returns an empty flight directory.
func NewFlightRepo() *FlightRepo {
	return &FlightRepo{byID: make(map[string]*model.Flight)}
}

// FlightInput carries the fields of an ADD_FLIGHT command.
type FlightInput struct {
	ID          string
	Origin      string
	Destination string
	Time        string
	Columns     int
	Rows        int
}

// Create adds a flight with a Free-filled seat grid.  Only airlines may
// create flights.  Dimensions must fit the seat code format: 1..26
// columns and at least one row.
func (r *FlightRepo) Create(creator model.Role, in FlightInput) (*model.Flight, error) {
	if creator != model.RoleAirline {
		return nil, model.ErrPermissionDenied
	}
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return nil, model.InvalidArgument("flight_id")
	}
	if in.Columns < 1 || in.Columns > model.MaxColumns {
		return nil, model.InvalidArgument("columns")
	}
	if in.Rows < 1 {
		return nil, model.InvalidArgument("rows")
	}
	if _, ok := r.byID[in.ID]; ok {
		return nil, model.ErrDuplicateFlightID
	}
	f := &model.Flight{
		ID:          in.ID,
		Origin:      in.Origin,
		Destination: in.Destination,
		Time:        in.Time,
		Seats:       model.NewSeatMap(in.Columns, in.Rows),
	}
	r.byID[f.ID] = f
	r.order = append(r.order, f.ID)
	return f, nil
}

// Get returns the flight with the given id.
func (r *FlightRepo) Get(id string) (*model.Flight, error) {
	f, ok := r.byID[id]
	if !ok {
		return nil, model.ErrFlightNotFound
	}
	return f, nil
}

// List returns a summary of every flight in creation order.  An empty
// result means there are no flights; callers render that state
// explicitly.
func (r *FlightRepo) List() []model.FlightSummary {
	out := make([]model.FlightSummary, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Summary())
	}
	return out
}

// Len returns the number of flights.
func (r *FlightRepo) Len() int { return len(r.order) }

package handler

import (
	"strconv"
	"strings"

	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/notify"
	"github.com/iliyamo/airline-reservation/internal/queue"
	"github.com/iliyamo/airline-reservation/internal/repository"
)

// listFlights handles LIST_FLIGHTS.  Each flight is rendered as one
// FLIGHT record; records are separated by a single space so the frame
// stays on one line.  With no flights the response is NO_FLIGHTS.
func (p *Processor) listFlights(_ string, _ []string) (result, error) {
	var list []model.FlightSummary
	_ = p.store.View(func(tx *repository.Tx) error {
		list = tx.Flights.List()
		return nil
	})
	if len(list) == 0 {
		return result{response: "NO_FLIGHTS"}, nil
	}
	records := make([]string, len(list))
	for i, f := range list {
		records[i] = FormatFlight(f)
	}
	return result{response: strings.Join(records, " ")}, nil
}

// FormatFlight renders one listing record.
func FormatFlight(f model.FlightSummary) string {
	return "FLIGHT " + f.ID + " " + f.Origin + " " + f.Destination + " " + f.Time +
		" SEATS_AVAILABLE=" + strconv.Itoa(f.Available) + "/" + strconv.Itoa(f.Total)
}

// addFlight handles ADD_FLIGHT <id> <origin> <dest> <time> <columns> <rows>.
// Only a logged-in airline may add flights; every logged-in customer is
// told about the new flight.
func (p *Processor) addFlight(sessionID string, args []string) (result, error) {
	now := p.now()
	var res result
	err := p.store.Update(func(tx *repository.Tx) error {
		username, role := identity(tx, sessionID)
		if username == "" {
			return model.ErrNotLoggedIn
		}
		if role != model.RoleAirline {
			return model.ErrPermissionDenied
		}
		in, err := parseFlightInput(args)
		if err != nil {
			return err
		}
		f, err := tx.Flights.Create(role, in)
		if err != nil {
			return err
		}
		res.notices = append(res.notices, notify.NewFlightNotice(f, tx.Sessions.LiveSessionsByRole(model.RoleCustomer)))
		ev := queue.NewEvent(queue.EventFlightAdded, now)
		ev.Username = username
		ev.FlightID = f.ID
		ev.Origin = f.Origin
		ev.Destination = f.Destination
		ev.Time = f.Time
		res.events = append(res.events, ev)
		return nil
	})
	if err != nil {
		return result{}, err
	}
	res.response = "FLIGHT_ADDED OK"
	return res, nil
}

var flightFields = [...]string{"flight_id", "origin", "destination", "time", "columns", "rows"}

func parseFlightInput(args []string) (repository.FlightInput, error) {
	for i, name := range flightFields {
		if arg(args, i) == "" {
			return repository.FlightInput{}, model.InvalidArgument(name)
		}
	}
	cols, err := strconv.Atoi(args[4])
	if err != nil {
		return repository.FlightInput{}, model.InvalidArgument("columns")
	}
	rows, err := strconv.Atoi(args[5])
	if err != nil {
		return repository.FlightInput{}, model.InvalidArgument("rows")
	}
	return repository.FlightInput{
		ID:          args[0],
		Origin:      args[1],
		Destination: args[2],
		Time:        args[3],
		Columns:     cols,
		Rows:        rows,
	}, nil
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/repository"
)

// AdminHandler serves read-only views of the state domain over HTTP.
// Every view takes the store's read lock for the duration of one copy.
type AdminHandler struct {
	Store *repository.Store
}

// NewAdminHandler returns a handler reading from store.
func NewAdminHandler(store *repository.Store) *AdminHandler {
	if store == nil {
		panic("nil store passed to NewAdminHandler")
	}
	return &AdminHandler{Store: store}
}

type reservationView struct {
	ID        string    `json:"id"`
	FlightID  string    `json:"flight_id"`
	Username  string    `json:"username"`
	Seats     []string  `json:"seats"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Flights handles GET /v1/flights.
func (h *AdminHandler) Flights(c echo.Context) error {
	var list []model.FlightSummary
	_ = h.Store.View(func(tx *repository.Tx) error {
		list = tx.Flights.List()
		return nil
	})
	return c.JSON(http.StatusOK, echo.Map{"flights": list})
}

// Reservations handles GET /v1/reservations.  The optional ?flight=
// query parameter restricts the list to one flight.
func (h *AdminHandler) Reservations(c echo.Context) error {
	flight := c.QueryParam("flight")
	var all []model.Reservation
	_ = h.Store.View(func(tx *repository.Tx) error {
		all = tx.Reservations.All()
		return nil
	})
	out := make([]reservationView, 0, len(all))
	for i := range all {
		r := &all[i]
		if flight != "" && r.FlightID != flight {
			continue
		}
		out = append(out, reservationView{
			ID:        r.ID,
			FlightID:  r.FlightID,
			Username:  r.Username,
			Seats:     r.SeatCodes(),
			Status:    r.Status.String(),
			CreatedAt: r.CreatedAt.UTC(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// Sessions handles GET /v1/sessions and reports how many connections are
// live and how many of them are logged in per role.
func (h *AdminHandler) Sessions(c echo.Context) error {
	var (
		live   int
		byRole map[model.Role]int
	)
	_ = h.Store.View(func(tx *repository.Tx) error {
		live = tx.Sessions.Len()
		byRole = tx.Sessions.CountByRole()
		return nil
	})
	return c.JSON(http.StatusOK, echo.Map{
		"live":      live,
		"customers": byRole[model.RoleCustomer],
		"airlines":  byRole[model.RoleAirline],
	})
}

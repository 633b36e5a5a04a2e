package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rentchain/rentclient/internal/core/domain"
	"github.com/rentchain/rentclient/internal/core/service"
	"github.com/rentchain/rentclient/internal/infrastructure/geo"
)

// SessionReader returns the current session snapshot.
type SessionReader interface {
	Snapshot() domain.Session
}

// BootstrapReporter exposes the coordinator progress.
type BootstrapReporter interface {
	Status() service.BootstrapStatus
}

// LocationReader returns the last acquired device location.
type LocationReader interface {
	Last() (geo.Location, bool)
}

// ThemeReader returns the active colour theme.
type ThemeReader interface {
	Current() string
}

// SessionHandler serves read-only views of the client state.
type SessionHandler struct {
	session   SessionReader
	bootstrap BootstrapReporter
	theme     ThemeReader
	location  LocationReader
	profile   ProfileReader
	wallet    WalletReader
}

// SessionDeps groups the readers behind SessionHandler. Nil readers are
// omitted from responses.
type SessionDeps struct {
	Session   SessionReader
	Bootstrap BootstrapReporter
	Theme     ThemeReader
	Location  LocationReader
	Profile   ProfileReader
	Wallet    WalletReader
}

func NewSessionHandler(deps SessionDeps) *SessionHandler {
	return &SessionHandler{
		session:   deps.Session,
		bootstrap: deps.Bootstrap,
		theme:     deps.Theme,
		location:  deps.Location,
		profile:   deps.Profile,
		wallet:    deps.Wallet,
	}
}

type bootstrapResponse struct {
	Bootstrap service.BootstrapStatus `json:"bootstrap"`
	Theme     string                  `json:"theme,omitempty"`
	Location  *geo.Location           `json:"location,omitempty"`
}

type diagnosticsResponse struct {
	bootstrapResponse
	Session domain.Session           `json:"session"`
	Profile *service.ProfileSnapshot `json:"profile,omitempty"`
	Wallet  *domain.WalletLink       `json:"wallet,omitempty"`
}

type locationResponse struct {
	Location   geo.Location `json:"location"`
	DistanceKm *float64     `json:"distanceKm,omitempty"`
}

// Session returns the session snapshot. The token is never serialised.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  domain.Session
// @Router       /session [get]
func (h *SessionHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, h.session.Snapshot())
}

// Bootstrap reports start-up progress.
//
// @Summary      Bootstrap status
// @Tags         session
// @Produce      json
// @Success      200  {object}  bootstrapResponse
// @Router       /bootstrap [get]
func (h *SessionHandler) Bootstrap(c echo.Context) error {
	return c.JSON(http.StatusOK, h.status())
}

// Diagnostics reports start-up progress together with every store snapshot.
//
// @Summary      Bootstrap diagnostics
// @Tags         admin
// @Produce      json
// @Success      200  {object}  diagnosticsResponse
// @Success      202  {object}  map[string]string
// @Failure      302  {string}  string  "redirect"
// @Router       /admin/bootstrap [get]
func (h *SessionHandler) Diagnostics(c echo.Context) error {
	resp := diagnosticsResponse{bootstrapResponse: h.status(), Session: h.session.Snapshot()}
	if h.profile != nil {
		p := h.profile.Snapshot()
		resp.Profile = &p
	}
	if h.wallet != nil {
		w := h.wallet.Snapshot()
		resp.Wallet = &w
	}
	return c.JSON(http.StatusOK, resp)
}

// Location returns the last device location and, when lat and lng are
// given, the distance to that point.
//
// @Summary      Device location
// @Tags         session
// @Produce      json
// @Param        lat  query     number  false  "Target latitude"
// @Param        lng  query     number  false  "Target longitude"
// @Success      200  {object}  locationResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /location [get]
func (h *SessionHandler) Location(c echo.Context) error {
	if h.location == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "location unavailable"})
	}
	loc, ok := h.location.Last()
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "location unavailable"})
	}
	resp := locationResponse{Location: loc}

	latParam, lngParam := c.QueryParam("lat"), c.QueryParam("lng")
	if latParam != "" || lngParam != "" {
		lat, errLat := strconv.ParseFloat(latParam, 64)
		lng, errLng := strconv.ParseFloat(lngParam, 64)
		if errLat != nil || errLng != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "lat and lng must be numbers"})
		}
		d := geo.DistanceKm(loc, geo.Location{Lat: lat, Lng: lng})
		resp.DistanceKm = &d
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SessionHandler) status() bootstrapResponse {
	var resp bootstrapResponse
	if h.bootstrap != nil {
		resp.Bootstrap = h.bootstrap.Status()
	}
	if h.theme != nil {
		resp.Theme = h.theme.Current()
	}
	if h.location != nil {
		if loc, ok := h.location.Last(); ok {
			resp.Location = &loc
		}
	}
	return resp
}

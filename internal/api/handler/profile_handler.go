package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rentchain/rentclient/internal/core/domain"
	"github.com/rentchain/rentclient/internal/core/service"
)

// ProfileReader returns the profile snapshot.
type ProfileReader interface {
	Snapshot() service.ProfileSnapshot
}

// ProfileActions is the subset of the profile store the profile endpoints drive.
type ProfileActions interface {
	ProfileReader
	FetchUserProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateUserProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.Profile, error)
}

type ProfileHandler struct {
	profile ProfileActions
}

func NewProfileHandler(profile ProfileActions) *ProfileHandler {
	return &ProfileHandler{profile: profile}
}

type updateProfileRequest struct {
	Firstname    *string `json:"firstname,omitempty" validate:"omitempty,max=100"`
	Lastname     *string `json:"lastname,omitempty" validate:"omitempty,max=100"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,e164"`
	Country      *string `json:"country,omitempty" validate:"omitempty,max=100"`
	City         *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State        *string `json:"state,omitempty" validate:"omitempty,max=100"`
	DateOfBirth  *string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Address      *string `json:"address,omitempty" validate:"omitempty,max=255"`
	ProfileImage *string `json:"profile_image,omitempty" validate:"omitempty,url"`
}

func (r updateProfileRequest) toDomain() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		Firstname:    r.Firstname,
		Lastname:     r.Lastname,
		Phone:        r.Phone,
		Country:      r.Country,
		City:         r.City,
		State:        r.State,
		DateOfBirth:  r.DateOfBirth,
		Address:      r.Address,
		ProfileImage: r.ProfileImage,
	}
}

// Get returns the signed-in user's profile, fetching it when not loaded yet.
//
// @Summary      Current profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  domain.Profile
// @Success      202  {object}  map[string]string
// @Failure      302  {string}  string  "redirect"
// @Failure      404  {object}  errorResponse
// @Router       /profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if p := h.profile.Snapshot().Profile; p != nil && p.UserID == user.UserID {
		return c.JSON(http.StatusOK, p)
	}
	p, err := h.profile.FetchUserProfile(c.Request().Context(), user.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Update saves the editable profile fields.
//
// @Summary      Update profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  domain.Profile
// @Failure      400   {object}  errorResponse
// @Failure      302   {string}  string  "redirect"
// @Router       /profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	p, err := h.profile.UpdateUserProfile(c.Request().Context(), user.UserID, req.toDomain())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

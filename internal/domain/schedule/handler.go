package schedule

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dently/clinic/internal/platform/apperr"
	"github.com/dently/clinic/internal/platform/auth"
	"github.com/dently/clinic/pkg/pagination"
)

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/clinic-schedules", h.ListSchedules)
	api.GET("/clinic-schedules/:id", h.GetSchedule)
	api.GET("/clinic-schedules/:id/shifts", h.ListShifts)
	api.GET("/clinic-schedules/:id/rooms/:room/shifts", h.ListRoomShifts)
	api.GET("/clinic-schedules/:id/rooms/:room/day", h.ResolveDay)
	api.GET("/clinic-schedules/:id/rooms/:room/week", h.WeekView)
	api.GET("/shifts/:id", h.GetShift)

	// Plan changes are manager-only
	write := api.Group("", auth.RequireManager())
	write.POST("/clinic-schedules", h.CreateSchedule)
	write.DELETE("/clinic-schedules/:id", h.DeleteSchedule)
	write.POST("/shifts", h.CreateShift)
	write.PUT("/shifts/:id", h.UpdateShift)
	write.DELETE("/shifts/:id", h.DeleteShift)
}

// -- ClinicSchedule --

func (h *Handler) CreateSchedule(c echo.Context) error {
	var cs ClinicSchedule
	if err := c.Bind(&cs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateSchedule(c.Request().Context(), &cs); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, cs)
}

func (h *Handler) GetSchedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cs, err := h.svc.GetSchedule(c.Request().Context(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *Handler) ListSchedules(c echo.Context) error {
	p := pagination.FromContext(c)
	schedules, total, err := h.svc.ListSchedules(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(schedules, total, p.Limit, p.Offset))
}

func (h *Handler) DeleteSchedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteSchedule(c.Request().Context(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Shift --

type shiftResponse struct {
	Shift     *Shift     `json:"shift"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
}

func (h *Handler) CreateShift(c echo.Context) error {
	var sh Shift
	if err := c.Bind(&sh); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	conflicts, err := h.svc.CreateShift(c.Request().Context(), &sh)
	if err != nil {
		return apperr.Respond(c, err)
	}
	h.logConflicts(c, &sh, conflicts)
	return c.JSON(http.StatusCreated, shiftResponse{Shift: &sh, Conflicts: conflicts})
}

func (h *Handler) GetShift(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sh, err := h.svc.GetShift(c.Request().Context(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, sh)
}

func (h *Handler) UpdateShift(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var sh Shift
	if err := c.Bind(&sh); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sh.ID = id
	conflicts, err := h.svc.UpdateShift(c.Request().Context(), &sh)
	if err != nil {
		return apperr.Respond(c, err)
	}
	h.logConflicts(c, &sh, conflicts)
	return c.JSON(http.StatusOK, shiftResponse{Shift: &sh, Conflicts: conflicts})
}

func (h *Handler) DeleteShift(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteShift(c.Request().Context(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListShifts(c echo.Context) error {
	scheduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid schedule id")
	}
	shifts, err := h.svc.ListShifts(c.Request().Context(), scheduleID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, shifts)
}

func (h *Handler) ListRoomShifts(c echo.Context) error {
	scheduleID, roomNumber, err := roomParams(c)
	if err != nil {
		return err
	}
	shifts, err := h.svc.ListShiftsByRoom(c.Request().Context(), scheduleID, roomNumber)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, shifts)
}

func (h *Handler) ResolveDay(c echo.Context) error {
	scheduleID, roomNumber, err := roomParams(c)
	if err != nil {
		return err
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	shifts, err := h.svc.ResolveDay(c.Request().Context(), scheduleID, roomNumber, date)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"date":   date.Format("2006-01-02"),
		"shifts": shifts,
	})
}

func (h *Handler) WeekView(c echo.Context) error {
	scheduleID, roomNumber, err := roomParams(c)
	if err != nil {
		return err
	}
	view, err := h.svc.WeekView(c.Request().Context(), scheduleID, roomNumber)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"week":    view,
		"summary": view.Summary(),
	})
}

func roomParams(c echo.Context) (uuid.UUID, int, error) {
	scheduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, 0, echo.NewHTTPError(http.StatusBadRequest, "invalid schedule id")
	}
	var roomNumber int
	if err := echo.PathParamsBinder(c).Int("room", &roomNumber).BindError(); err != nil || roomNumber < 1 {
		return uuid.Nil, 0, echo.NewHTTPError(http.StatusBadRequest, "invalid room number")
	}
	return scheduleID, roomNumber, nil
}

func (h *Handler) logConflicts(c echo.Context, sh *Shift, conflicts []Conflict) {
	for _, conflict := range conflicts {
		h.logger.Warn().
			Str("shift_id", sh.ID.String()).
			Str("other_shift_id", conflict.OtherShiftID.String()).
			Int("room", sh.RoomNumber).
			Str("selector", sh.Selector.String()).
			Str("interval", conflict.Start.String()+"-"+conflict.End.String()).
			Msg("shift overlaps existing record")
	}
}

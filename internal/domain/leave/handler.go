package leave

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dently/clinic/internal/platform/apperr"
	"github.com/dently/clinic/internal/platform/auth"
	"github.com/dently/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/leave-requests", h.Submit)
	api.GET("/leave-requests/:id", h.Get)
	api.GET("/leave-requests", h.List)
	api.POST("/leave-requests/:id/review", h.Review)
	api.POST("/leave-requests/:id/respond", h.RespondToAlternative)
	api.POST("/leave-requests/:id/cancel", h.Cancel)
	api.POST("/calendar-blocks", h.BlockCalendar)
}

func (h *Handler) Submit(c echo.Context) error {
	sess, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return apperr.Respond(c, apperr.Unauthorized("no session"))
	}
	var r Request
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r.UserID = sess.UserID
	if err := h.svc.Submit(c.Request().Context(), &r); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// List returns the caller's own requests, or filters by user/status for
// managers.
func (h *Handler) List(c echo.Context) error {
	sess, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return apperr.Respond(c, apperr.Unauthorized("no session"))
	}
	p := pagination.FromContext(c)
	ctx := c.Request().Context()

	if status := c.QueryParam("status"); status != "" {
		if !auth.HasManagerPermissions(sess.Role) {
			return apperr.Respond(c, apperr.Forbidden("manager role required to list by status"))
		}
		requests, total, err := h.svc.ListByStatus(ctx, Status(status), p.Limit, p.Offset)
		if err != nil {
			return apperr.Respond(c, err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(requests, total, p.Limit, p.Offset))
	}

	userID := sess.UserID
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		if id != sess.UserID && !auth.HasManagerPermissions(sess.Role) {
			return apperr.Respond(c, apperr.Forbidden("manager role required to list another user's requests"))
		}
		userID = id
	}

	requests, total, err := h.svc.ListByUser(ctx, userID, p.Limit, p.Offset)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(requests, total, p.Limit, p.Offset))
}

func (h *Handler) Review(c echo.Context) error {
	sess, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return apperr.Respond(c, apperr.Unauthorized("no session"))
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in ReviewInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.Review(c.Request().Context(), id, sess.UserID, sess.Role, in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) RespondToAlternative(c echo.Context) error {
	sess, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return apperr.Respond(c, apperr.Unauthorized("no session"))
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in struct {
		Accepted *bool `json:"accepted"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if in.Accepted == nil {
		return apperr.Respond(c, apperr.Validation("accepted", "is required"))
	}
	r, err := h.svc.RespondToAlternative(c.Request().Context(), id, sess.UserID, *in.Accepted)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) Cancel(c echo.Context) error {
	sess, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return apperr.Respond(c, apperr.Unauthorized("no session"))
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.Cancel(c.Request().Context(), id, sess.UserID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// BlockCalendar creates self-approved personal busy time for the caller.
func (h *Handler) BlockCalendar(c echo.Context) error {
	sess, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return apperr.Respond(c, apperr.Unauthorized("no session"))
	}
	var r Request
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r.UserID = sess.UserID
	blocked, err := h.svc.BlockCalendar(c.Request().Context(), &r)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, blocked)
}

package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/pinboard/internal/common"
	"github.com/dmitrijs2005/pinboard/internal/server/models"
)

type createPinRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Lat         *float64 `json:"lat" validate:"required"`
	Lng         *float64 `json:"lng" validate:"required"`
	Category    string   `json:"category"`
	ImageURL    string   `json:"imageUrl"`
}

type updatePinRequest struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Category          string     `json:"category"`
	ImageURL          string     `json:"imageUrl"`
	ExpectedUpdatedAt *time.Time `json:"expectedUpdatedAt"`
}

type addVisitRequest struct {
	Name      string     `json:"name"`
	Note      string     `json:"note"`
	ImageURL  string     `json:"imageUrl"`
	VisitedAt *time.Time `json:"visitedAt"`
}

type updateVisitRequest struct {
	Name     *string `json:"name"`
	Note     *string `json:"note"`
	ImageURL *string `json:"imageUrl"`
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type uploadRequest struct {
	ContentType string `json:"contentType"`
}

type conflictResponse struct {
	Error           string    `json:"error"`
	ServerUpdatedAt time.Time `json:"serverUpdatedAt"`
}

func (s *HTTPServer) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "schemaReady": s.pins.Ready()})
}

func (s *HTTPServer) listPins(c echo.Context) error {
	list, err := s.pins.ListPins(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (s *HTTPServer) createPin(c echo.Context) error {
	var req createPinRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := models.Validate(req); err != nil {
		return s.writeError(c, err)
	}
	pin, err := s.pins.CreatePin(c.Request().Context(), &models.NewPin{
		Title:       req.Title,
		Description: req.Description,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, pin)
}

func (s *HTTPServer) getPin(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	pv, err := s.pins.GetPinWithVisits(c.Request().Context(), id)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, pv)
}

func (s *HTTPServer) updatePin(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req updatePinRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	pin, err := s.pins.UpdatePin(c.Request().Context(), id, &models.PinUpdate{
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		ImageURL:          req.ImageURL,
		ExpectedUpdatedAt: req.ExpectedUpdatedAt,
	})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, pin)
}

func (s *HTTPServer) deletePin(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := s.pins.DeletePin(c.Request().Context(), id); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) addVisit(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req addVisitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	v, err := s.pins.AddVisit(c.Request().Context(), id, &models.NewVisit{
		Name:      req.Name,
		Note:      req.Note,
		ImageURL:  req.ImageURL,
		VisitedAt: req.VisitedAt,
	})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (s *HTTPServer) updateVisit(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req updateVisitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	v, err := s.pins.UpdateVisit(c.Request().Context(), id, &models.VisitPatch{
		Name:     req.Name,
		Note:     req.Note,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (s *HTTPServer) listCategories(c echo.Context) error {
	list, err := s.pins.ListCategories(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (s *HTTPServer) upsertCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	cat, err := s.pins.UpsertCategory(c.Request().Context(), &models.Category{Name: req.Name, Color: req.Color})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (s *HTTPServer) stats(c echo.Context) error {
	st, err := s.pins.Stats(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (s *HTTPServer) createUpload(c echo.Context) error {
	var req uploadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	slot, err := s.uploads.PresignUpload(c.Request().Context(), req.ContentType)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, slot)
}

var errInvalidID = errors.New("invalid id")

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// writeError maps service errors onto status codes. Unexpected errors are
// logged and hidden from the client.
func (s *HTTPServer) writeError(c echo.Context, err error) error {
	var conflict *common.ConflictError
	switch {
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, conflictResponse{Error: "conflict", ServerUpdatedAt: conflict.ServerUpdatedAt})
	case errors.Is(err, common.ErrVersionConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, common.ErrorValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, common.ErrorStorageDisabled):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
	}
	s.logger.Error(c.Request().Context(), "request error", "error", err, "request_id", c.Get(requestIDKey))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

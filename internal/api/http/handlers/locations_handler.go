package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/outagetrack/outage-service/internal/api/dto"
	"github.com/outagetrack/outage-service/internal/domain"
	"github.com/outagetrack/outage-service/internal/repository"
	"github.com/outagetrack/outage-service/internal/service"
)

// LocationsHandler exposes outage location endpoints.
type LocationsHandler struct {
	service *service.LocationService
}

// NewLocationsHandler constructs handler.
func NewLocationsHandler(locationService *service.LocationService) *LocationsHandler {
	return &LocationsHandler{service: locationService}
}

// List GET /api/locations.
func (h *LocationsHandler) List(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	filter := parseLocationQuery(c)
	locations, total, err := h.service.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	limit, offset := repository.NormalizePage(filter.Limit, filter.Offset)
	return c.JSON(fiber.Map{
		"data": dto.NewLocationResponses(locations),
		"meta": dto.Page{Total: total, Limit: limit, Offset: offset},
	})
}

// Create POST /api/locations.
func (h *LocationsHandler) Create(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.LocationCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	detail, err := h.service.Report(c.UserContext(), actor, service.ReportInput{
		Name:                       req.Name,
		Address:                    req.Address,
		City:                       req.City,
		State:                      req.State,
		ZipCode:                    req.ZipCode,
		Latitude:                   nullCoordinate(req.Latitude),
		Longitude:                  nullCoordinate(req.Longitude),
		Priority:                   domain.LocationPriority(req.Priority),
		Description:                req.Description,
		EstimatedCustomersAffected: req.EstimatedCustomersAffected,
		ReportedByID:               req.ReportedByID,
		ReporterEmail:              req.ReporterEmail,
		ReporterPhone:              req.ReporterPhone,
		EstimatedRestoration:       req.EstimatedRestoration,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": detailResponse(detail)})
}

// Get GET /api/locations/:id.
func (h *LocationsHandler) Get(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	detail, err := h.service.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": detailResponse(detail)})
}

// Edit PATCH /api/locations/:id.
func (h *LocationsHandler) Edit(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.LocationUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	patch := service.LocationPatch{
		Name:                       req.Name,
		Address:                    req.Address,
		City:                       req.City,
		State:                      req.State,
		ZipCode:                    req.ZipCode,
		Latitude:                   req.Latitude,
		Longitude:                  req.Longitude,
		Description:                req.Description,
		EstimatedCustomersAffected: req.EstimatedCustomersAffected,
		ReporterEmail:              req.ReporterEmail,
		ReporterPhone:              req.ReporterPhone,
		EstimatedRestoration:       req.EstimatedRestoration,
		ActualRestoration:          req.ActualRestoration,
	}
	if req.Status != nil {
		status := domain.LocationStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := domain.LocationPriority(*req.Priority)
		patch.Priority = &priority
	}
	if req.AssignedTo.Set {
		assignee := ""
		if req.AssignedTo.Value != nil {
			assignee = *req.AssignedTo.Value
		}
		patch.AssignedToID = &assignee
	}

	detail, err := h.service.Edit(c.UserContext(), actor, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": detailResponse(detail)})
}

// Delete DELETE /api/locations/:id.
func (h *LocationsHandler) Delete(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Assign POST /api/locations/:id/assign.
func (h *LocationsHandler) Assign(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	detail, err := h.service.Assign(c.UserContext(), actor, c.Params("id"), req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": detailResponse(detail)})
}

// UpdateStatus POST /api/locations/:id/update_status.
func (h *LocationsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.StatusUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	detail, err := h.service.UpdateStatus(c.UserContext(), actor, c.Params("id"), domain.LocationStatus(req.Status), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": detailResponse(detail)})
}

// UpdatePriority POST /api/locations/:id/priority.
func (h *LocationsHandler) UpdatePriority(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.PriorityUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	detail, err := h.service.UpdatePriority(c.UserContext(), actor, c.Params("id"), domain.LocationPriority(req.Priority))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": detailResponse(detail)})
}

// ListUpdates GET /api/locations/:id/updates.
func (h *LocationsHandler) ListUpdates(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	limit, offset := pageParams(c)
	updates, total, err := h.service.ListUpdates(c.UserContext(), actor, c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	limit, offset = repository.NormalizePage(limit, offset)
	return c.JSON(fiber.Map{
		"data": dto.NewLocationUpdateResponses(updates),
		"meta": dto.Page{Total: total, Limit: limit, Offset: offset},
	})
}

// AddNote POST /api/locations/:id/updates.
func (h *LocationsHandler) AddNote(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.NoteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	detail, err := h.service.AddNote(c.UserContext(), actor, c.Params("id"), req.Notes)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": detailResponse(detail)})
}

func parseLocationQuery(c *fiber.Ctx) service.LocationListFilter {
	filter := service.LocationListFilter{
		AssignedToID: optionalQuery(c, "assigned_to"),
		SearchTerm:   optionalQuery(c, "search"),
	}
	for _, s := range splitQuery(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.LocationStatus(s))
	}
	for _, p := range splitQuery(c.Query("priority")) {
		filter.Priorities = append(filter.Priorities, domain.LocationPriority(p))
	}
	filter.Limit, filter.Offset = pageParams(c)
	return filter
}

func nullCoordinate(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d.Round(6))
}

func detailResponse(detail *service.LocationDetail) dto.LocationDetailResponse {
	return dto.NewLocationDetailResponse(detail.Location, detail.Updates)
}

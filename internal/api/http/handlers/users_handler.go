package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/outagetrack/outage-service/internal/api/dto"
	"github.com/outagetrack/outage-service/internal/domain"
	"github.com/outagetrack/outage-service/internal/repository"
	"github.com/outagetrack/outage-service/internal/service"
)

// UsersHandler exposes profile and account directory endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Profile handles GET /api/accounts/profile.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	user, err := h.users.Me(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// UpdateProfile handles PATCH /api/accounts/profile.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.ProfileUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.UserContext(), actor, service.ProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// List handles GET /api/accounts/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	filter := service.UserListFilter{Search: c.Query("search")}
	for _, r := range splitQuery(c.Query("role")) {
		filter.Roles = append(filter.Roles, domain.Role(r))
	}
	filter.Limit, filter.Offset = pageParams(c)

	users, total, err := h.users.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	limit, offset := repository.NormalizePage(filter.Limit, filter.Offset)
	return c.JSON(fiber.Map{
		"data": dto.NewUserResponses(users),
		"meta": dto.Page{Total: total, Limit: limit, Offset: offset},
	})
}

// Get handles GET /api/accounts/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Create handles POST /api/accounts/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.UserCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.Create(c.UserContext(), actor, service.UserCreateInput{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Role:        domain.Role(req.Role),
		Password:    req.Password,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update handles PATCH /api/accounts/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.UserUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	input := service.UserUpdateInput{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		IsActive:    req.IsActive,
		Password:    req.Password,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		input.Role = &role
	}
	user, err := h.users.Update(c.UserContext(), actor, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Delete handles DELETE /api/accounts/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

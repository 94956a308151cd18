package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/outagetrack/outage-service/internal/api/dto"
	"github.com/outagetrack/outage-service/internal/auth"
	"github.com/outagetrack/outage-service/internal/domain"
	apperrors "github.com/outagetrack/outage-service/pkg/util/errorutil"
)

func requireActor(c *fiber.Ctx) (*domain.User, error) {
	actor := auth.ActorFromContext(c)
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return actor, nil
}

// parseBody decodes the JSON body into dst and runs its validation tags.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"body": err.Error()})
	}
	return dto.Validate(dst)
}

func splitQuery(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

// pageParams reads page/page_size or limit/offset, preferring the latter.
func pageParams(c *fiber.Ctx) (limit, offset int) {
	pageSize := parseInt(c.Query("page_size"), 20)
	page := parseInt(c.Query("page"), 1)
	limit = parseInt(c.Query("limit"), pageSize)
	offset = (page - 1) * pageSize
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil
	}
	return &v
}

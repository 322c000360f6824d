package controller

import (
	"bufio"
	"encoding/json"
	"fmt"

	"procuredoc-be/internal/dto"
	"procuredoc-be/internal/pkg/ratelimit"
	"procuredoc-be/internal/pkg/serverutils"
	"procuredoc-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type ISectionController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	SubmitStream(ctx *fiber.Ctx) error
}

type sectionController struct {
	service service.ISectionService
	limiter *ratelimit.Limiter
}

func NewSectionController(service service.ISectionService, limiter *ratelimit.Limiter) ISectionController {
	return &sectionController{
		service: service,
		limiter: limiter,
	}
}

func (c *sectionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/section/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("generate", serverutils.RateLimitMiddleware(c.limiter), c.Submit)
	h.Post("generate/stream", serverutils.RateLimitMiddleware(c.limiter), c.SubmitStream)
}

func (c *sectionController) Submit(ctx *fiber.Ctx) error {
	tenantIdStr := ctx.Locals("tenant_id").(string)
	tenantId, _ := uuid.Parse(tenantIdStr)
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SubmitSectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Submit(ctx.Context(), tenantId, userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).
		JSON(serverutils.SuccessResponse("Section generation accepted", res))
}

// SubmitStream admits the request and streams the job's progress as
// server-sent events. The first event acknowledges admission; the stream then
// relays progress until the broker closes it.
func (c *sectionController) SubmitStream(ctx *fiber.Ctx) error {
	tenantIdStr := ctx.Locals("tenant_id").(string)
	tenantId, _ := uuid.Parse(tenantIdStr)
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SubmitSectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, events, err := c.service.SubmitWithProgress(ctx.Context(), tenantId, userId, &req)
	if err != nil {
		return err
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ack, _ := json.Marshal(res)
		fmt.Fprintf(w, "id: %s-ack\nevent: accepted\ndata: %s\n\n", res.JobId, ack)
		if err := w.Flush(); err != nil {
			return
		}

		for envelope := range events {
			data, err := json.Marshal(envelope.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", envelope.Id, envelope.Type, data)
			if err := w.Flush(); err != nil {
				// Consumer went away; the broker TTL reaps the stream.
				return
			}
		}

		fmt.Fprintf(w, "id: %s-end\nevent: end\ndata: {}\n\n", res.JobId)
		w.Flush()
	}))

	return nil
}

package controller

import (
	"procuredoc-be/internal/dto"
	"procuredoc-be/internal/pkg/serverutils"
	"procuredoc-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	UpdateSection(ctx *fiber.Ctx) error
	DeleteSection(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
}

func NewDocumentController(service service.IDocumentService) IDocumentController {
	return &documentController{service: service}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
	h.Put(":id/sections/:sectionId", c.UpdateSection)
	h.Delete(":id/sections/:sectionId", c.DeleteSection)
}

func (c *documentController) GetAll(ctx *fiber.Ctx) error {
	tenantIdStr := ctx.Locals("tenant_id").(string)
	tenantId, _ := uuid.Parse(tenantIdStr)

	res, err := c.service.GetAll(ctx.Context(), tenantId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all documents", res))
}

func (c *documentController) Create(ctx *fiber.Ctx) error {
	tenantIdStr := ctx.Locals("tenant_id").(string)
	tenantId, _ := uuid.Parse(tenantIdStr)
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CreateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), tenantId, userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create document", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	tenantIdStr := ctx.Locals("tenant_id").(string)
	tenantId, _ := uuid.Parse(tenantIdStr)
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.service.Show(ctx.Context(), tenantId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	tenantIdStr := ctx.Locals("tenant_id").(string)
	tenantId, _ := uuid.Parse(tenantIdStr)
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	if err := c.service.Delete(ctx.Context(), tenantId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete document", nil))
}

func (c *documentController) UpdateSection(ctx *fiber.Ctx) error {
	tenantIdStr := ctx.Locals("tenant_id").(string)
	tenantId, _ := uuid.Parse(tenantIdStr)
	sectionIdParam := ctx.Params("sectionId")
	sectionId, _ := uuid.Parse(sectionIdParam)

	var req dto.UpdateSectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = sectionId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateSection(ctx.Context(), tenantId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update section", res))
}

func (c *documentController) DeleteSection(ctx *fiber.Ctx) error {
	tenantIdStr := ctx.Locals("tenant_id").(string)
	tenantId, _ := uuid.Parse(tenantIdStr)
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)
	sectionIdParam := ctx.Params("sectionId")
	sectionId, _ := uuid.Parse(sectionIdParam)

	if err := c.service.DeleteSection(ctx.Context(), tenantId, id, sectionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete section", nil))
}

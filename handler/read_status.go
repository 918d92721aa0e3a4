package handler

import (
	"Discodeit/config"
	"Discodeit/middleware"
	"Discodeit/pkg/context"
	"Discodeit/pkg/response"
	"Discodeit/service"
	"Discodeit/types"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReadStatus struct {
	Config        *config.Config
	ReadStatusSrv service.IReadStatusService
}

func (h *ReadStatus) RegisterRouter(r gin.IRouter) {
	authorize := middleware.Auth([]byte(h.Config.Jwt.Secret))
	rs := r.Group("/v1/read-statuses", authorize)
	rs.POST("", context.Wrap(h.Create))
	rs.GET("", context.Wrap(h.List))
	rs.GET("/:id", context.Wrap(h.Find))
	rs.PATCH("/:id", context.Wrap(h.Update))
	rs.DELETE("/:id", context.Wrap(h.Delete))
}

func (h *ReadStatus) Create(c *gin.Context) error {
	var req types.CreateReadStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return response.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.ReadStatusSrv.Create(c.Request.Context(), &req)
	if err != nil {
		return bizError(err)
	}
	response.Created(c, res)
	return nil
}

func (h *ReadStatus) Find(c *gin.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	res, err := h.ReadStatusSrv.Find(c.Request.Context(), id)
	if err != nil {
		return bizError(err)
	}
	response.Success(c, res)
	return nil
}

func (h *ReadStatus) List(c *gin.Context) error {
	var req types.ListReadStatusReq
	if err := c.ShouldBindQuery(&req); err != nil {
		return response.NewError(http.StatusBadRequest, err.Error())
	}
	userId, err := uuid.Parse(req.UserId)
	if err != nil {
		return response.NewError(http.StatusBadRequest, "user_id 格式错误")
	}

	res, err := h.ReadStatusSrv.FindAllByUserId(c.Request.Context(), userId)
	if err != nil {
		return bizError(err)
	}
	response.Success(c, res)
	return nil
}

func (h *ReadStatus) Update(c *gin.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req types.UpdateReadStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return response.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.ReadStatusSrv.Update(c.Request.Context(), id, &req)
	if err != nil {
		return bizError(err)
	}
	response.Success(c, res)
	return nil
}

func (h *ReadStatus) Delete(c *gin.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.ReadStatusSrv.Delete(c.Request.Context(), id); err != nil {
		return bizError(err)
	}
	c.Status(http.StatusNoContent)
	return nil
}

func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, response.NewError(http.StatusBadRequest, "id 格式错误")
	}
	return id, nil
}

// bizError 把 service 错误映射为带状态码的业务错误
func bizError(err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return response.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		return response.NewError(http.StatusConflict, err.Error())
	default:
		return err
	}
}

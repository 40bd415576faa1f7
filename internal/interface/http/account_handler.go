package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-accounts/internal/application"
	"github.com/oksasatya/user-accounts/pkg/helpers"
	"github.com/oksasatya/user-accounts/pkg/response"
	"github.com/oksasatya/user-accounts/pkg/validation"
)

// AccountHandler is the HTTP transport for the account workflows. Write paths are
// sequenced validate -> uniqueness check -> service call.
type AccountHandler struct {
	Svc      *application.Service
	Validate *application.Validator
	Logger   *logrus.Logger
}

func NewAccountHandler(svc *application.Service, validate *application.Validator, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Validate: validate, Logger: logger}
}

func (h *AccountHandler) List(c *gin.Context) {
	views, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Send(c, response.Success(c, http.StatusOK, views, "users", nil))
}

func (h *AccountHandler) Get(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	view, found, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		h.notFound(c, id)
		return
	}
	response.Send(c, response.Success(c, http.StatusOK, view, "user", nil))
}

func (h *AccountHandler) Create(c *gin.Context) {
	var req application.CreatePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Send(c, response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err)))
		return
	}
	if errs := h.Validate.ValidateCreate(req); len(errs) > 0 {
		h.fail(c, &application.ValidationError{Fields: errs})
		return
	}

	ctx := c.Request.Context()
	taken, err := h.Svc.EmailRegistered(ctx, req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	if taken {
		response.Send(c, response.Error[any](c, http.StatusConflict, "email already registered", nil))
		return
	}

	view, err := h.Svc.Create(ctx, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("%s/%d", c.FullPath(), view.ID))
	response.Send(c, response.Success(c, http.StatusCreated, view, "user created", nil))
}

func (h *AccountHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req application.UpdatePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Send(c, response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err)))
		return
	}
	if errs := h.Validate.ValidateUpdate(req); len(errs) > 0 {
		h.fail(c, &application.ValidationError{Fields: errs})
		return
	}

	ctx := c.Request.Context()
	if _, found, err := h.Svc.Get(ctx, id); err != nil {
		h.fail(c, err)
		return
	} else if !found {
		h.notFound(c, id)
		return
	}

	taken, err := h.Svc.EmailTakenByOther(ctx, req.Email, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if taken {
		response.Send(c, response.Error[any](c, http.StatusConflict, "email already registered to another user", nil))
		return
	}

	view, err := h.Svc.Update(ctx, id, req)
	if errors.Is(err, application.ErrAccountNotFound) {
		h.notFound(c, id)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Send(c, response.Success(c, http.StatusOK, view, "user updated", nil))
}

func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	deleted, err := h.Svc.SoftDelete(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !deleted {
		h.notFound(c, id)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AccountHandler) bindID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Send(c, response.Error[any](c, http.StatusBadRequest, "invalid id",
			[]validation.FieldError{{Field: "id", Message: "must be a positive integer"}}))
		return 0, false
	}
	return id, true
}

func (h *AccountHandler) notFound(c *gin.Context, id int64) {
	response.Send(c, response.Error[any](c, http.StatusNotFound, fmt.Sprintf("user with id %d not found", id), nil))
}

// fail maps service errors to responses; anything unrecognised is an infrastructure failure.
func (h *AccountHandler) fail(c *gin.Context, err error) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		if h.Logger != nil {
			h.Logger.WithField("request_id", c.GetString("request_id")).WithField("fields", len(verr.Fields)).Debug("validation failed")
		}
		response.Send(c, response.Error[any](c, http.StatusBadRequest, "validation failed", verr.Fields))
	case errors.Is(err, application.ErrConflict):
		response.Send(c, response.Error[any](c, http.StatusConflict, "email already registered", nil))
	case errors.Is(err, application.ErrAccountNotFound):
		response.Send(c, response.Error[any](c, http.StatusNotFound, "user not found", nil))
	default:
		if h.Logger != nil {
			helpers.LogError(h.Logger, "account request failed", err, logrus.Fields{
				"request_id": c.GetString("request_id"),
				"method":     c.Request.Method,
				"path":       c.FullPath(),
			})
		}
		response.Send(c, response.Error[any](c, http.StatusInternalServerError, "internal server error", nil))
	}
}

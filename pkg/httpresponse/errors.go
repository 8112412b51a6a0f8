// Package httpresponse translates merrors values into fiber JSON
// responses and supplies the handful of status helpers the
// agent-facing and dashboard-facing HTTP surfaces share.
package httpresponse

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ecoci/ecoci/pkg/merrors"
)

// ResponseError is the JSON envelope every non-2xx response carries.
type ResponseError struct {
	Code    string `json:"code,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r ResponseError) Error() string { return r.Message }

// WithError type-switches on err's concrete merrors type and renders
// the matching HTTP status, falling back to a 500 for anything
// unrecognized.
func WithError(c *fiber.Ctx, err error) error {
	switch e := err.(type) {
	case merrors.EntityNotFoundError:
		return NotFound(c, e.Code, "Not Found", e.Error())
	case merrors.ConflictError:
		return Conflict(c, e.Code, "Conflict", e.Error())
	case merrors.ValidationError:
		return BadRequest(c, e.Code, "Bad Request", e.Error())
	case merrors.UnprocessableOperationError:
		return UnprocessableEntity(c, e.Code, "Unprocessable Entity", e.Error())
	case merrors.UnauthorizedError:
		return Unauthorized(c, e.Code, "Unauthorized", e.Error())
	case ResponseError:
		var rErr ResponseError
		_ = errors.As(err, &rErr)

		return JSONResponseError(c, rErr)
	default:
		var iErr merrors.InternalServerError
		_ = errors.As(merrors.ValidateInternalError(err, ""), &iErr)

		return InternalServerError(c, iErr.Code, "Internal Server Error", iErr.Message)
	}
}

// JSONResponseError writes r with HTTP 500; ResponseError carries no
// status code of its own.
func JSONResponseError(c *fiber.Ctx, r ResponseError) error {
	return c.Status(fiber.StatusInternalServerError).JSON(r)
}

func NotFound(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(ResponseError{Code: code, Title: title, Message: message})
}

func BadRequest(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ResponseError{Code: code, Title: title, Message: message})
}

func Conflict(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusConflict).JSON(ResponseError{Code: code, Title: title, Message: message})
}

func UnprocessableEntity(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ResponseError{Code: code, Title: title, Message: message})
}

func Unauthorized(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ResponseError{Code: code, Title: title, Message: message})
}

func Forbidden(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(ResponseError{Code: code, Title: title, Message: message})
}

func InternalServerError(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ResponseError{Code: code, Title: title, Message: message})
}

// AgentEnvelope is the wire shape every /agent-api response carries:
// status tags the outcome, result carries the payload on success, and
// error carries a message on every other status.
type AgentEnvelope struct {
	Status string `json:"status"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// AgentOK writes result under the agent-api success envelope.
func AgentOK(c *fiber.Ctx, result any) error {
	return c.Status(fiber.StatusOK).JSON(AgentEnvelope{Status: "success", Result: result})
}

// AgentAccepted is AgentOK(c, true), the envelope shape for endpoints
// whose successful result is always the literal true.
func AgentAccepted(c *fiber.Ctx) error {
	return AgentOK(c, true)
}

// WithAgentError translates err into the agent-api envelope, collapsing
// every merrors case into one of the wire protocol's status tags:
// not-found, unauthorized, or internal-error (slow-down is reserved for
// the transport layer's own overload signalling, never a handler
// error).
func WithAgentError(c *fiber.Ctx, err error) error {
	switch e := err.(type) {
	case merrors.EntityNotFoundError:
		return agentEnvelopeError(c, fiber.StatusNotFound, "not-found", e.Error())
	case merrors.UnauthorizedError:
		return agentEnvelopeError(c, fiber.StatusUnauthorized, "unauthorized", e.Error())
	default:
		var iErr merrors.InternalServerError
		_ = errors.As(merrors.ValidateInternalError(err, ""), &iErr)

		return agentEnvelopeError(c, fiber.StatusInternalServerError, "internal-error", iErr.Message)
	}
}

func agentEnvelopeError(c *fiber.Ctx, status int, tag, message string) error {
	return c.Status(status).JSON(AgentEnvelope{Status: tag, Error: message})
}

// OK writes body with HTTP 200.
func OK(c *fiber.Ctx, body any) error {
	return c.Status(fiber.StatusOK).JSON(body)
}

// Created writes body with HTTP 201.
func Created(c *fiber.Ctx, body any) error {
	return c.Status(fiber.StatusCreated).JSON(body)
}

// NoContent writes an empty HTTP 204.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

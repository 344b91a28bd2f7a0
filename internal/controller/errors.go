package controller

import (
	"errors"

	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/benbeisheim/chessrules/internal/service"
	"github.com/gofiber/fiber/v2"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeMatchNotFound      = "MATCH_NOT_FOUND"
	CodeMatchFull          = "MATCH_FULL"
	CodeMatchExists        = "MATCH_EXISTS"
	CodeNotSeated          = "NOT_SEATED"
	CodeAlreadyQueued      = "ALREADY_QUEUED"
	CodeAlreadyConnected   = "ALREADY_CONNECTED"
	CodeEmptySource        = "EMPTY_SOURCE"
	CodeWrongTurn          = "WRONG_TURN"
	CodeIllegalDestination = "ILLEGAL_DESTINATION"
	CodeInvalidCoordinate  = "INVALID_COORDINATE"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternalError      = "INTERNAL_ERROR"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// Classify maps a service or rules error onto an HTTP status and error code.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidCoordinate):
		return fiber.StatusBadRequest, CodeInvalidCoordinate
	case errors.Is(err, model.ErrEmptySource):
		return fiber.StatusConflict, CodeEmptySource
	case errors.Is(err, model.ErrWrongTurn):
		return fiber.StatusConflict, CodeWrongTurn
	case errors.Is(err, model.ErrIllegalDestination):
		return fiber.StatusConflict, CodeIllegalDestination
	case errors.Is(err, service.ErrNotSeated):
		return fiber.StatusConflict, CodeNotSeated
	case errors.Is(err, service.ErrMatchFull):
		return fiber.StatusConflict, CodeMatchFull
	case errors.Is(err, service.ErrMatchExists):
		return fiber.StatusConflict, CodeMatchExists
	case errors.Is(err, service.ErrAlreadyQueued):
		return fiber.StatusConflict, CodeAlreadyQueued
	case errors.Is(err, service.ErrAlreadyConnected):
		return fiber.StatusConflict, CodeAlreadyConnected
	case errors.Is(err, service.ErrMatchNotFound):
		return fiber.StatusNotFound, CodeMatchNotFound
	default:
		return fiber.StatusInternalServerError, CodeInternalError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status, code := Classify(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "internal server error"
	}
	return c.Status(status).JSON(ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// ErrorHandler renders errors that escape handlers, including fiber's own,
// in the same shape as respondError.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		return respondError(c, err)
	}

	response := ErrorResponse{Error: fe.Message, Code: CodeInternalError}
	switch fe.Code {
	case fiber.StatusNotFound:
		response.Code = CodeNotFound
	case fiber.StatusBadRequest, fiber.StatusUpgradeRequired:
		response.Code = CodeInvalidRequest
	case fiber.StatusTooManyRequests:
		response.Code = CodeRateLimitExceeded
	case fiber.StatusUnauthorized:
		response.Code = CodeUnauthorized
	}
	return c.Status(fe.Code).JSON(response)
}

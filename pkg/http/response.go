package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the envelope every endpoint answers with. Status repeats the
// HTTP status code.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

const genericServerError = "Something went wrong"

func DataResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, APIResponse{Status: status, Message: http.StatusText(status), Data: data})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

func BadRequestResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusBadRequest, data)
}

func NotFoundResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusNotFound, data)
}

// InternalServerErrorResponse never carries error detail.
func InternalServerErrorResponse(c echo.Context) error {
	return DataResponse(c, http.StatusInternalServerError, genericServerError)
}

// AppErrorResponse writes err with its own status when it is a client-side
// *AppError, and as a generic 500 otherwise.
func AppErrorResponse(c echo.Context, err error) error {
	var ae *AppError
	if !errors.As(err, &ae) || ae.Status >= http.StatusInternalServerError {
		return InternalServerErrorResponse(c)
	}
	return DataResponse(c, ae.Status, []*AppError{ae})
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pos-backoffice/internal/gateway"
)

// statusFor maps a gateway failure to the status the terminal answers with.
// The remote service's own 4xx statuses pass through; everything the
// terminal cannot attribute to the request becomes 502.
func statusFor(err error) int {
	var aerr *gateway.AuthError
	if !errors.As(err, &aerr) {
		return http.StatusInternalServerError
	}
	switch aerr.Kind {
	case gateway.InvalidCredentials:
		return http.StatusUnauthorized
	case gateway.ServerError:
		if aerr.Status >= 400 && aerr.Status < 500 {
			return aerr.Status
		}
	}
	return http.StatusBadGateway
}

// failure writes err as {"error": message}.
func failure(c echo.Context, err error) error {
	msg := gateway.MsgRequestFailed
	var aerr *gateway.AuthError
	if errors.As(err, &aerr) && aerr.Message != "" {
		msg = aerr.Message
	}
	return c.JSON(statusFor(err), echo.Map{"error": msg})
}

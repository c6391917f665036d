package handler

import (
	"errors"
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error  string               `json:"error"`
	Failed []usecase.FailedItem `json:"failed,omitempty"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		body := ErrorResponse{Error: he.Message}

		//価格の取れなかった商品も返す
		var ue *usecase.UnresolvedItemsError
		if errors.As(err, &ue) {
			body.Failed = ue.Failed
		}
		return c.JSON(he.Status, body)
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

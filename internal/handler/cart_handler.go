package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type CartLineRequest struct {
	ID    string `json:"_id"`
	Count int64  `json:"count"`
}

type AddCartRequest struct {
	Cart []CartLineRequest `json:"cart"`
}

type SetCountRequest struct {
	Count *int64 `json:"count"`
}

type RemoveItemResponse struct {
	UpdatedCart usecase.CartView `json:"updatedCart"`
}

// /api/cart を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	g := e.Group("/api/cart")
	g.Use(auth)

	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.DELETE("/empty", h.emptyCart)
	g.PUT("/:itemId", h.removeItem)
	g.PATCH("/:itemId", h.setCount)
}

func (h *CartHandler) getCart(c echo.Context) error {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetCart(c.Request().Context(), ownerID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	lines := make([]usecase.LineRequest, 0, len(req.Cart))
	for _, l := range req.Cart {
		lines = append(lines, usecase.LineRequest{ItemID: l.ID, Count: l.Count})
	}

	out, err := h.uc.AddOrMergeItems(c.Request().Context(), ownerID, lines)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), ownerID, c.Param("itemId"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, RemoveItemResponse{UpdatedCart: out})
}

func (h *CartHandler) setCount(c echo.Context) error {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req SetCountRequest
	if err := c.Bind(&req); err != nil || req.Count == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.SetItemCount(c.Request().Context(), ownerID, c.Param("itemId"), *req.Count)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) emptyCart(c echo.Context) error {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.EmptyCart(c.Request().Context(), ownerID); err != nil {
		return writeError(c, err)
	}

	//空のカートを返す
	out, err := h.uc.GetCart(c.Request().Context(), ownerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

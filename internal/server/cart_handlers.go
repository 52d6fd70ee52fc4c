package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Omarkam3l/Kathir-final/internal/domain"
	"github.com/Omarkam3l/Kathir-final/internal/service"
)

// The authenticated user arrives pre-resolved from the auth layer in front of
// this service.
const userIDHeader = "X-User-ID"

func (s *Server) userID(c *gin.Context, required bool) (uuid.UUID, bool) {
	raw := c.GetHeader(userIDHeader)
	if raw == "" {
		if required {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": userIDHeader + " header is required"})
			return uuid.Nil, false
		}
		return uuid.Nil, true
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": userIDHeader + " header is not a valid UUID"})
		return uuid.Nil, false
	}

	return id, true
}

type addToCartRequest struct {
	MealID   uuid.UUID `json:"meal_id" binding:"required"`
	Quantity int       `json:"quantity"`
}

func (s *Server) handleAddToCart(c *gin.Context) {
	userID, ok := s.userID(c, true)
	if !ok {
		return
	}

	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body: " + err.Error()})
		return
	}
	result, err := s.ledger.AddItem(c.Request.Context(), userID, req.MealID, req.Quantity)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"action":         result.Action,
		"meal_id":        result.Meal.ID,
		"title":          result.Meal.Title,
		"unit_price":     result.Meal.Price.Float2(),
		"added_quantity": req.Quantity,
		"new_quantity":   result.Line.Quantity,
		"total_price":    result.LineTotal.Float2(),
		"message": fmt.Sprintf("%s %q x%d, cart quantity: %d",
			result.Action, result.Meal.Title, req.Quantity, result.Line.Quantity),
	})
}

func (s *Server) handleGetCart(c *gin.Context) {
	userID, ok := s.userID(c, true)
	if !ok {
		return
	}

	opts := service.RenderOptions{
		IncludeStale: c.Query("include_expired") == "true",
	}
	if raw := c.Query("restaurant_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "restaurant_id is not a valid UUID"})
			return
		}
		opts.RestaurantID = id
	}

	view, err := s.ledger.RenderCart(c.Request.Context(), userID, opts)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"user_id":        view.UserID,
		"count":          len(view.Lines),
		"total_quantity": view.TotalQuantity,
		"total":          view.Total.Float2(),
		"items":          cartLinesJSON(view.Lines),
		"stale_items":    cartLinesJSON(view.StaleLines),
		"stale_count":    len(view.StaleLines),
		"message":        view.Message,
	})
}

type buildCartRequest struct {
	Budget            decimal.Decimal `json:"budget"`
	RestaurantID      uuid.UUID       `json:"restaurant_id"`
	RestaurantName    string          `json:"restaurant_name"`
	TargetUniqueCount int             `json:"target_unique_count"`
	MaxQtyPerItem     int             `json:"max_qty_per_item"`
	PreferredItemIDs  []uuid.UUID     `json:"preferred_item_ids"`
}

func (s *Server) handleBuildCart(c *gin.Context) {
	userID, ok := s.userID(c, false)
	if !ok {
		return
	}

	var req buildCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body: " + err.Error()})
		return
	}

	buildReq := service.BuildCartRequest{
		ResolveRequest: service.ResolveRequest{
			RestaurantID:   req.RestaurantID,
			RestaurantName: req.RestaurantName,
			UserID:         userID,
			PreferredIDs:   req.PreferredItemIDs,
		},
		Budget:            domain.NewMoney(req.Budget, s.currency),
		TargetUniqueCount: req.TargetUniqueCount,
		MaxQtyPerItem:     req.MaxQtyPerItem,
	}
	if buildReq.TargetUniqueCount == 0 {
		buildReq.TargetUniqueCount = s.cfg.Cart.TargetUniqueCount
	}
	if buildReq.MaxQtyPerItem == 0 {
		buildReq.MaxQtyPerItem = s.cfg.Cart.MaxQtyPerItem
	}

	proposal, err := s.allocator.BuildCart(c.Request.Context(), buildReq)
	if err != nil {
		s.respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(proposal.Lines))
	for _, line := range proposal.Lines {
		items = append(items, gin.H{
			"meal_id":     line.MealID,
			"title":       line.Title,
			"unit_price":  line.UnitPrice.Float2(),
			"quantity":    line.Quantity,
			"subtotal":    line.Subtotal.Float2(),
			"is_favorite": line.IsFavorite,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":               true,
		"restaurant_name":  proposal.RestaurantName,
		"budget":           proposal.Budget.Float2(),
		"total":            proposal.Total.Float2(),
		"remaining_budget": proposal.RemainingBudget.Float2(),
		"count":            proposal.UniqueItems(),
		"total_quantity":   proposal.TotalQuantity,
		"items":            items,
		"message":          proposal.Message,
	})
}

func cartLinesJSON(lines []domain.CartViewLine) []gin.H {
	out := make([]gin.H, 0, len(lines))
	for _, line := range lines {
		item := gin.H{
			"meal_id":         line.MealID,
			"title":           line.Title,
			"category":        line.Category,
			"restaurant_name": line.RestaurantName,
			"unit_price":      line.UnitPrice.Float2(),
			"quantity":        line.Quantity,
			"subtotal":        line.Subtotal.Float2(),
			"available_stock": line.AvailableStock,
			"added_at":        line.AddedAt,
		}
		if line.Warning != "" {
			item["warning"] = line.Warning
		}
		if line.StaleReason != "" {
			item["stale_reason"] = line.StaleReason
		}
		out = append(out, item)
	}
	return out
}

package server

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Omarkam3l/Kathir-final/internal/domain"
	"github.com/Omarkam3l/Kathir-final/internal/service"
)

const descriptionPreviewLen = 140

func (s *Server) searchRequest(c *gin.Context) (service.SearchRequest, bool) {
	req := service.SearchRequest{
		Query:          c.Query("query"),
		RestaurantName: c.Query("restaurant_name"),
		Category:       c.Query("category"),
		Sort:           c.DefaultQuery("sort", service.SortRelevance),
	}

	if raw := c.Query("restaurant_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "restaurant_id is not a valid UUID"})
			return service.SearchRequest{}, false
		}
		req.RestaurantID = id
	}

	for name, dst := range map[string]**decimal.Decimal{
		"min_price": &req.MinPrice,
		"max_price": &req.MaxPrice,
	} {
		if raw := c.Query(name); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": name + " is not a valid number"})
				return service.SearchRequest{}, false
			}
			*dst = &d
		}
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "limit is not a valid integer"})
			return service.SearchRequest{}, false
		}
		req.Limit = limit
	}

	req.ExcludeAllergens = splitCSV(c.Query("exclude_allergens"))
	req.RequireAllergens = splitCSV(c.Query("require_allergens"))

	return req, true
}

func (s *Server) handleSearchMeals(c *gin.Context) {
	req, ok := s.searchRequest(c)
	if !ok {
		return
	}

	result, err := s.search.SearchMeals(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":              true,
		"query":           result.Query,
		"restaurant_name": result.Restaurant,
		"count":           len(result.Meals),
		"results":         mealsJSON(result.Meals, nil),
		"sort":            req.Sort,
	})
}

func (s *Server) handleSearchFavorites(c *gin.Context) {
	userID, ok := s.userID(c, true)
	if !ok {
		return
	}

	req, ok := s.searchRequest(c)
	if !ok {
		return
	}

	result, err := s.search.SearchFavorites(c.Request.Context(), userID, req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	resp := gin.H{
		"ok":      true,
		"query":   result.Query,
		"count":   len(result.Meals),
		"results": mealsJSON(result.Meals, result.FavoriteIDs),
	}
	if len(result.Meals) == 0 {
		resp["message"] = "No favorite meals matched."
	}

	c.JSON(http.StatusOK, resp)
}

func mealsJSON(meals []domain.Meal, favoriteIDs map[uuid.UUID]bool) []gin.H {
	out := make([]gin.H, 0, len(meals))
	for _, meal := range meals {
		description := previewDescription(meal.Description)

		item := gin.H{
			"id":          meal.ID,
			"title":       meal.Title,
			"description": description,
			"category":    meal.Category,
			"price":       meal.Price.Float2(),
			"allergens":   meal.Allergens,
			"stock":       meal.Stock,
		}
		if favoriteIDs != nil {
			item["is_favorite"] = favoriteIDs[meal.ID]
		}
		out = append(out, item)
	}
	return out
}

// previewDescription truncates to the preview length without splitting a
// multi-byte rune.
func previewDescription(description string) string {
	if len(description) <= descriptionPreviewLen {
		return description
	}

	cut := descriptionPreviewLen
	for cut > 0 && !utf8.RuneStart(description[cut]) {
		cut--
	}
	return description[:cut]
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

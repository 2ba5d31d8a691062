package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"freebie/internal/app/dto"
	itemsvc "freebie/internal/app/services/items"
	domainitems "freebie/internal/domain/items"
)

// ItemHTTP exposes listing endpoints.
type ItemHTTP interface {
	Search(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Delete(c *gin.Context)
}

// ItemHandler bridges HTTP with the items service.
type ItemHandler struct {
	Service *itemsvc.Service
	Logger  *slog.Logger
}

// Search filters the catalog. Geo search needs lat, lng and radius_km
// together; partial coordinates are a bad request.
func (h ItemHandler) Search(c *gin.Context) {
	params := domainitems.SearchParams{
		Category: strings.TrimSpace(c.Query("category")),
		Query:    strings.TrimSpace(c.Query("q")),
		OwnerID:  strings.TrimSpace(c.Query("owner_id")),
	}
	latRaw, lngRaw, radiusRaw := c.Query("lat"), c.Query("lng"), c.Query("radius_km")
	if latRaw != "" || lngRaw != "" || radiusRaw != "" {
		lat, errLat := strconv.ParseFloat(latRaw, 64)
		lng, errLng := strconv.ParseFloat(lngRaw, 64)
		radius, errRadius := strconv.ParseFloat(radiusRaw, 64)
		if errLat != nil || errLng != nil || errRadius != nil || radius <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lat, lng and radius_km must be provided together"})
			return
		}
		params.Near = &domainitems.GeoPoint{Lat: lat, Lng: lng}
		params.RadiusKm = radius
	}
	found, err := h.Service.Search(c.Request.Context(), params)
	if err != nil {
		h.logError("item search failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	list := dto.ItemList{Items: make([]dto.Item, 0, len(found))}
	for _, item := range found {
		list.Items = append(list.Items, dto.NewItem(item))
	}
	c.JSON(http.StatusOK, list)
}

func (h ItemHandler) Get(c *gin.Context) {
	id := domainitems.ItemID(c.Param("id"))
	item, err := h.Service.ByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domainitems.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		h.logError("item load failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.NewItem(item))
}

// Create accepts a multipart form: the listing fields plus an optional
// photo part.
func (h ItemHandler) Create(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	params := itemsvc.CreateParams{
		OwnerID:     p.ID,
		Title:       strings.TrimSpace(c.PostForm("title")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Category:    strings.TrimSpace(c.PostForm("category")),
		Address:     strings.TrimSpace(c.PostForm("address")),
		ShowAddress: c.PostForm("show_address") == "true",
	}
	if lat, err := strconv.ParseFloat(c.PostForm("lat"), 64); err == nil {
		params.Location.Lat = lat
	}
	if lng, err := strconv.ParseFloat(c.PostForm("lng"), 64); err == nil {
		params.Location.Lng = lng
	}
	params.EventDate = parseTimeForm(c.PostForm("event_date"))
	params.StartTime = parseTimeForm(c.PostForm("start_time"))
	params.EndTime = parseTimeForm(c.PostForm("end_time"))

	if file, err := c.FormFile("photo"); err == nil && file != nil {
		reader, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable photo"})
			return
		}
		defer reader.Close()
		params.Photo = reader
		params.PhotoType = file.Header.Get("Content-Type")
	}

	item, err := h.Service.Create(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, domainitems.ErrTitleRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}
		h.logError("item create failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, dto.NewItem(item))
}

func (h ItemHandler) Delete(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	id := domainitems.ItemID(c.Param("id"))
	if err := h.Service.Delete(c.Request.Context(), id, p.ID); err != nil {
		switch {
		case errors.Is(err, domainitems.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		case errors.Is(err, domainitems.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "not the owner"})
		default:
			h.logError("item delete failed", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (h ItemHandler) logError(msg string, err error) {
	if h.Logger != nil {
		h.Logger.Error(msg, "error", err)
	}
}

func parseTimeForm(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}

var _ ItemHTTP = (*ItemHandler)(nil)

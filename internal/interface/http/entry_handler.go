package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-movie-catalog/internal/application"
	"github.com/oksasatya/go-movie-catalog/internal/domain/entity"
	"github.com/oksasatya/go-movie-catalog/internal/interface/middleware"
	"github.com/oksasatya/go-movie-catalog/pkg/helpers"
	"github.com/oksasatya/go-movie-catalog/pkg/response"
)

const (
	msgUnauthorized = "Unauthorized!"
	msgAccessDenied = "Access denied!"
	msgNotFound     = "Item not found!"
	msgInternal     = "Something went wrong!"
)

type EntryHandler struct {
	Svc    *application.EntryService
	Logger *logrus.Logger
	// OpenLikes accepts a body-supplied userId on like when no identity was resolved.
	OpenLikes bool
}

func NewEntryHandler(svc *application.EntryService, logger *logrus.Logger, openLikes bool) *EntryHandler {
	return &EntryHandler{Svc: svc, Logger: logger, OpenLikes: openLikes}
}

type entryResponse struct {
	ID          string    `json:"_id"`
	OwnerID     string    `json:"ownerId"`
	Category    string    `json:"category"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	Rating      float64   `json:"rating"`
	Review      string    `json:"review"`
	Description string    `json:"description"`
	LikedBy     []string  `json:"likedBy"`
	Likes       int       `json:"likes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ownerListingResponse struct {
	Movies []entryResponse `json:"movies"`
	Email  string          `json:"email"`
}

type likeRequest struct {
	UserID string `json:"userId"`
}

func toEntryResponse(e *entity.Entry) entryResponse {
	likedBy := e.LikedBy
	if likedBy == nil {
		likedBy = []string{}
	}
	return entryResponse{
		ID:          e.ID,
		OwnerID:     e.OwnerID,
		Category:    string(e.Category),
		Name:        e.Name,
		Image:       e.Image,
		Rating:      e.Rating,
		Review:      e.Review,
		Description: e.Description,
		LikedBy:     likedBy,
		Likes:       e.LikeCount(),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toEntryList(entries []entity.Entry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toEntryResponse(&entries[i]))
	}
	return out
}

// bindPayload decodes the request body. A malformed body travels with the
// payload and is reported by validation, after existence and ownership checks.
func bindPayload(c *gin.Context) application.EntryPayload {
	var p application.EntryPayload
	if err := c.ShouldBindJSON(&p); err != nil && !errors.Is(err, io.EOF) {
		return application.MalformedPayload(err)
	}
	return p
}

func (h *EntryHandler) List(c *gin.Context) {
	entries, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toEntryList(entries), "entries", nil)
}

func (h *EntryHandler) Get(c *gin.Context) {
	e, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toEntryResponse(e), "entry", nil)
}

func (h *EntryHandler) Create(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	e, err := h.Svc.Create(c.Request.Context(), bindPayload(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toEntryResponse(e), "entry created", nil)
}

func (h *EntryHandler) Edit(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	e, err := h.Svc.Edit(c.Request.Context(), c.Param("id"), bindPayload(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toEntryResponse(e), "entry updated", nil)
}

func (h *EntryHandler) Delete(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id"), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Like records the caller's like. With OpenLikes and no resolved identity the
// body userId is used instead.
func (h *EntryHandler) Like(c *gin.Context) {
	identityID := h.likeIdentity(c)
	e, err := h.Svc.Like(c.Request.Context(), c.Param("id"), identityID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toEntryResponse(e), "entry liked", nil)
}

func (h *EntryHandler) Unlike(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	e, err := h.Svc.Unlike(c.Request.Context(), c.Param("id"), id.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toEntryResponse(e), "entry unliked", nil)
}

func (h *EntryHandler) likeIdentity(c *gin.Context) string {
	if id, ok := middleware.IdentityFrom(c); ok {
		return id.ID
	}
	if !h.OpenLikes {
		return ""
	}
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return ""
	}
	return strings.TrimSpace(req.UserID)
}

func (h *EntryHandler) Mine(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	listing, err := h.Svc.ListByOwner(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, ownerListingResponse{
		Movies: toEntryList(listing.Movies),
		Email:  listing.Email,
	}, "owner entries", nil)
}

// fail is the single translation point from service errors to HTTP.
func (h *EntryHandler) fail(c *gin.Context, err error) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(c, http.StatusBadRequest, verr.Error(), verr.Violations)
	case errors.Is(err, application.ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, msgUnauthorized, nil)
	case errors.Is(err, application.ErrAccessDenied):
		response.Error(c, http.StatusForbidden, msgAccessDenied, nil)
	case errors.Is(err, application.ErrNotFound):
		response.Error(c, http.StatusNotFound, msgNotFound, nil)
	default:
		helpers.LogError(h.Logger, "catalog request failed", err, logrus.Fields{"request_id": c.GetString(response.RequestIDKey)})
		response.Error(c, http.StatusBadRequest, msgInternal, nil)
	}
}

// Gateway HTTP handlers.
//
// This file exposes the gateway's own endpoints, mounted under the gateway
// base path (default /gateway):
//   - GET /routes          (route registry listing)
//   - GET /session         (decoded bearer token)
//   - GET /notifications   (journaled notifications, paginated)
//   - GET /notifications/:id
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-storefront-gateway/internal/apierror"
	"github.com/tbourn/go-storefront-gateway/internal/dispatch"
	"github.com/tbourn/go-storefront-gateway/internal/domain"
	"github.com/tbourn/go-storefront-gateway/internal/http/middleware"
	"github.com/tbourn/go-storefront-gateway/internal/notify"
	"github.com/tbourn/go-storefront-gateway/internal/repo"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
	"github.com/tbourn/go-storefront-gateway/internal/search"
	"github.com/tbourn/go-storefront-gateway/internal/utils"
)

//
// Contracts
//

// Upstream performs one dispatch round trip. *dispatch.Client implements it.
type Upstream interface {
	Send(ctx context.Context, req dispatch.Request) (*dispatch.Response, error)
}

// Notifier surfaces failures to the user-facing notification sink.
// *notify.Notifier implements it.
type Notifier interface {
	ShowError(ctx context.Context, err any)
}

// NotificationPager reads the notification journal. repo.Journal implements it.
type NotificationPager interface {
	Page(ctx context.Context, f repo.NotificationFilter, offset, limit int) ([]domain.Notification, int64, error)
	Get(ctx context.Context, id string) (*domain.Notification, error)
}

//
// Handler wiring
//

// Handlers groups the gateway endpoints and the registry forwarder.
type Handlers struct {
	registry *routes.Registry
	index    *search.Index
	upstream Upstream
	notifier Notifier
	journal  NotificationPager
	now      func() time.Time
}

// New constructs Handlers. notifier and journal may be nil: failures are then
// only logged and the notifications endpoint reports the journal as disabled.
func New(reg *routes.Registry, upstream Upstream, notifier Notifier, journal NotificationPager) *Handlers {
	return &Handlers{
		registry: reg,
		index:    search.NewRouteIndex(reg),
		upstream: upstream,
		notifier: notifier,
		journal:  journal,
		now:      time.Now,
	}
}

//
// DTOs
//

// RouteView is one registry entry as listed by the gateway.
type RouteView struct {
	Key       string  `json:"key"       example:"reviews.by_product"`
	Domain    string  `json:"domain"    example:"reviews"`
	Operation string  `json:"operation" example:"by_product"`
	Service   string  `json:"service"   example:"reviews"`
	Method    string  `json:"method"    example:"GET"`
	Path      string  `json:"path"      example:"/api/reviews/product/{id}"`
	Score     float64 `json:"score,omitempty"`
}

// ListRoutesResponse wraps the registry listing.
type ListRoutesResponse struct {
	Routes  []RouteView `json:"routes"`
	Domains []string    `json:"domains"`
	Count   int         `json:"count"`
}

// SessionResponse describes the caller's bearer token.
type SessionResponse struct {
	Session          domain.JwtPayload `json:"session"`
	ExpiresInSeconds int64             `json:"expires_in_seconds,omitempty"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListNotificationsResponse wraps a page of journaled notifications.
type ListNotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Pagination    Pagination            `json:"pagination"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxSearchHits   = 10
)

//
// Handlers
//

// ListRoutes godoc
// @ID          listRoutes
// @Summary     List the route registry
// @Description Returns every (domain, operation) the gateway forwards, with its backend service, method and path template.
// @Description With q the routes are ranked by how well they match the query, best first.
// @Tags        Gateway
// @Produce     json
//
// @Param       domain  query  string  false  "Only routes of this domain"  example(reviews)
// @Param       q       query  string  false  "Free-text search"            example(reviews for a product)
//
// @Success     200  {object}  handlers.ListRoutesResponse
// @Router      /gateway/routes [get]
func (h *Handlers) ListRoutes(c *gin.Context) {
	want := c.Query("domain")
	out := ListRoutesResponse{Routes: []RouteView{}, Domains: h.registry.Domains()}

	q := c.Query("q")
	var hits []search.Result
	if q != "" {
		hits = h.index.TopK(q, h.index.Len())
	} else {
		for _, r := range h.registry.All() {
			hits = append(hits, search.Result{Route: r})
		}
	}
	for _, hit := range hits {
		r := hit.Route
		if want != "" && r.Domain != want {
			continue
		}
		if q != "" && len(out.Routes) == maxSearchHits {
			break
		}
		out.Routes = append(out.Routes, RouteView{
			Key:       r.Key().String(),
			Domain:    r.Domain,
			Operation: r.Operation,
			Service:   r.Service,
			Method:    r.Method,
			Path:      r.Path,
			Score:     hit.Score,
		})
	}
	out.Count = len(out.Routes)
	ok(c, http.StatusOK, out)
}

// Session godoc
// @ID          getSession
// @Summary     Decode the caller's session token
// @Description Returns the claims of the bearer token. The signature is only checked when the gateway has a JWT secret.
// @Tags        Gateway
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.SessionResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Router      /gateway/session [get]
func (h *Handlers) Session(c *gin.Context) {
	claims, found := middleware.ClaimsFrom(c)
	if !found {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, apierror.MsgAuthentication)
		return
	}
	resp := SessionResponse{Session: *claims}
	if !claims.ExpiresAt.IsZero() {
		resp.ExpiresInSeconds = int64(claims.ExpiresAt.Sub(h.now()).Seconds())
	}
	ok(c, http.StatusOK, resp)
}

// ListNotifications godoc
// @ID          listNotifications
// @Summary     List journaled notifications (paginated)
// @Description Returns warning and error notifications the gateway surfaced, newest first.
// @Tags        Gateway
// @Produce     json
//
// @Param       page        query  int     false  "Page number"     minimum(1) default(1)
// @Param       page_size   query  int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Param       level       query  string  false  "Filter by level" Enums(info, success, warning, error)
// @Param       request_id  query  string  false  "Filter by request id"
//
// @Success     200  {object}  handlers.ListNotificationsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Journal disabled"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /gateway/notifications [get]
func (h *Handlers) ListNotifications(c *gin.Context) {
	if h.journal == nil {
		fail(c, http.StatusNotFound, ErrCodeJournalDisabled, "notification journal is disabled")
		return
	}

	f := repo.NotificationFilter{RequestID: c.Query("request_id")}
	if lv := c.Query("level"); lv != "" {
		if string(notify.ParseLevel(lv)) != lv {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "level must be one of info, success, warning, error")
			return
		}
		f.Level = lv
	}

	page, size := utils.ClampPage(c.Query("page"), c.Query("page_size"), defaultPageSize, maxPageSize)
	items, total, err := h.journal.Page(c.Request.Context(), f, utils.Offset(page, size), size)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []domain.Notification{}
	}

	totalPages := utils.TotalPages(total, size)
	ok(c, http.StatusOK, ListNotificationsResponse{
		Notifications: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   size,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetNotification godoc
// @ID          getNotification
// @Summary     Get one journaled notification
// @Tags        Gateway
// @Produce     json
//
// @Param       id  path  string  true  "Notification ID"
//
// @Success     200  {object}  domain.Notification
// @Failure     404  {object}  handlers.ErrorResponse  "Not found or journal disabled"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /gateway/notifications/{id} [get]
func (h *Handlers) GetNotification(c *gin.Context) {
	if h.journal == nil {
		fail(c, http.StatusNotFound, ErrCodeJournalDisabled, "notification journal is disabled")
		return
	}
	n, err := h.journal.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, repo.ErrNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "notification not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusOK, n)
	}
}

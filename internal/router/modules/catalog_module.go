package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-movie-catalog/internal/interface/http"
	"github.com/oksasatya/go-movie-catalog/internal/interface/middleware"
)

// CatalogModule wires the catalog routes.
// Public: GET /api/movies, GET /api/movies/:id
// Protected: POST/PUT/DELETE on /api/movies, like/unlike, GET /api/movies/mine
// With OpenLikes, POST /api/movies/:id/like resolves identity optionally.
type CatalogModule struct {
	Handler   *handlers.EntryHandler
	Identity  *middleware.IdentityResolver
	OpenLikes bool
}

func NewCatalogModule(h *handlers.EntryHandler, identity *middleware.IdentityResolver, openLikes bool) *CatalogModule {
	return &CatalogModule{Handler: h, Identity: identity, OpenLikes: openLikes}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	movies := rg.Group("/movies")

	required := m.Identity.Required()
	likeAuth := required
	if m.OpenLikes {
		likeAuth = m.Identity.Optional()
	}

	// /mine is registered before /:id; gin prefers the static segment
	movies.GET("/mine", required, m.Handler.Mine)

	movies.GET("", m.Handler.List)
	movies.GET("/:id", m.Handler.Get)
	movies.POST("", required, m.Handler.Create)
	movies.PUT("/:id", required, m.Handler.Edit)
	movies.DELETE("/:id", required, m.Handler.Delete)
	movies.POST("/:id/like", likeAuth, m.Handler.Like)
	movies.DELETE("/:id/like", required, m.Handler.Unlike)
}

package buildserver

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"rastiv/internal/config"
	"rastiv/internal/middleware"
)

// NewRouter 注册构建服务的路由。
func NewRouter(h *BuildHandler) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.HandleFunc("/build", h.Build).Methods(http.MethodPost)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	return r
}

// Wrap 为路由加上 CORS 和访问日志。accessLog 为 nil 时不记录访问日志。
func Wrap(r http.Handler, cors config.CORSConfig, accessLog io.Writer) http.Handler {
	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cors.AllowedOrigins),
		handlers.AllowedMethods(cors.AllowedMethods),
		handlers.AllowedHeaders(cors.AllowedHeaders),
		handlers.ExposedHeaders(append([]string{middleware.RequestIDHeader}, cors.ExposedHeaders...)),
		handlers.MaxAge(cors.MaxAge),
	}
	h := handlers.CORS(corsOptions...)(r)
	if accessLog != nil {
		h = handlers.CombinedLoggingHandler(accessLog, h)
	}
	return h
}

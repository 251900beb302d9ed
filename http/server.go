package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bobinette/paperlog/log"
)

// Server defines the interface to register the http handlers.
type Server interface {
	RegisterHandler(path, method string, f http.Handler)
}

type paramsKey struct{}

// GinServer routes the requests with gin. The path parameters of the route
// are passed to the handlers in the request context.
type GinServer struct {
	engine *gin.Engine
}

func NewServer(env string, logger log.Logger) *GinServer {
	if env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Next()
		logger.WithField("status", c.Writer.Status()).Debugf("%s %s", c.Request.Method, c.Request.URL.Path)
	})

	// CORS
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept-Language, Authorization, Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	// Unknown route
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
	})

	// Ping
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, map[string]string{"data": "ok"})
	})

	return &GinServer{engine: router}
}

func (s *GinServer) RegisterHandler(path, method string, f http.Handler) {
	s.engine.Handle(method, path, func(c *gin.Context) {
		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}

		ctx := context.WithValue(c.Request.Context(), paramsKey{}, params)
		f.ServeHTTP(c.Writer, c.Request.WithContext(ctx))
	})
}

// Engine gives access to the router for the handlers that are not go-kit
// servers.
func (s *GinServer) Engine() *gin.Engine {
	return s.engine
}

func (s *GinServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// param returns the path parameter key of the route.
func param(ctx context.Context, key string) string {
	params, _ := ctx.Value(paramsKey{}).(map[string]string)
	return params[key]
}

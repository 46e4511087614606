// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"gamine/blog-api/db"
	"gamine/blog-api/internal/service"
	"gamine/blog-api/internal/store"
	"gamine/blog-api/middleware"
	"gamine/blog-api/pkg/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var cacheStore = persist.NewMemoryStore(time.Minute)

type API struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Users    *store.Users
	Posts    *store.Posts
	Pictures *service.PictureStore
}

func NewRouter() (*API, error) {
	a := &API{}

	database, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	a.DB = database
	a.Users = store.NewUsers(database, security.NewArgon())
	a.Posts = store.NewPosts(database)

	makeLogger()

	pictures, err := service.NewPictureStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize picture store, %w", err)
	}
	a.Pictures = pictures

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetUint("userID"); v != 0 {
					fields = append(fields, zap.Uint("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	a.Router.MaxMultipartMemory = 5 << 20

	auth := middleware.NewAuthMiddleware(a.Users)
	limited := credentialLimiter()

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)
	}

	users := main.Group("/users", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/users 		-> Registers a new user
		users.POST("", a.UserRegister)

		// POST /api/users/login 	-> Logs in a user and sets the session cookie
		users.POST("/login", limited, a.UserLogin)

		// POST /api/users/logout 	-> Clears the session cookie
		users.POST("/logout", a.UserLogout)

		// GET /api/users/me		-> Returns the account of the logged in user
		users.GET("/me", auth, a.UserFetch)
	}

	// GET /api/authors/:username/posts -> Returns one page of that author's
	// posts. Lives outside /users so the parameter can't collide with /users/me
	main.GET("/authors/:username/posts", cacheFor(10), a.UserPosts)

	// PUT /api/users/me		-> Updates profile fields and picture.
	// Registered outside the users group so the smaller body limit
	// doesn't reject picture uploads
	main.PUT("/users/me", auth, middleware.BodySizeLimiter(viper.GetInt64("pictures.max_size")+1<<20), a.UserUpdate)

	posts := main.Group("/posts")
	{
		// GET /api/posts		-> Returns one page of the feed, newest first
		posts.GET("", cacheFor(10), a.PostFetchBulk)

		// GET /api/posts/:id		-> Returns a single post
		posts.GET("/:id", a.PostFetch)

		// POST /api/posts		-> Creates a post owned by the logged in user
		posts.POST("", auth, middleware.BodySizeLimiter(1<<20), a.PostCreate)

		// PUT /api/posts/:id		-> Updates a post, owner only
		posts.PUT("/:id", auth, middleware.BodySizeLimiter(1<<20), a.PostUpdate)

		// DELETE /api/posts/:id	-> Deletes a post, owner only
		posts.DELETE("/:id", auth, a.PostDelete)
	}

	password := main.Group("/password", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/password/reset	-> Emails a reset link, always answers the same
		password.POST("/reset", limited, a.PasswordResetRequest)

		// POST /api/password/reset/:token -> Verifies the token and sets the new password
		password.POST("/reset/:token", limited, a.PasswordResetConfirm)
	}

	// GET /api/pictures/:name	-> Serves a stored profile picture
	main.GET("/pictures/:name", cacheFor(60), a.PictureServe)

	return a, nil
}

// credentialLimiter throttles login and password reset attempts per IP.
// It turns into a no-op when rate limiting is disabled in the config.
func credentialLimiter() gin.HandlerFunc {
	if !viper.GetBool("rate_limit.enabled") {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: viper.GetInt("rate_limit.requests_per_second"),
		Burst:             viper.GetInt("rate_limit.burst"),
	})
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(cacheStore, time.Second*time.Duration(sec))
}

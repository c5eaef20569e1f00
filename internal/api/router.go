package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"bloghub/internal/auth"
	"bloghub/internal/config"
	"bloghub/internal/db"
	"bloghub/internal/email"
)

type Server struct {
	router *chi.Mux
	config *config.Config
}

func NewServer(
	cfg *config.Config,
	database *db.DB,
	emailService *email.SMTPService,
	userRepo *db.UserRepository,
	deviceRepo *db.DeviceRepository,
	blogRepo *db.BlogRepository,
	postRepo *db.PostRepository,
	commentRepo *db.CommentRepository,
	likeRepo *db.LikeRepository,
) *Server {
	tokenService := auth.NewTokenService(
		cfg.Auth.AccessTokenSecret,
		cfg.Auth.RefreshTokenSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)
	passwordHasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	authService := auth.NewService(
		userRepo,
		deviceRepo,
		tokenService,
		passwordHasher,
		emailService,
		cfg.Auth.CodeTTL,
	)

	authHandler := NewAuthHandler(authService, userRepo, tokenService)
	deviceHandler := NewDeviceHandler(deviceRepo)
	userHandler := NewUserHandler(userRepo, authService, passwordHasher)
	blogHandler := NewBlogHandler(blogRepo, postRepo, likeRepo)
	postHandler := NewPostHandler(postRepo, blogRepo, commentRepo, likeRepo, userRepo)
	commentHandler := NewCommentHandler(commentRepo, likeRepo, userRepo)
	testingHandler := NewTestingHandler(database)
	healthHandler := NewHealthHandler(database)

	authMiddleware := NewAuthMiddleware(tokenService, deviceRepo)
	basicAuth := NewBasicAuthMiddleware(cfg.Admin.Login, cfg.Admin.Password)
	throttled := ThrottleMiddleware(NewThrottle(cfg.Throttle.Window, cfg.Throttle.Ceiling))

	r := chi.NewRouter()
	r.Use(slogRequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		r.Use(maxBodySizeMiddleware(1 << 20)) // 1 MB
		r.Use(httprate.LimitByIP(300, time.Minute))

		r.Route("/auth", func(r chi.Router) {
			r.With(throttled).Post("/login", authHandler.Login)
			r.With(throttled).Post("/registration", authHandler.Registration)
			r.With(throttled).Post("/registration-confirmation", authHandler.RegistrationConfirmation)
			r.With(throttled).Post("/registration-email-resending", authHandler.RegistrationEmailResending)
			r.With(throttled).Post("/password-recovery", authHandler.PasswordRecovery)
			r.With(throttled).Post("/new-password", authHandler.NewPassword)

			r.With(authMiddleware.RequireRefreshCookie).Post("/refresh-token", authHandler.RefreshToken)
			r.With(authMiddleware.RequireRefreshCookie).Post("/logout", authHandler.Logout)
			r.With(authMiddleware.RequireBearer).Get("/me", authHandler.Me)
		})

		r.Route("/security/devices", func(r chi.Router) {
			r.Use(authMiddleware.RequireRefreshCookie)
			r.Get("/", deviceHandler.GetAll)
			r.Delete("/", deviceHandler.DeleteOthers)
			r.Delete("/{deviceId}", deviceHandler.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(basicAuth.RequireBasic)
			r.Get("/", userHandler.GetAll)
			r.Post("/", userHandler.Create)
			r.Delete("/{id}", userHandler.Delete)
			r.Put("/{id}/ban", userHandler.Ban)
		})

		r.Route("/blogs", func(r chi.Router) {
			r.With(authMiddleware.OptionalBearer).Get("/", blogHandler.GetAll)
			r.With(authMiddleware.OptionalBearer).Get("/{id}", blogHandler.GetByID)
			r.With(authMiddleware.OptionalBearer).Get("/{id}/posts", blogHandler.GetPosts)

			r.Group(func(r chi.Router) {
				r.Use(basicAuth.RequireBasic)
				r.Post("/", blogHandler.Create)
				r.Put("/{id}", blogHandler.Update)
				r.Delete("/{id}", blogHandler.Delete)
				r.Post("/{id}/posts", blogHandler.CreatePost)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.With(authMiddleware.OptionalBearer).Get("/", postHandler.GetAll)
			r.With(authMiddleware.OptionalBearer).Get("/{id}", postHandler.GetByID)
			r.With(authMiddleware.OptionalBearer).Get("/{id}/comments", postHandler.GetComments)

			r.Group(func(r chi.Router) {
				r.Use(basicAuth.RequireBasic)
				r.Post("/", postHandler.Create)
				r.Put("/{id}", postHandler.Update)
				r.Delete("/{id}", postHandler.Delete)
			})

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireBearer)
				r.Post("/{id}/comments", postHandler.CreateComment)
				r.Put("/{id}/like-status", postHandler.LikeStatus)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.With(authMiddleware.OptionalBearer).Get("/{id}", commentHandler.GetByID)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireBearer)
				r.Put("/{id}", commentHandler.Update)
				r.Delete("/{id}", commentHandler.Delete)
				r.Put("/{id}/like-status", commentHandler.LikeStatus)
			})
		})

		r.Delete("/testing/all-data", testingHandler.DeleteAllData)
	})

	return &Server{
		router: r,
		config: cfg,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func maxBodySizeMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func slogRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"remote", r.RemoteAddr,
		)
	})
}

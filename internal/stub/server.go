package stub

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bitbybit-prep/bitbybit-cli/internal/config"
)

// Server is an in-memory stand-in for the remote platform backend. It
// speaks the same wire contract (flat JSON bodies, JWT bearer auth,
// {"error": ...} failures) so the client and its tests run with zero
// infrastructure. It is a development tool, not a product backend.
type Server struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  *store
	engine *gin.Engine
}

// NewServer builds the stub with seeded fixture data.
func NewServer(cfg *config.Config, log zerolog.Logger) *Server {
	gin.SetMode(cfg.GinMode)

	s := &Server{
		cfg:   cfg,
		log:   log.With().Str("component", "stub_server").Logger(),
		store: newStore(cfg.BcryptCost),
	}
	s.engine = s.buildRouter()
	return s
}

// Handler exposes the router for http.Server and httptest.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestID())

	corsCfg := cors.DefaultConfig()
	if len(s.cfg.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.cfg.AllowedOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-ID")
	r.Use(cors.New(corsCfg))

	api := r.Group("/api")
	{
		// Auth (Djoser-shaped endpoints).
		api.POST("/auth/jwt/create/", s.login)
		api.POST("/auth/users/", s.register)
		api.POST("/auth/users/reset_password/", s.resetPassword)
		api.POST("/auth/users/reset_password_confirm/", s.resetPasswordConfirm)

		me := api.Group("/auth/users/me", s.requireAuth())
		{
			me.GET("/", s.me)
			me.PATCH("/", s.updateMe)
		}

		// Public catalog.
		api.GET("/courses/", s.listCourses)
		api.GET("/courses/:course_id/", s.getCourse)
		api.GET("/banners/", s.listBanners)

		// Authenticated content + exam taking.
		authed := api.Group("/", s.requireAuth())
		{
			authed.GET("topics/:topic_id/", s.getTopic)
			authed.GET("chapters/:chapter_id/", s.getChapter)
			authed.GET("history/", s.listHistory)

			authed.GET("exams/:exam_id/", s.getExam)
			authed.POST("exams/:exam_id/start_attempt/", s.startAttempt)
			authed.POST("exams/:exam_id/check_answer/", s.checkAnswer)
			authed.POST("exams/:exam_id/submit_exam/", s.submitExam)
		}

		// Admin tooling.
		admin := api.Group("/", s.requireAuth(), s.requireStaff())
		{
			admin.PATCH("chapters/:chapter_id/", s.updateChapter)
			admin.POST("ai-generator/generate/", s.generate)
			admin.POST("ai-generator/save_bulk/", s.saveBulk)
			admin.POST("ai-generator/upload_questions_csv/", s.uploadQuestionsCSV)
			admin.POST("bulk-notes/upload_csv/", s.uploadNotesCSV)
		}
	}

	return r
}

// requestID tags every request, mirroring the platform's tracing header.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set("request_id", reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}

const contextKeyUser = "user_id"

type stubClaims struct {
	jwt.RegisteredClaims
	UserID  int64 `json:"user_id"`
	IsStaff bool  `json:"is_staff"`
}

func (s *Server) issueToken(userID int64, staff bool) (string, error) {
	now := time.Now()
	claims := stubClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID:  userID,
		IsStaff: staff,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// requireAuth validates the "JWT <token>" Authorization header.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "jwt") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}

		claims := &stubClaims{}
		_, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(s.cfg.JWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Given token not valid for any token type"})
			return
		}

		c.Set(contextKeyUser, claims.UserID)
		c.Next()
	}
}

// requireStaff gates the admin tooling.
func (s *Server) requireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := s.store.user(currentUser(c))
		if user == nil || !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) int64 {
	v, _ := c.Get(contextKeyUser)
	id, _ := v.(int64)
	return id
}

// fail responds in the backend's flat error shape.
func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medimanage/api/internal/config"
	"github.com/medimanage/api/internal/service"
	"github.com/medimanage/api/pkg/auth"
	"github.com/medimanage/api/pkg/metrics"
)

type RouterDeps struct {
	Config          *config.Config
	Logger          *zap.Logger
	JWTManager      *auth.JWTManager
	Collector       *metrics.Collector
	AuthSvc         *service.AuthService
	ProfileSvc      *service.ProfileService
	MedicineSvc     *service.MedicineService
	CalculationSvc  *service.CalculationService
	PrescriptionSvc *service.PrescriptionService
}

// NewRouter wires the full HTTP surface.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(deps.Logger))
	r.Use(Metrics(deps.Collector))
	r.Use(CORS(deps.Config.CORS))
	r.Use(RateLimit(deps.Config.RateLimit))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": deps.Config.App.Version,
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	authHandler := NewAuthHandler(deps.AuthSvc)
	profileHandler := NewProfileHandler(deps.ProfileSvc)
	medicineHandler := NewMedicineHandler(deps.MedicineSvc)
	calculationHandler := NewCalculationHandler(deps.CalculationSvc)
	prescriptionHandler := NewPrescriptionHandler(deps.PrescriptionSvc)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(AuthRateLimit(deps.Config.RateLimit))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protected := api.Group("")
	protected.Use(AuthRequired(deps.JWTManager))
	{
		protected.GET("/me", profileHandler.Me)
		protected.PUT("/me/phone", profileHandler.UpdatePhone)
		protected.PUT("/me/password", authHandler.ChangePassword)
		protected.DELETE("/me", authHandler.DeleteAccount)

		protected.GET("/me/allergies", profileHandler.ListAllergies)
		protected.POST("/me/allergies", profileHandler.AddAllergy)
		protected.DELETE("/me/allergies", profileHandler.RemoveAllergy)
		protected.PUT("/me/allergies", profileHandler.ReplaceAllergies)

		protected.POST("/me/favorites", profileHandler.ToggleFavorite)

		protected.GET("/medicines", medicineHandler.Search)
		protected.GET("/medicines/:id", medicineHandler.Get)
		protected.POST("/medicines", medicineHandler.Create)
		protected.GET("/medicines/:id/allergy-check", medicineHandler.CheckAllergies)

		protected.PUT("/calculations", calculationHandler.Calculate)
		protected.GET("/calculations", calculationHandler.Fetch)
		protected.PATCH("/calculations/items", calculationHandler.AdjustLineItem)

		protected.POST("/prescriptions", prescriptionHandler.Create)
		protected.GET("/prescriptions", prescriptionHandler.List)
		protected.GET("/prescriptions/day/:date", prescriptionHandler.DayView)
	}

	return r
}

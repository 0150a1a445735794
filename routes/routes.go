package routes

import (
	"net/http"

	"freshfetch/controllers"
	"freshfetch/handler"
	"freshfetch/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Controllers struct {
	Auth      *controllers.AuthController
	User      *controllers.UserController
	Product   *controllers.ProductController
	Cart      *controllers.CartController
	Order     *controllers.OrderController
	Payment   *controllers.PaymentController
	Upload    *controllers.UploadController
	Dashboard *controllers.DashboardController
}

type Options struct {
	SessionCookie  string
	ReadOnlyEmails []string
	AuthLimiter    *middleware.IPRateLimiter
}

func SetupRoutes(router *gin.Engine, ctrl Controllers, opts Options) {
	router.GET("/", gin.WrapF(handler.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authn := middleware.AuthMiddleware(opts.SessionCookie)
	readOnly := middleware.ReadOnlyMiddleware(opts.ReadOnlyEmails)
	limited := middleware.RateLimitMiddleware(opts.AuthLimiter)

	router.POST("/auth/register", limited, ctrl.Auth.Register)
	router.POST("/auth/login", limited, ctrl.Auth.Login)
	router.POST("/auth/logout", ctrl.Auth.Logout)

	router.GET("/products", ctrl.Product.GetAllProducts)
	router.GET("/products/categories", ctrl.Product.GetAllCategories)
	router.GET("/products/:id", ctrl.Product.GetProductByID)
	router.GET("/products/:id/related", ctrl.Product.GetRelatedProducts)

	router.POST("/cart/quote", ctrl.Cart.Quote)
	router.POST("/cart/items", ctrl.Cart.AddItem)
	router.PATCH("/cart/items/:cartId", ctrl.Cart.UpdateItem)
	router.DELETE("/cart/items/:cartId", ctrl.Cart.RemoveItem)

	auth := router.Group("/")
	auth.Use(authn, readOnly)
	{
		auth.GET("/auth/me", ctrl.Auth.Me)
		auth.POST("/auth/update-profile", ctrl.Auth.UpdateProfile)

		auth.GET("/users", ctrl.User.GetAllUsers)

		auth.POST("/orders", ctrl.Order.CreateOrder)
		auth.GET("/orders", ctrl.Order.GetAllOrders)
		auth.GET("/orders/:id", ctrl.Order.GetOrderByID)
		auth.POST("/orders/:id/cancel", ctrl.Order.CancelOrder)

		auth.POST("/payments/create-payment-intent", ctrl.Payment.CreatePaymentIntent)
		auth.POST("/uploads/image", ctrl.Upload.UploadImage)
		auth.GET("/dashboard/stats", ctrl.Dashboard.GetStats)
	}

	staff := router.Group("/")
	staff.Use(authn, readOnly, middleware.StaffMiddleware())
	{
		staff.GET("/users/:id", ctrl.User.GetUserByID)

		staff.POST("/products", ctrl.Product.CreateProduct)
		staff.PATCH("/products/:id", ctrl.Product.UpdateProduct)
		staff.DELETE("/products/:id", ctrl.Product.DeleteProduct)

		staff.PATCH("/orders/:id", ctrl.Order.UpdateOrder)

		staff.DELETE("/uploads/image", ctrl.Upload.DeleteImage)
	}

	admin := router.Group("/")
	admin.Use(authn, readOnly, middleware.AdminMiddleware())
	{
		admin.POST("/users", ctrl.User.CreateUser)
		admin.PATCH("/users/:id", ctrl.User.UpdateUser)
		admin.DELETE("/users/:id", ctrl.User.DeleteUser)

		admin.DELETE("/orders/:id", ctrl.Order.DeleteOrder)
	}
}

package routes

import (
	"campus-food-api/handlers"
	"campus-food-api/middleware"
	"campus-food-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler) {
	api := r.Group("/api")

	// ── Public routes ──────────────────────────────────────────────
	public := api.Group("", h.Auth.Optional())
	{
		public.POST("/users/register", h.Register)
		public.POST("/users/login", h.Login)

		public.GET("/restaurants", h.ListRestaurants)
		public.GET("/restaurants/:id", h.GetRestaurant)
		public.GET("/restaurants/:id/menus", h.GetMenu)
		public.GET("/restaurants/:id/reviews", h.ListReviews)
		public.GET("/reviews/:id", h.GetReview)

		public.GET("/tags", h.ListTags)
		public.GET("/tags/default", h.ListDefaultTags)
		public.GET("/tags/:id", h.GetTag)

		public.GET("/rankings/restaurants", h.PopularRestaurants)
		public.GET("/rankings/restaurants/with-top-menu", h.RestaurantsWithTopMenuItem)
		public.GET("/rankings/menu-items", h.PopularMenuItems)

		public.GET("/state-machine", h.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := api.Group("", h.Auth.Required())
	{
		auth.GET("/users/me", h.Me)

		auth.POST("/restaurants", h.CreateRestaurant)
		auth.PATCH("/restaurants/:id", h.UpdateRestaurant)
		auth.POST("/restaurants/:id/menus", h.AddMenuItem)
		auth.POST("/restaurants/:id/reviews", h.CreateReview)
		auth.GET("/restaurants/:id/reviews/mine", h.GetMyReview)

		auth.PATCH("/reviews/:id", h.UpdateReview)
		auth.PATCH("/reviews/:id/soft-delete", h.SoftDeleteReview)
		auth.PATCH("/reviews/:id/restore", h.RestoreReview)

		auth.POST("/orders", h.PlaceOrder)
		auth.GET("/orders/my", h.GetMyOrders)
		auth.GET("/orders/:id", h.GetOrder)
		auth.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := api.Group("", h.Auth.Required(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.PATCH("/restaurants/:id/soft-delete", h.SoftDeleteRestaurant)
		admin.PATCH("/restaurants/:id/restore", h.RestoreRestaurant)
		admin.DELETE("/restaurants/:id", h.DeleteRestaurant)
		admin.GET("/restaurants/:id/reviews/stats", h.GetReviewStats)

		admin.GET("/reviews", h.GetAllReviews)
		admin.DELETE("/reviews/:id", h.DeleteReview)

		admin.GET("/orders", h.GetAllOrders)

		admin.POST("/tags", h.CreateTag)
		admin.PATCH("/tags/:id", h.UpdateTag)
		admin.DELETE("/tags/:id", h.DeleteTag)

		admin.GET("/admin/users", h.ListUsers)
		admin.PATCH("/admin/users/:id/block", h.BlockUser)
		admin.PATCH("/admin/users/:id/unblock", h.UnblockUser)
	}
}

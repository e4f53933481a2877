// routes/routes.go
package routes

import (
	"jewelstore/controllers"
	"jewelstore/middleware"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, adminController *controllers.AdminController, orderController *controllers.OrderController) {
	// Public routes
	router.HandleFunc("/admin/login", adminController.Login).Methods("POST")

	// Shopper routes: no authentication; shoppers keep their order ids locally
	router.HandleFunc("/orders", orderController.CreateOrder).Methods("POST")
	router.HandleFunc("/orders/{id}", orderController.GetOrderByID).Methods("GET")
	router.HandleFunc("/orders/{id}/cancel-request", orderController.RequestCancellation).Methods("PATCH")

	// Admin routes
	admin := router.PathPrefix("/").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/orders", orderController.GetOrders).Methods("GET")
	admin.HandleFunc("/orders/{id}/complete", orderController.MarkCompleted).Methods("PATCH")
	admin.HandleFunc("/orders/{id}/cancel", orderController.ApproveCancellation).Methods("PATCH")
	admin.HandleFunc("/orders/{id}/revert-to-pending", orderController.RejectCancellation).Methods("PATCH")
	admin.HandleFunc("/orders/{id}", orderController.DeleteOrder).Methods("DELETE")
}

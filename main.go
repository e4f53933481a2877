// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"jewelstore/checkout"
	"jewelstore/controllers"
	"jewelstore/repository"
	"jewelstore/routes"
	"jewelstore/utils"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))

	// Initialize EmailService (nil when SENDGRID_API_KEY is unset)
	emailService := utils.NewEmailService()

	// Connect to MongoDB
	client := utils.ConnectDB()
	defer func() {
		if err = client.Disconnect(context.TODO()); err != nil {
			log.Fatal(err)
		}
	}()

	orderRepo, err := repository.NewMongoOrders(client)
	if err != nil {
		log.Fatal(err)
	}

	shippingFee := checkout.DefaultShippingFee
	if raw := os.Getenv("SHIPPING_FEE"); raw != "" {
		fee, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Fatalf("Invalid SHIPPING_FEE: %v", err)
		}
		shippingFee = fee
	}

	// Initialize controllers
	adminController := controllers.NewAdminController(client)
	orderController := controllers.NewOrderController(orderRepo, emailService, utils.NewPaymentProcessor(), shippingFee)

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, adminController, orderController)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	fmt.Printf("Server is running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}

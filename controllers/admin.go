package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"jewelstore/models"
	"jewelstore/utils"
)

// AdminController handles dashboard operator login.
type AdminController struct {
	Collection *mongo.Collection
}

// NewAdminController creates a new AdminController
func NewAdminController(client *mongo.Client) *AdminController {
	collection := client.Database("jewelstore").Collection("admins")
	return &AdminController{Collection: collection}
}

// Login authenticates an admin and issues a JWT for the dashboard.
func (ac *AdminController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&creds)
	if err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	// Find the admin in the database
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var admin models.Admin
	err = ac.Collection.FindOne(ctx, bson.M{"username": creds.Username}).Decode(&admin)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	// Compare the hashed password
	err = bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(creds.Password))
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := utils.GenerateJWT(admin.Username, "admin")
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/mo-amir99/coursemarket-server-go/internal/bootstrap"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/config"
	"github.com/mo-amir99/coursemarket-server-go/pkg/database"
	"github.com/mo-amir99/coursemarket-server-go/pkg/logger"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Connect to database
	db, err := database.Connect(context.Background(), cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close(db, appLogger)

	appLogger.Info("Database connection established")

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Full Name: ")
	fullName, _ := reader.ReadString('\n')
	fullName = strings.TrimSpace(fullName)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password (min 8 chars): ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimSpace(password)

	if fullName == "" || email == "" || password == "" {
		fmt.Println("❌ Error: Full name, email, and password are required")
		os.Exit(1)
	}

	// An existing account is promoted instead of duplicated.
	if _, err := user.GetByEmail(db, email); err == nil {
		admin, err := bootstrap.EnsureDefaultAdmin(db, config.AdminSeedConfig{
			Email:    email,
			Password: password,
			FullName: fullName,
		}, appLogger)
		if err != nil {
			appLogger.Error("Failed to promote user", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Println("\n✅ Existing user promoted to admin")
		fmt.Printf("   ID: %s\n", admin.ID)
		fmt.Printf("   Email: %s\n", admin.Email)
		return
	}

	admin, err := user.Create(db, user.CreateInput{
		FullName: fullName,
		Email:    email,
		Password: password,
		Role:     types.RoleAdmin,
		Status:   types.UserStatusActive,
	})
	if err != nil {
		fmt.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n✅ Admin created successfully!")
	fmt.Printf("   ID: %s\n", admin.ID)
	fmt.Printf("   Email: %s\n", admin.Email)
	fmt.Printf("   Role: %s\n", admin.Role)
}

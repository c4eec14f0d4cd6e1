package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/course"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/discount"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/config"
	"github.com/mo-amir99/coursemarket-server-go/pkg/database"
	"github.com/mo-amir99/coursemarket-server-go/pkg/logger"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

const seedPassword = "password123"

var sampleCourses = []struct {
	title, description, category string
	price                        int64
	lessons                      []string
}{
	{
		title:       "Go for Backend Developers",
		description: "Build production HTTP services in Go, from routing to persistence and deployment.",
		category:    "Programming",
		price:       49,
		lessons:     []string{"Tooling and modules", "HTTP handlers", "Working with databases"},
	},
	{
		title:       "Practical SQL",
		description: "Query, model and tune relational data with hands-on PostgreSQL exercises.",
		category:    "Data",
		price:       29,
		lessons:     []string{"Selecting rows", "Joins", "Indexes and plans"},
	},
}

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

	if err := seed(db, appLogger); err != nil {
		appLogger.Error("Seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println("\n✅ Sample data created")
	fmt.Printf("   Provider: provider@example.com / %s\n", seedPassword)
	fmt.Printf("   Customer: customer@example.com / %s\n", seedPassword)
}

func seed(db *gorm.DB, logger *slog.Logger) error {
	if _, err := user.GetByEmail(db, "provider@example.com"); err == nil {
		logger.Info("seed data already present, nothing to do")
		return nil
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return err
	}

	provider, err := user.Create(db, user.CreateInput{
		FullName: "Sample Provider",
		Email:    "provider@example.com",
		Password: seedPassword,
		Role:     types.RoleProvider,
	})
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}
	if _, err := user.Create(db, user.CreateInput{
		FullName: "Sample Customer",
		Email:    "customer@example.com",
		Password: seedPassword,
	}); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	var first course.Course
	for i, sample := range sampleCourses {
		c, err := course.Create(db, course.CreateInput{
			Title:        sample.title,
			Description:  sample.description,
			Price:        types.NewMoneyFromInt(sample.price),
			ThumbnailURL: fmt.Sprintf("https://picsum.photos/seed/course%d/640/360", i+1),
			Category:     sample.category,
			ProviderID:   provider.ID,
		})
		if err != nil {
			return fmt.Errorf("create course %q: %w", sample.title, err)
		}
		if c, err = course.SetStatus(db, c.ID, types.CourseStatusApproved); err != nil {
			return fmt.Errorf("approve course %q: %w", sample.title, err)
		}
		if i == 0 {
			first = c
		}

		for j, title := range sample.lessons {
			if _, err := lesson.Create(db, lesson.CreateInput{
				CourseID: c.ID,
				Title:    title,
				VideoURL: fmt.Sprintf("https://videos.example.com/%s/%d.mp4", c.ID, j+1),
				Duration: 10 + 5*j,
				IsFree:   j == 0,
			}); err != nil {
				return fmt.Errorf("create lesson %q: %w", title, err)
			}
		}
		logger.Info("seeded course", slog.String("title", c.Title), slog.Int("lessons", len(sample.lessons)))
	}

	maxUses := 100
	now := time.Now()
	if _, err := discount.CreateForProvider(db, provider, discount.CreateInput{
		Code:     "WELCOME20",
		CourseID: first.ID,
		Terms: discount.Terms{
			Type:        types.DiscountTypePercentage,
			Value:       types.NewMoneyFromInt(20),
			MaxUses:     &maxUses,
			StartDate:   now,
			EndDate:     now.AddDate(0, 3, 0),
			Description: "Launch offer",
		},
	}); err != nil {
		return fmt.Errorf("create discount: %w", err)
	}
	return nil
}

package db

import (
	"context"
	"log/slog"

	"subhive/internal/models"
	"subhive/internal/store"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const systemUser = "subhive"

var DB *gorm.DB

// Init opens the Postgres connection and migrates the schema.
func Init(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, errors.Wrap(err, "connect database")
	}
	slog.Info("Database connection established")

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	slog.Info("Database migration completed")

	DB = conn
	return conn, nil
}

func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Subreddit{},
		&models.Membership{},
		&models.Post{},
		&models.Comment{},
		&models.KarmaLog{},
		&models.SavedPost{},
		&models.Notification{},
	)
	return errors.Wrap(err, "migrate database")
}

// Seed 仅在空库时创建预设社区，创建者为系统账号
func Seed(ctx context.Context, st store.Store) error {
	subs, err := st.Subreddits().List(ctx)
	if err != nil {
		return errors.Wrap(err, "list subreddits")
	}
	if len(subs) > 0 {
		slog.Debug("Subreddits already seeded, skipping")
		return nil
	}

	system, err := st.Users().GetByName(ctx, systemUser)
	if errors.Is(err, store.ErrNotFound) {
		system = &models.User{Name: systemUser, Email: "system@subhive.local", Password: "!", Bio: models.DefaultBio}
		err = st.Users().Create(ctx, system)
	}
	if err != nil {
		return errors.Wrap(err, "create system user")
	}

	defaults := []models.Subreddit{
		{Name: "announcements", Description: "Site news and updates"},
		{Name: "programming", Description: "Code, tools and the craft of software"},
		{Name: "askhive", Description: "Questions for the community"},
	}
	for _, sub := range defaults {
		sub.CreatorID = system.ID
		if err := st.Subreddits().Create(ctx, &sub); err != nil {
			slog.Warn("Failed to create subreddit", "name", sub.Name, "error", err)
		}
	}
	slog.Info("Initial subreddits created")
	return nil
}

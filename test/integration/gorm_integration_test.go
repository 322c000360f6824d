package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"procuredoc-be/internal/coordinator"
	"procuredoc-be/internal/model"
	"procuredoc-be/internal/repository/unitofwork"
	"procuredoc-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	require.NoError(t, gormDB.AutoMigrate(&model.Document{}, &model.Section{}, &model.GenerationJob{}))

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.DocumentRepository())
	assert.NotNil(t, uow.SectionRepository())
	assert.NotNil(t, uow.GenerationJobRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	t.Run("Check Document Repository", func(t *testing.T) {
		count, err := uow.DocumentRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Document count: %d", count)
	})

	t.Run("Check Generation Job Repository", func(t *testing.T) {
		count, err := uow.GenerationJobRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("GenerationJob count: %d", count)
	})

	t.Run("Coordinator NextOrder on empty document", func(t *testing.T) {
		coord := coordinator.NewGormCoordinator(gormDB)
		next, err := coord.NextOrder(context.Background(), uuid.New())
		assert.NoError(t, err)
		assert.Equal(t, 1, next)
	})
}

package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/BrewBoxLabs/BrewBox/app/repository"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/cache"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/database"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/env"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/jobqueue"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/router"
)

func main() {
	app := NewApplication()

	// Stop queue workers on SIGINT/SIGTERM before the listener goes away.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		jobqueue.GetManager().Stop()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())

	// background workers for notifications and label archival
	jobqueue.GetManager().Start()

	app := fiber.New(fiber.Config{
		AppName: "BrewBox",
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	router.InstallRouter(app)

	return app
}

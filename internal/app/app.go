package app

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/phoneotp/internal/pkg/clock"
	"github.com/shandysiswandi/phoneotp/internal/pkg/config"
	"github.com/shandysiswandi/phoneotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/phoneotp/internal/pkg/instrument"
	"github.com/shandysiswandi/phoneotp/internal/pkg/messaging"
	"github.com/shandysiswandi/phoneotp/internal/pkg/router"
	"github.com/shandysiswandi/phoneotp/internal/pkg/uid"
	"github.com/shandysiswandi/phoneotp/internal/pkg/validator"
	"github.com/shandysiswandi/phoneotp/internal/verification"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID

	// resources
	cacheConn *redis.Client
	messaging messaging.Publisher

	// modules
	verification *verification.Module

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initCache()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}

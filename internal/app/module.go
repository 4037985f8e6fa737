package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/phoneotp/internal/verification"
)

func (a *App) initModules() {
	mod, err := verification.New(verification.Dependency{
		CacheConn:  a.cacheConn,
		Goroutine:  a.goroutine,
		Router:     a.router,
		Messaging:  a.messaging,
		Config:     a.config,
		Instrument: a.ins,
		UUID:       a.uuid,
		Clock:      a.clock,
		Validator:  a.validator,
	})
	if err != nil {
		slog.Error("failed to init module verification", "error", err)
		os.Exit(1)
	}

	a.verification = mod
}

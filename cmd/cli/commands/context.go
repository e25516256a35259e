package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/lab-matching/internal/config"
	"github.com/jakechorley/lab-matching/pkg/problemio"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg    *config.Config
	Store  problemio.FileStore
	Logger *zap.Logger
	Ctx    context.Context
}

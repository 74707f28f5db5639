// Package history keeps a local ledger of install and upgrade outcomes.
package history

import (
	"context"
	"time"
)

// Operation names the installer action an event belongs to.
type Operation string

const (
	OpInstall      Operation = "install"
	OpUpgrade      Operation = "upgrade"
	OpUninstall    Operation = "uninstall"
	OpForceRefresh Operation = "force-refresh"
	OpUpdateGitURL Operation = "update-git-url"
)

// Status is the outcome of an operation.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusUpToDate Status = "up-to-date"
)

// Service defines the ledger operations.
type Service interface {
	Record(ctx context.Context, e Event) (int64, error)
	Recent(ctx context.Context, app string, limit int) ([]Event, error)
	Close() error
}

// Event is one row of the ledger.
type Event struct {
	ID          int64
	App         string
	Operation   Operation
	Channel     string
	FromVersion string
	ToVersion   string
	Strategy    string
	Status      Status
	Message     string
	CreatedAt   time.Time
}

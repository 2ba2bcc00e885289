package modules

import (
	"context"

	"github.com/riverqueue/river"

	"fertigation.io/farmwatch/internal/api/handlers"
	"fertigation.io/farmwatch/internal/usecase"
)

// AccountsModule wires signup and login.
type AccountsModule struct {
	accounts *usecase.AccountUseCase
}

func NewAccountsModule(infra *Infrastructure) *AccountsModule {
	uc := usecase.NewAccountUseCase(infra.Store.Profiles, infra.Config.Security.BcryptCost).
		WithAuditLogger(infra.AuditLogger)
	return &AccountsModule{accounts: uc}
}

func (m *AccountsModule) Name() string { return "accounts" }

func (m *AccountsModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Accounts = m.accounts
}

func (m *AccountsModule) RegisterWorkers(_ *river.Workers) {}

func (m *AccountsModule) Shutdown(context.Context) error { return nil }

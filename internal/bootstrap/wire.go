//go:build wireinject

package bootstrap

import (
	"time"

	"github.com/google/wire"
	"github.com/kodflow/syswit/internal/domain/runconfig"
)

// InitializeCollector creates a fully wired App for one `collect`
// invocation. This is the injector that Wire would generate code for; the
// equivalent hand-assembled construction lives in wire_gen.go since this
// repository's build never runs `wire gen`.
//
// Params:
//   - cfg: the resolved run configuration decoded from CLI flags.
//   - startedAt: the instant this run began, used to name its directory.
//
// Returns:
//   - *App: the fully wired application.
//   - error: any error during dependency construction.
func InitializeCollector(cfg runconfig.Config, startedAt time.Time) (*App, error) {
	wire.Build(
		NewRunDir,
		ProvideLogger,
		ProvideRunIndexPath,
		ProvideRunIndex,
		NewApp,
	)
	return nil, nil
}

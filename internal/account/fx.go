package account

import (
	"github.com/voltmesh/gridadmin/internal/account/repository"
	"github.com/voltmesh/gridadmin/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

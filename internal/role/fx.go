package role

import (
	"github.com/voltmesh/gridadmin/internal/role/repository"
	"github.com/voltmesh/gridadmin/internal/role/service"
	"go.uber.org/fx"
)

var Module = fx.Module("role.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

package alert

import (
	"github.com/voltmesh/gridadmin/internal/alert/repository"
	"github.com/voltmesh/gridadmin/internal/alert/service"
	"go.uber.org/fx"
)

var Module = fx.Module("alert.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

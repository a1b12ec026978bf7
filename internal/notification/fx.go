package notification

import (
	"github.com/voltmesh/gridadmin/internal/notification/repository"
	"github.com/voltmesh/gridadmin/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.dispatcher",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

package providers

import (
	"github.com/voltmesh/gridadmin/internal/providers/email"
	"github.com/voltmesh/gridadmin/internal/providers/sms"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	sms.Module,
)

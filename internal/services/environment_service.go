package services

import (
	"time"

	"github.com/geoform/intake-service/internal/dtos"
	"github.com/geoform/intake-service/internal/utils"
)

// EnvironmentInfo is the client-safe runtime metadata. deployTime is the
// time of the call; nothing secret is ever included.
func EnvironmentInfo(env string, now time.Time) dtos.EnvironmentResponse {
	if env == "" {
		env = utils.EnvDevelopment
	}
	return dtos.EnvironmentResponse{
		Environment: env,
		DeployTime:  now.UTC().Format(utils.ISOMillisLayout),
	}
}

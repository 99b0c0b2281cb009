package pyroscope

import (
	"os"
	"runtime"

	"github.com/grafana/pyroscope-go"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Coastline/version"
)

// Run starts continuous profiling. The returned func stops it.
func Run(config Config, logger *logrus.Logger) (func() error, error) {
	runtime.SetMutexProfileFraction(config.MutexProfileFraction)
	runtime.SetBlockProfileRate(config.BlockProfileRate)

	pyroscopeConfig := pyroscope.Config{
		ApplicationName: config.ApplicationName,
		ServerAddress:   config.ServerAddress,
		Logger:          logger.WithField("component", "pyroscope"),
		Tags: map[string]string{
			"hostname": os.Getenv("HOSTNAME"),
			"version":  version.APP_VERSION,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,

			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexCount,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockCount,
			pyroscope.ProfileBlockDuration,
		},
	}

	if config.ApiKey != "" {
		pyroscopeConfig.AuthToken = config.ApiKey
	}

	profiler, err := pyroscope.Start(pyroscopeConfig)
	if err != nil {
		return nil, err
	}
	return profiler.Stop, nil
}

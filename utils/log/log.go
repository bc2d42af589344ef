package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

const ProdEnv = "production"

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// Tests and packages used outside main still get a usable logger.
func init() {
	InitLogger("benjibook-api", os.Getenv("APP_ENV"))
}

func InitLogger(service, env string) {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)

	if env == ProdEnv {
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logger.SetLevel(logrus.DebugLevel)
	}

	Log = logger.WithFields(logrus.Fields{
		"service":        service,
		"is_development": env != ProdEnv,
	})
}

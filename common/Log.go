package common

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the service-wide logger. It is the logrus standard logger, so both
// common.Log and package-level logrus calls emit JSON lines stamped with the
// service identity.
var Log = logrus.StandardLogger()

func init() {
	Log.Out = os.Stdout
	Log.Formatter = &logrus.JSONFormatter{}
	Log.AddHook(&DefaultFieldsHook{})
}

type DefaultFieldsHook struct {
}

func (hook *DefaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *DefaultFieldsHook) Fire(e *logrus.Entry) error {
	e.Data["serviceName"] = GetServiceName()
	e.Data["serviceInstance"] = GetServiceInstance()
	return nil
}

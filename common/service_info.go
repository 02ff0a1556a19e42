package common

import "os"

const serviceName = "orderhub"

var serviceInstance string

func GetServiceName() string {
	return serviceName
}

func GetServiceInstance() string {
	if serviceInstance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		serviceInstance = hostname
	}
	return serviceInstance
}

package config

import (
	"os"
)

const (
	configFileEnvVar = "TRAVELS_CONFIG"
	appNameVar       = "APP_NAME"
	envVar           = "ENV"
	logLevelVar      = "TRAVELS_LOG_LEVEL"
)

type EnvVars struct {
	file *FileConfig
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return lookup(appNameVar, e.fileValue(func(fc *FileConfig) string { return fc.AppName }), "Travels")
}

func (e EnvVars) GetEnv() string {
	return lookup(envVar, e.fileValue(func(fc *FileConfig) string { return fc.Env }), "DEV")
}

func (e EnvVars) GetLogLevel() string {
	return lookup(logLevelVar, e.fileValue(func(fc *FileConfig) string { return fc.LogLevel }), "info")
}

func (e EnvVars) fileValue(get func(*FileConfig) string) string {
	if e.file == nil {
		return ""
	}
	return get(e.file)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// lookup resolves a setting as environment, then file, then default.
func lookup(envVar, fileValue, defaultValue string) string {
	if fileValue != "" {
		defaultValue = fileValue
	}
	return GetEnv(envVar, defaultValue)
}

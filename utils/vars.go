package utils

import (
	"os"
	"strconv"
	"strings"
)

// Version is set at build time (see Makefile: -ldflags "-X logviewer/utils.Version=...").
var Version = "dev"

// EnvPrefix namespaces every environment variable the viewer reads.
const EnvPrefix = "LOGVIEWER_"

// GetEnvString returns the trimmed value of key, or defaultValue when unset.
// Case is preserved, so it is safe for paths.
func GetEnvString(key string, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))

	if value == "" {
		return defaultValue
	}

	return value
}

// GetSanitizedEnvString is GetEnvString for keyword values: the result is
// lowercased.
func GetSanitizedEnvString(key string, defaultValue string) string {
	value := os.Getenv(key)

	if value == "" {
		return defaultValue
	}

	value = strings.TrimSpace(value)
	value = strings.ToLower(value)

	return value
}

func GetSanitizedEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)

	if value == "" {
		return defaultValue
	}

	value = strings.TrimSpace(value)

	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func GetSanitizedEnvInt(key string, defaultValue int) int {
	return int(GetSanitizedEnvInt64(key, int64(defaultValue)))
}

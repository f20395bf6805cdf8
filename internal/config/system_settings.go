package config

import (
	"os"
	"strconv"
)

const MONGO_URI = "JIRANI_MONGO_URI"
const MONGO_DATABASE = "JIRANI_MONGO_DATABASE"
const SERVER_WEB_PORT = "JIRANI_SERVER_WEB_PORT"
const NATS_URL = "JIRANI_NATS_URL" //optional, events are skipped when empty
const ENGINE_SWEEP_INTERVAL = "JIRANI_ENGINE_SWEEP_INTERVAL"
const ENGINE_SWEEP_BATCH_SIZE = "JIRANI_ENGINE_SWEEP_BATCH_SIZE" //number of expired actions to pull per sweep
const ENGINE_EXPIRY_DAYS = "JIRANI_ENGINE_EXPIRY_DAYS"           //default lifetime of a pending proxy action
const ENGINE_MAX_DEPENDENCY_DEPTH = "JIRANI_ENGINE_MAX_DEPENDENCY_DEPTH"
const WEB_SESSION_EXPIRY_HOURS = "JIRANI_WEB_SESSION_EXPIRY_HOURS"

func GetSystemSettingInteger(settingKey string) int {
	val := GetSystemSettingString(settingKey)
	if val != "" {
		intValue, _ := strconv.Atoi(val)
		return intValue
	}
	return 0
}

func GetSystemSettingString(settingKey string) string {
	val := os.Getenv(settingKey)
	if val != "" {
		return val
	}
	if settingKey == MONGO_DATABASE {
		return "jirani"
	}
	if settingKey == SERVER_WEB_PORT {
		return "8080"
	}
	if settingKey == ENGINE_SWEEP_INTERVAL {
		return "60s" // default to 60 seconds
	}
	if settingKey == ENGINE_SWEEP_BATCH_SIZE {
		return "100"
	}
	if settingKey == ENGINE_EXPIRY_DAYS {
		return "7" // default to 7 days
	}
	if settingKey == ENGINE_MAX_DEPENDENCY_DEPTH {
		return "64"
	}
	if settingKey == WEB_SESSION_EXPIRY_HOURS {
		return "1"
	}
	return ""
}

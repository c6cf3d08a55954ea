package backend

import (
	"fmt"

	"finledger/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,

		GoogleSpreadsheetID:    appConfig.GoogleSpreadsheetID,
		GoogleHistorySheetName: appConfig.GoogleHistorySheetName,
		GoogleCredentialsFile:  appConfig.GoogleCredentialsFile,
		GoogleCredentialsJSON:  appConfig.GoogleCredentialsJSON,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}
	if c.GoogleSpreadsheetID != "" && c.GoogleCredentialsFile == "" && c.GoogleCredentialsJSON == "" {
		return fmt.Errorf("either GoogleCredentialsFile or GoogleCredentialsJSON must be provided for sheets export")
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, MemoryBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}

package backend

import (
	"fmt"

	"expensetracker/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	mirror := MirrorNone
	if appConfig.SheetsEnabled() {
		mirror = MirrorSheets
	}

	cfg := Config{
		SQLiteDBPath: appConfig.SQLiteDBPath,
		BcryptCost:   appConfig.BcryptCost,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		Mirror: mirror,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,

		SMSGatewayURL: appConfig.SMSGatewayURL,
		SMSAccountSID: appConfig.SMSAccountSID,
		SMSAuthToken:  appConfig.SMSAuthToken,
		SMSFromNumber: appConfig.SMSFromNumber,
	}
	return cfg, cfg.Validate()
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required")
	}
	if !c.Mirror.IsValid() {
		return fmt.Errorf("invalid mirror type: %s", c.Mirror)
	}

	if c.Mirror == MirrorSheets {
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for the sheets mirror")
		}
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			return fmt.Errorf("either GoogleServiceAccountFile or GoogleServiceAccountJSON must be provided for the sheets mirror")
		}
	}

	if c.SMSGatewayURL != "" && c.SMSFromNumber == "" {
		return fmt.Errorf("SMS from number is required when a gateway is configured")
	}

	return nil
}

package cmd

import (
	"fmt"

	"dbbrowser/db"
	"dbbrowser/settings"
	"dbbrowser/utils"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

// environment is everything a command needs to reach the user's settings
type environment struct {
	config     *utils.Config
	configPath string
	logger     *utils.Logger
	fyneApp    fyne.App // nil for command line use of the sqlite backend
	database   *db.DB   // nil with the preferences backend
	settings   *settings.Service
}

// setup loads the configuration and opens the settings store. gui mirrors
// log output to stdout and always creates the fyne app; otherwise it is only
// created when the preferences backend needs it.
func setup(gui bool) (*environment, error) {
	config, path, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logPath := config.Log.Path
	if logPath == "" {
		logPath = utils.GetLogPath()
	}
	logger, err := utils.NewLogger(logPath, gui)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := logger.SetLevel(config.Log.Level); err != nil {
		logger.Warn("Ignoring log level: %v", err)
	}
	logger.Info("Using config file: %s", path)

	env := &environment{
		config:     config,
		configPath: path,
		logger:     logger,
	}
	if gui || config.Settings.Backend == utils.BackendPreferences {
		env.fyneApp = app.NewWithID(config.Settings.Organization)
	}

	store, err := env.openStore()
	if err != nil {
		logger.Error("Failed to open settings: %v", err)
		env.Close()
		return nil, err
	}
	env.settings = settings.NewService(store, logger)

	return env, nil
}

func loadConfig() (*utils.Config, string, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = utils.EnsureDefaultConfig()
		if err != nil {
			return nil, "", fmt.Errorf("failed to create default config: %w", err)
		}
	}

	config, err := utils.LoadConfig(path)
	if err != nil {
		return nil, "", err
	}
	return config, path, nil
}

func (e *environment) openStore() (settings.Store, error) {
	switch e.config.Settings.Backend {
	case utils.BackendPreferences:
		e.logger.Info("Settings stored in application preferences (%s)", e.config.Settings.Organization)
		return settings.NewPreferencesStore(e.fyneApp.Preferences()), nil
	default:
		path := e.config.SettingsPath()
		database, err := db.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open settings database: %w", err)
		}
		e.database = database

		count, err := database.CountSettings()
		if err != nil {
			return nil, err
		}
		e.logger.Info("Settings database: %s (%d stored values)", path, count)
		return settings.NewSQLiteStore(database), nil
	}
}

// Close releases the settings store and the log file
func (e *environment) Close() {
	if e.database != nil {
		if err := e.database.Close(); err != nil {
			e.logger.Warn("Failed to close settings database: %v", err)
		}
		e.database = nil
	}
	e.logger.Close()
}

package driven

import "github.com/jobforge/jobforge/internal/core/domain"

// SettingsStore provides access to application settings.
// Implementations handle persistence (e.g., TOML files) and
// environment overrides.
type SettingsStore interface {
	// Load reads the settings from storage. A missing backing file
	// yields the application defaults.
	Load() (domain.AppSettings, error)

	// Save persists the settings to storage.
	Save(settings domain.AppSettings) error

	// Path returns the settings file path.
	Path() string
}

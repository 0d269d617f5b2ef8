package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Collection CollectionConfig `mapstructure:"collection" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// CollectionConfig describes the deck collection and session limits.
type CollectionConfig struct {
	// Directory is the deck directory. Defaults to the working directory.
	Directory string `mapstructure:"directory" validate:"required"`
	// DatabaseFile is the SQLite file name, relative to Directory.
	DatabaseFile string `mapstructure:"database_file" validate:"required"`
	// DeckFilter keeps only cards from the named deck, if set.
	DeckFilter string `mapstructure:"deck_filter"`
	// CardLimit caps the session queue; negative means unlimited.
	CardLimit int `mapstructure:"card_limit"`
	// NewCardLimit caps never-reviewed cards in the queue; negative means
	// unlimited, zero admits none.
	NewCardLimit int `mapstructure:"new_card_limit"`
}

package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the teachings database (the backend row store)
	DefaultDatabasePath = "./nissaya.db"

	// DefaultLocalStoragePath is the default path for the device-local key/value storage
	DefaultLocalStoragePath = "./nissaya-local.db"
)

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Secret environment variable names.
const (
	EnvAIOUsername    = "AIO_USERNAME"
	EnvAIOKey         = "AIO_KEY"
	EnvAIOBroker      = "AIO_BROKER"
	EnvClickHouseAddr = "CLICKHOUSE_ADDR"
	EnvClickHouseDB   = "CLICKHOUSE_DB"
	EnvClickHouseUser = "CLICKHOUSE_USER"
	EnvClickHousePass = "CLICKHOUSE_PASS"
)

// Secrets holds credentials that never live in the settings file.
type Secrets struct {
	AIOUsername string
	AIOKey      string
	AIOBroker   string

	ClickHouseAddr string
	ClickHouseDB   string
	ClickHouseUser string
	ClickHousePass string
}

// LoadSecrets loads envPath into the environment (variables already set
// win) and reads the secrets. A missing env file is not an error.
func LoadSecrets(envPath string) (Secrets, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Secrets{}, fmt.Errorf("load %s: %w", envPath, err)
		}
	}
	return Secrets{
		AIOUsername:    os.Getenv(EnvAIOUsername),
		AIOKey:         os.Getenv(EnvAIOKey),
		AIOBroker:      getEnv(EnvAIOBroker, ""),
		ClickHouseAddr: os.Getenv(EnvClickHouseAddr),
		ClickHouseDB:   getEnv(EnvClickHouseDB, "corrosion"),
		ClickHouseUser: getEnv(EnvClickHouseUser, "default"),
		ClickHousePass: os.Getenv(EnvClickHousePass),
	}, nil
}

// ArchiveEnabled reports whether a ClickHouse address was configured.
func (s Secrets) ArchiveEnabled() bool {
	return s.ClickHouseAddr != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

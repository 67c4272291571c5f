package config

import (
	"github.com/JaimeStill/corretora/internal/auth"
	"github.com/JaimeStill/corretora/internal/cep"
	"github.com/JaimeStill/corretora/internal/realtime"
	"github.com/JaimeStill/corretora/pkg/database"
	"github.com/JaimeStill/corretora/pkg/logging"
	"github.com/JaimeStill/corretora/pkg/storage"
)

var databaseEnv = &database.Env{
	Host:            "DATABASE_HOST",
	Port:            "DATABASE_PORT",
	Name:            "DATABASE_NAME",
	User:            "DATABASE_USER",
	Password:        "DATABASE_PASSWORD",
	SSLMode:         "DATABASE_SSL_MODE",
	MaxOpenConns:    "DATABASE_MAX_OPEN_CONNS",
	MaxIdleConns:    "DATABASE_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DATABASE_CONN_MAX_LIFETIME",
	ConnTimeout:     "DATABASE_CONN_TIMEOUT",
	AutoMigrate:     "DATABASE_AUTO_MIGRATE",
}

var loggingEnv = &logging.Env{
	Level:  "LOGGING_LEVEL",
	Format: "LOGGING_FORMAT",
	Redact: "LOGGING_REDACT",
}

var storageEnv = &storage.Env{
	BasePath:      "STORAGE_BASE_PATH",
	MaxUploadSize: "STORAGE_MAX_UPLOAD_SIZE",
	MaxFiles:      "STORAGE_MAX_FILES",
	InlineTypes:   "STORAGE_INLINE_TYPES",
}

var authEnv = &auth.Env{
	Secret:     "AUTH_SECRET",
	Issuer:     "AUTH_ISSUER",
	TokenTTL:   "AUTH_TOKEN_TTL",
	InviteTTL:  "AUTH_INVITE_TTL",
	BcryptCost: "AUTH_BCRYPT_COST",
}

var cepEnv = &cep.Env{
	BaseURL: "CEP_BASE_URL",
	Timeout: "CEP_TIMEOUT",
}

var realtimeEnv = &realtime.Env{
	BufferSize:     "REALTIME_BUFFER_SIZE",
	ReconnectDelay: "REALTIME_RECONNECT_DELAY",
}

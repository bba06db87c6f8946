package config

import (
	"os"
	"time"
)

// StubConfig configures cmd/stub-api, the stand-in user service.
type StubConfig struct {
	Port          string
	JWTSecret     string
	TokenTTL      time.Duration
	IssueTokens   bool
	BcryptCost    int
	AdminUser     string
	AdminPassword string
}

// LoadStubConfig reads the stand-in service settings.  JWT_SECRET is
// required.
func LoadStubConfig() StubConfig {
	return StubConfig{
		Port:          envStr("STUB_PORT", "8080"),
		JWTSecret:     must("JWT_SECRET"),
		TokenTTL:      envDur("TOKEN_TTL", 24*time.Hour),
		IssueTokens:   envBool("ISSUE_TOKENS", true),
		BcryptCost:    envInt("BCRYPT_COST", 10),
		AdminUser:     envStr("SEED_ADMIN_USER", "admin"),
		AdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
	}
}

// AuditConfig configures cmd/audit-consumer.  With DB_HOST unset events
// go to LogFile instead of MySQL.
type AuditConfig struct {
	AMQPURL string
	LogFile string
	DBUser  string
	DBPass  string
	DBHost  string
	DBPort  string
	DBName  string
}

func LoadAuditConfig() AuditConfig {
	return AuditConfig{
		AMQPURL: amqpURL(),
		LogFile: envStr("AUDIT_LOG_FILE", "logs/session.log"),
		DBUser:  envStr("DB_USER", "root"),
		DBPass:  os.Getenv("DB_PASS"),
		DBHost:  os.Getenv("DB_HOST"),
		DBPort:  envStr("DB_PORT", "3306"),
		DBName:  envStr("DB_NAME", "pos_audit"),
	}
}

// UseDB reports whether events should be written to MySQL.
func (c AuditConfig) UseDB() bool { return c.DBHost != "" }

package config

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
)

func New() (Config, error) {
	privateKey, err := privateKeyFromEnv("JWT_PRIVATE_KEY")
	if err != nil {
		return Config{}, err
	}

	return Config{
		BasePath:   os.Getenv("BASE_PATH"),
		Hostname:   requireEnv("HOSTNAME"),
		UIURL:      requireEnv("UI_URL"),
		BaseURL:    requireEnv("BASE_URL"),
		CronSecret: requireEnv("CRON_SECRET"),
		Postgresql: Postgresql{
			Host:         requireEnv("DATABASE_HOST"),
			Port:         requireEnvAsInt("DATABASE_PORT"),
			Username:     requireEnv("DATABASE_USERNAME"),
			Password:     requireEnv("DATABASE_PASSWORD"),
			DatabaseName: requireEnv("DATABASE_NAME"),
		},
		Redis: Redis{
			Host: requireEnv("REDIS_HOST"),
			Port: requireEnvAsInt("REDIS_PORT"),
		},
		RabbitMq: RabbitMq{
			Host:     requireEnv("RABBITMQ_HOST"),
			Port:     requireEnvAsInt("RABBITMQ_PORT"),
			Username: requireEnv("RABBITMQ_USERNAME"),
			Password: requireEnv("RABBITMQ_PASSWORD"),
		},
		SMTP: SMTP{
			Host:     requireEnv("SMTP_HOST"),
			Port:     requireEnvAsInt("SMTP_PORT"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
		Authentication: Authentication{
			PrivateKey:                    privateKey,
			RefreshTokenSecretKey:         requireEnv("REFRESH_TOKEN_SECRET_KEY"),
			AccessTokenExpirationSeconds:  requireEnvAsInt("ACCESS_TOKEN_EXPIRATION_IN_SECONDS"),
			RefreshTokenExpirationSeconds: requireEnvAsInt("REFRESH_TOKEN_EXPIRATION_IN_SECONDS"),
			PasswordTokenTtlSeconds:       requireEnvAsInt("PASSWORD_TOKEN_TTL_IN_SECONDS"),
		},
		Push: Push{
			FCMCredentialsFile: os.Getenv("FCM_CREDENTIALS_FILE"),
			VAPIDPublicKey:     os.Getenv("VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey:    os.Getenv("VAPID_PRIVATE_KEY"),
			VAPIDSubscriber:    os.Getenv("VAPID_SUBSCRIBER"),
		},
		Reminder: Reminder{
			DedupEnabled: envAsBool("REMINDER_DEDUP_ENABLED"),
		},
	}, nil
}

type Config struct {
	BasePath       string
	Hostname       string
	UIURL          string
	BaseURL        string
	CronSecret     string
	Postgresql     Postgresql
	Redis          Redis
	RabbitMq       RabbitMq
	SMTP           SMTP
	Authentication Authentication
	Push           Push
	Reminder       Reminder
}

type Postgresql struct {
	Host         string
	Port         int
	Username     string
	Password     string
	DatabaseName string
}

type Redis struct {
	Host string
	Port int
}

type RabbitMq struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (r RabbitMq) GetUrl() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", r.Username, r.Password, r.Host, r.Port)
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
}

type Authentication struct {
	PrivateKey                    *rsa.PrivateKey
	RefreshTokenSecretKey         string
	AccessTokenExpirationSeconds  int
	RefreshTokenExpirationSeconds int
	PasswordTokenTtlSeconds       int
}

type Push struct {
	FCMCredentialsFile string
	VAPIDPublicKey     string
	VAPIDPrivateKey    string
	VAPIDSubscriber    string
}

type Reminder struct {
	// DedupEnabled turns on the Redis ledger that suppresses duplicate
	// reminders when scans overlap a reminder window. Off by default to
	// match the observed resend-on-overlap behavior.
	DedupEnabled bool
}

func privateKeyFromEnv(key string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(requireEnv(key)))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block from %s", key)
	}

	privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err == nil {
		return privateKey, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key from %s: %v", key, err)
	}

	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not an RSA key")
	}
	return rsaKey, nil
}

func requireEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("Can't find environment variable: %s\n", key)
	}
	return value
}

func requireEnvAsInt(key string) int {
	valueStr := requireEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("Can't parse value as integer: %s", err.Error())
	}
	return value
}

func envAsBool(key string) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && value
}

package config

import (
	"flag"
	"time"
)

const (
	DefaultBatchSize   = 10
	DefaultCooldownTTL = 5 * time.Second
)

type Config struct {
	LogLevel   string
	ListenAddr string

	PostgresAddr     string // Postgres address in host[:port] format
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string

	RedisAddr     string // Redis address in host[:port] format
	RedisUser     string // Redis user
	RedisPassword string // Redis password

	BidCooldownTTL time.Duration

	FinishBatchSize     int
	PickWinnerBatchSize int
	RefundBatchSize     int

	FinishCronSpec     string
	PickWinnerCronSpec string
	RefundCronSpec     string
	PayCronSpec        string
}

func New() *Config {
	c := &Config{}

	flag.StringVar(&c.LogLevel, "logLevel", LookupEnvString("LOG_LEVEL", "DEBUG"), "Set log level: DEBUG, INFO, WARNING, ERROR.")
	flag.StringVar(&c.ListenAddr, "listenAddr", LookupEnvString("LISTEN_ADDR", ":8000"), `Address in form of "[host]:port" that HTTP server should be listening on.`)

	flag.StringVar(&c.PostgresAddr, "postgresAddr", LookupEnvString("POSTGRES_ADDR", "127.0.0.1:5432"), "Set PostgreSQL address as host:port, where port is optional (without TLS).")
	flag.StringVar(&c.PostgresDB, "postgresDB", LookupEnvString("POSTGRES_DB", "auction"), "Set PostgreSQL DB.")
	flag.StringVar(&c.PostgresUser, "postgresUser", LookupEnvString("POSTGRES_USER", "develop"), "Set PostgreSQL user.")
	flag.StringVar(&c.PostgresPassword, "postgresPassword", LookupEnvString("POSTGRES_PASSWORD", "develop"), "Set PostgreSQL password.")

	flag.StringVar(&c.RedisAddr, "redisAddr", LookupEnvString("REDIS_ADDR", "127.0.0.1:6379"), "Redis address in host[:port] format.")
	flag.StringVar(&c.RedisUser, "redisUser", LookupEnvString("REDIS_USER", ""), "Redis user.")
	flag.StringVar(&c.RedisPassword, "redisPassword", LookupEnvString("REDIS_PASSWORD", ""), "Redis password.")

	flag.DurationVar(&c.BidCooldownTTL, "bidCooldownTTL", LookupEnvDuration("BID_COOLDOWN_TTL", DefaultCooldownTTL), "Minimum interval between two bids of the same user.")

	flag.IntVar(&c.FinishBatchSize, "finishBatchSize", LookupEnvInt("FINISH_BATCH_SIZE", DefaultBatchSize), "Number of items processed per finish-items batch step.")
	flag.IntVar(&c.PickWinnerBatchSize, "pickWinnerBatchSize", LookupEnvInt("PICK_WINNER_BATCH_SIZE", DefaultBatchSize), "Number of items processed per pick-winner batch step.")
	flag.IntVar(&c.RefundBatchSize, "refundBatchSize", LookupEnvInt("REFUND_BATCH_SIZE", DefaultBatchSize), "Number of bids processed per refund batch step. The payout job reads this value as well.")

	flag.StringVar(&c.FinishCronSpec, "finishCronSpec", LookupEnvString("FINISH_CRON_SPEC", "*/3 * * * * *"), "Cron spec (with seconds) for the finish-items job.")
	flag.StringVar(&c.PickWinnerCronSpec, "pickWinnerCronSpec", LookupEnvString("PICK_WINNER_CRON_SPEC", "*/3 * * * * *"), "Cron spec (with seconds) for the pick-winner job.")
	flag.StringVar(&c.RefundCronSpec, "refundCronSpec", LookupEnvString("REFUND_CRON_SPEC", "*/3 * * * * *"), "Cron spec (with seconds) for the refund job.")
	flag.StringVar(&c.PayCronSpec, "payCronSpec", LookupEnvString("PAY_CRON_SPEC", "*/3 * * * * *"), "Cron spec (with seconds) for the pay-creator job.")

	flag.Parse()

	return c
}

package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=5000"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	UploadDir            string        `env:"UPLOAD_DIR,default=uploads"`
	TokenKey             string        `env:"TOKEN_KEY,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	MaxMessageLength     int           `env:"MAX_MESSAGE_LENGTH,default=500"`
	SessionTTL           time.Duration `env:"SESSION_TTL,default=12h"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL,default=10m"`
	PingInterval         time.Duration `env:"PING_INTERVAL,default=15s"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophdrive/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-m string     metadata backend: postgres, badger or memory
//	-d string     PostgreSQL DSN
//	-k string     badger data directory
//	-o string     blob backend: s3, filesystem or memory
//	-f string     filesystem blob root
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket name
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-x duration   presigned URL lifetime (e.g., "15m")
//	-s string     JWT HMAC secret key
//	-n int        cascade concurrency
//	-F string     log format: json, text or tint
//	-l string     log level: debug, info, warn or error
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the -c/-config flag.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-m", "-d", "-k", "-o", "-f", "-u", "-p", "-b", "-g", "-e", "-x", "-s", "-n", "-F", "-l",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddress, "a", config.HTTPAddress, "address and port to run server")
	fs.StringVar(&config.MetadataBackend, "m", config.MetadataBackend, "metadata backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BadgerDir, "k", config.BadgerDir, "badger data directory")
	fs.StringVar(&config.BlobBackend, "o", config.BlobBackend, "blob backend")
	fs.StringVar(&config.BlobRoot, "f", config.BlobRoot, "filesystem blob root")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.DurationVar(&config.PresignExpiry, "x", config.PresignExpiry, "presigned URL lifetime")

	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.IntVar(&config.CascadeConcurrency, "n", config.CascadeConcurrency, "cascade concurrency")
	fs.StringVar(&config.LogFormat, "F", config.LogFormat, "log format")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

package flags

import (
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/registration-form/api"
	"github.com/ruteri/registration-form/auth"
	"github.com/ruteri/registration-form/common"
	"github.com/urfave/cli/v2"
)

// SetupLogger builds the process logger from the common logging flags,
// writing to w (stdout when nil).
func SetupLogger(cCtx *cli.Context, w io.Writer) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String(LogServiceFlag.Name)

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
		Writer:  w,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// TokenIssuer builds the login token issuer from --jwt-secret and --token-ttl.
func TokenIssuer(cCtx *cli.Context) *auth.TokenIssuer {
	return auth.NewTokenIssuer([]byte(cCtx.String(JWTSecretFlag.Name)), cCtx.Duration(TokenTTLFlag.Name))
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *api.HTTPServerConfig {
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &api.HTTPServerConfig{
		ListenAddr:               listenAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var ApiURLFlag = &cli.StringFlag{
	Name:    "api-url",
	Value:   api.DefaultServerAddr,
	Usage:   "signup API base URL",
	EnvVars: []string{"SIGNUP_API_URL"},
}

var ConventionFlag = &cli.StringFlag{
	Name:    "convention",
	Value:   string(api.SnakeCase),
	Usage:   "payload key convention: 'snake' or 'camel'",
	EnvVars: []string{"SIGNUP_CONVENTION"},
}

var EndpointFlag = &cli.StringFlag{
	Name:    "endpoint",
	Usage:   "endpoint path to post to (default depends on --convention)",
	EnvVars: []string{"SIGNUP_ENDPOINT"},
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:8080",
	Usage:   "address to listen on for API",
	EnvVars: []string{"SIGNUP_SERVER_LISTEN_ADDR"},
}

var StorageFlag = &cli.StringFlag{
	Name:    "storage",
	Value:   "memory://",
	Usage:   "account store URI(s), comma separated: memory://, file:///dir, s3://bucket/prefix, vault://host:port/mount/path",
	EnvVars: []string{"SIGNUP_SERVER_STORAGE"},
}

var JWTSecretFlag = &cli.StringFlag{
	Name:    "jwt-secret",
	Usage:   "HMAC key for login tokens; a random key is used when empty, so tokens do not survive a restart",
	EnvVars: []string{"SIGNUP_JWT_SECRET"},
}

var TokenTTLFlag = &cli.DurationFlag{
	Name:    "token-ttl",
	Value:   auth.DefaultTokenTTL,
	Usage:   "lifetime of login tokens",
	EnvVars: []string{"SIGNUP_TOKEN_TTL"},
}

var AccountNumberFlag = &cli.StringFlag{
	Name:     "account",
	Aliases:  []string{"a"},
	Usage:    "account number, e.g. 191026-143005-001",
	Required: true,
}

var PINFlag = &cli.StringFlag{
	Name:     "pin",
	Usage:    "account PIN",
	EnvVars:  []string{"SIGNUP_PIN"},
	Required: true,
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: path.Base(common.PackageName),
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}

var LogFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}

var ServerFlags = []cli.Flag{
	PprofFlag,
	DrainSecondsFlag,
}

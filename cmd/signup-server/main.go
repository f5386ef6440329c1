package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruteri/registration-form/api/signuphandler"
	"github.com/ruteri/registration-form/api/transactionhandler"
	"github.com/ruteri/registration-form/cmd/flags"
	"github.com/ruteri/registration-form/httpserver"
	"github.com/ruteri/registration-form/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "signup-server",
		Usage: "Serve the account signup, login and transaction API",
		Flags: append(append([]cli.Flag{
			flags.ListenAddrFlag,
			flags.StorageFlag,
			flags.JWTSecretFlag,
			flags.TokenTTLFlag,
		}, flags.LogFlags...), flags.ServerFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx, nil)

			storageURI := cCtx.String(flags.StorageFlag.Name)
			store, err := storage.NewAccountStore(storageURI, logger)
			if err != nil {
				logger.Error("Failed to create account store", "err", err, "storage", storageURI)
				return err
			}
			if !store.Available(cCtx.Context) {
				logger.Warn("Account store is not available yet", "store", store.Name())
			}
			logger.Info("Using account store", "location", store.LocationURI())

			if cCtx.String(flags.JWTSecretFlag.Name) == "" {
				logger.Warn("No JWT secret configured, login tokens are invalidated on restart")
			}
			tokens := flags.TokenIssuer(cCtx)

			cfg := flags.ConfigureServer(cCtx, logger, cCtx.String(flags.ListenAddrFlag.Name))
			server, err := httpserver.New(cfg,
				signuphandler.NewHandler(store, nil, tokens, logger),
				transactionhandler.NewHandler(store, tokens, logger),
			)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

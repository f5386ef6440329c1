package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/gookit/color"
	"github.com/ruteri/registration-form/api"
	"github.com/ruteri/registration-form/api/clients"
	"github.com/ruteri/registration-form/cmd/flags"
	"github.com/ruteri/registration-form/formprompt"
	"github.com/ruteri/registration-form/idcatalog"
	"github.com/ruteri/registration-form/interfaces"
	"github.com/ruteri/registration-form/notify"
	"github.com/ruteri/registration-form/registration"
	"github.com/urfave/cli/v2"
)

var flagSet = &cli.StringSliceFlag{
	Name:    "set",
	Aliases: []string{"s"},
	Usage:   "field value as name=value, repeatable (e.g. --set first_name=Juan --set selected_id=tin)",
}

const usage = "Fill in and submit the account registration form"

func main() {
	app := &cli.App{
		Name:  "signup",
		Usage: usage,
		Flags: append([]cli.Flag{
			flags.ApiURLFlag,
			flags.ConventionFlag,
			flags.EndpointFlag,
		}, flags.LogFlags...),
		Commands: []*cli.Command{
			{
				Name:  "interactive",
				Usage: "prompt for every field and submit, retrying on failure",
				Action: func(cCtx *cli.Context) error {
					ctx, cancel := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
					defer cancel()

					c, err := newController(cCtx, notify.NewTerminalNotifier(os.Stdout))
					if err != nil {
						return err
					}
					session := formprompt.NewSession(c, formprompt.NewSurveyDriver(os.Stdout), flags.SetupLogger(cCtx, os.Stderr))
					err = session.Run(ctx)
					if errors.Is(err, formprompt.ErrAborted) {
						return nil
					}
					return err
				},
			},
			{
				Name:  "submit",
				Usage: "submit the form once from --set values",
				Flags: []cli.Flag{flagSet},
				Action: func(cCtx *cli.Context) error {
					c, err := newController(cCtx, notify.NewTerminalNotifier(os.Stdout))
					if err != nil {
						return err
					}

					for _, kv := range cCtx.StringSlice(flagSet.Name) {
						name, value, ok := strings.Cut(kv, "=")
						if !ok {
							return fmt.Errorf("invalid --set value %q, expected name=value", kv)
						}
						field, err := interfaces.ParseField(name)
						if err != nil {
							return fmt.Errorf("%w: %s", err, name)
						}
						if err := c.Set(field, value); err != nil {
							return err
						}
					}

					outcome := <-c.Submit(cCtx.Context)
					if outcome.Status != registration.StatusSucceeded {
						color.Error.Println(outcome.Message)
						return cli.Exit("", 1)
					}
					return nil
				},
			},
			{
				Name:  "balance",
				Usage: "log in and show the account balance",
				Flags: []cli.Flag{flags.AccountNumberFlag, flags.PINFlag},
				Action: func(cCtx *cli.Context) error {
					return withSession(cCtx, func(client *clients.AccountClient, account string) error {
						data, err := client.Balance(cCtx.Context, account)
						if err != nil {
							return err
						}
						fmt.Printf("%s (%s)\nBalance: %.2f\nStatus: %s\nAs of %s\n",
							data.FullName, data.AccountNumber, data.Balance, data.Status, data.Timestamp)
						return nil
					})
				},
			},
			{
				Name:      "cash-in",
				Usage:     "log in and add an amount to the account balance",
				ArgsUsage: "<amount>",
				Flags:     []cli.Flag{flags.AccountNumberFlag, flags.PINFlag},
				Action: func(cCtx *cli.Context) error {
					amount, err := strconv.ParseFloat(cCtx.Args().First(), 64)
					if err != nil {
						return fmt.Errorf("invalid amount %q", cCtx.Args().First())
					}
					return withSession(cCtx, func(client *clients.AccountClient, account string) error {
						data, err := client.CashIn(cCtx.Context, account, amount)
						if err != nil {
							return err
						}
						color.Success.Printf("Cash-in successful: %s\n", data.TransactionNumber)
						fmt.Printf("New balance: %.2f\n", data.NewBalance)
						return nil
					})
				},
			},
			{
				Name:  "id-types",
				Usage: "list the accepted ID types and their formats",
				Action: func(cCtx *cli.Context) error {
					w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "KEY\tLABEL\tEXAMPLE\tPATTERN")
					for _, t := range idcatalog.Default().All() {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Key, t.Label(), t.Placeholder, t.Pattern)
					}
					return w.Flush()
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// withSession logs in with --account and --pin, runs fn and logs out again.
// Server rejections are printed with the server's message.
func withSession(cCtx *cli.Context, fn func(client *clients.AccountClient, account string) error) error {
	logger := flags.SetupLogger(cCtx, os.Stderr)
	account := cCtx.String(flags.AccountNumberFlag.Name)
	client := clients.NewAccountClient(cCtx.String(flags.ApiURLFlag.Name))

	_, err := client.Login(cCtx.Context, account, cCtx.String(flags.PINFlag.Name))
	if err == nil {
		err = fn(client, account)
		if logoutErr := client.Logout(cCtx.Context); logoutErr != nil {
			logger.Warn("Logout failed", "err", logoutErr)
		}
	}

	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		color.Error.Println(statusErr.ServerMessage())
		return cli.Exit("", 1)
	}
	return err
}

func newController(cCtx *cli.Context, notifier interfaces.Notifier) (*registration.Controller, error) {
	logger := flags.SetupLogger(cCtx, os.Stderr)

	convention, err := api.ParseConvention(cCtx.String(flags.ConventionFlag.Name))
	if err != nil {
		return nil, err
	}

	path := cCtx.String(flags.EndpointFlag.Name)
	if path == "" {
		path = convention.DefaultPath()
	}

	client := clients.NewSignupClient(cCtx.String(flags.ApiURLFlag.Name), path)
	logger.Debug("Configured signup endpoint", "url", client.URL(), "convention", string(convention))

	return registration.NewController(&registration.Config{
		Provider:   client,
		Convention: convention,
		Notifier:   notify.Multi{notifier, &notify.LogNotifier{Log: logger}},
		Log:        logger,
	})
}

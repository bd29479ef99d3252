// rtctoken mints a channel token from the command line using the same role resolution and
// codec dispatch as the HTTP service. Credentials come from AGORA_APP_ID and
// AGORA_APP_CERTIFICATE (a .env file in the working directory is honored).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/rtcstack/rtc-token-service/internal/api/dto"
	"github.com/rtcstack/rtc-token-service/internal/codec"
	"github.com/rtcstack/rtc-token-service/internal/codec/linker"
	"github.com/rtcstack/rtc-token-service/internal/config"
	"github.com/rtcstack/rtc-token-service/internal/service"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		query      dto.TokenQuery
		pluginPath string
		asJSON     bool
	)

	flagSet := pflag.NewFlagSet("rtctoken", pflag.ContinueOnError)
	flagSet.StringVarP(&query.Channel, "channel", "c", "", "channel name (required)")
	flagSet.StringVarP(&query.UID, "uid", "u", "", "numeric user id (required)")
	flagSet.StringVarP(&query.Role, "role", "r", "publisher", "role: publisher, subscriber or an alias such as host/audience")
	flagSet.StringVar(&query.TTL, "ttl", "3600", "token lifetime in seconds (60-86400)")
	flagSet.StringVar(&pluginPath, "plugin", "", "load the token builder from a Go plugin instead of the built-in one")
	flagSet.BoolVar(&asJSON, "json", false, "print {\"token\": ...} instead of the bare token")
	flagSet.Usage = func() { printHelp(flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if pluginPath != "" {
		cfg.Codec.Mode = config.CodecModePlugin
		cfg.Codec.PluginPath = pluginPath
	}

	req, err := query.ToRequest()
	if err != nil {
		return err
	}

	lib, err := linker.Open(cfg.Codec)
	if err != nil {
		return err
	}
	tokens := service.NewTokenService(cfg.Credentials, service.TokenDependencies{
		Dispatcher: codec.NewDispatcher(lib),
	})

	token, err := tokens.IssueToken(context.Background(), req)
	if err != nil {
		return err
	}

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(dto.TokenResponse{Token: token})
	}
	fmt.Println(token)
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "Usage: rtctoken --channel NAME --uid N [flags]\n\nFlags:\n")
	flagSet.PrintDefaults()
}

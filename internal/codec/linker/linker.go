// Package linker selects the token builder library named by configuration.
package linker

import (
	"fmt"

	"github.com/rtcstack/rtc-token-service/internal/codec"
	"github.com/rtcstack/rtc-token-service/internal/codec/builtin"
	"github.com/rtcstack/rtc-token-service/internal/config"
)

// Open returns the configured library: the built-in builder or a plugin loaded from disk.
func Open(cfg config.CodecConfig) (codec.Library, error) {
	switch cfg.Mode {
	case config.CodecModeBuiltin, "":
		return builtin.NewBuilder(cfg.Issuer).Library(), nil
	case config.CodecModePlugin:
		if cfg.PluginPath == "" {
			return nil, fmt.Errorf("TOKEN_CODEC_PLUGIN is required when TOKEN_CODEC=%s", config.CodecModePlugin)
		}
		return codec.OpenPlugin(cfg.PluginPath)
	default:
		return nil, fmt.Errorf("invalid TOKEN_CODEC %q", cfg.Mode)
	}
}

package main

import (
	"fmt"
	"log"

	"github.com/uyizlang/uyizlangbot/core/bootstrap"
	"github.com/uyizlang/uyizlangbot/core/buildinfo"
	corecmd "github.com/uyizlang/uyizlangbot/core/cmd"
	"github.com/uyizlang/uyizlangbot/internal/app"
	"github.com/uyizlang/uyizlangbot/internal/config"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg, ok := carrier.(*config.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", carrier)
			}
			res, err := bootstrap.Run(bootstrap.Options{
				Config:   cfg.CoreConfig(),
				Database: cfg.Database,
			})
			if err != nil {
				return nil, err
			}
			return app.New(cfg, res.DB)
		},
	})
	if err != nil {
		log.Fatalf("uyizlangbot %s: %v", buildinfo.String(), err)
	}
}

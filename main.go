package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/sirupsen/logrus"

	"love-space-backend/config"
)

type CommandHandler func(command string) bool

var (
	app = kingpin.New("love-space", "Private voice notes for two.")

	configPath  = app.Flag("config", "The configuration file.").Short('c').Envar("LOVE_CONFIG").String()
	verboseFlag = app.Flag("verbose", "Log at debug level.").Short('v').Bool()

	commandHandlers []CommandHandler
)

func loadConfig() *config.Config {
	cfg, err := config.Load(*configPath)
	kingpin.FatalIfError(err, "Unable to load config")

	if *verboseFlag {
		cfg.LogLevel = logrus.DebugLevel.String()
	}
	config.SetupLogging(cfg)
	return cfg
}

func main() {
	app.HelpFlag.Short('h')
	app.UsageTemplate(kingpin.CompactUsageTemplate)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	for _, handler := range commandHandlers {
		if handler(command) {
			break
		}
	}
}

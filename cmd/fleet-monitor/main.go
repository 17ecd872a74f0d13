package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/paraxiom/fleet-monitor/pkg/monitor"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	configFile = flag.String("config", "config.example.yaml", "path to config file")
)

func main() {
	flag.Parse()

	data, err := os.ReadFile(*configFile)
	if err != nil {
		log.Fatalf("could not read config file: %v", err)
	}

	config := &monitor.Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		log.Fatalf("could not parse config file: %v", err)
	}

	var zapLogger *zap.Logger
	if config.Logging.Development {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("could not create logger: %v", err)
	}
	defer zapLogger.Sync()

	m, err := monitor.New(config, zapLogger)
	if err != nil {
		zapLogger.Sugar().Fatalw("could not start monitor", "error", err)
	}

	result := m.RunPass(context.Background())

	if err := m.Close(); err != nil {
		zapLogger.Sugar().Warnw("could not close monitor cleanly", "error", err)
	}

	os.Exit(result.Status.ExitCode())
}

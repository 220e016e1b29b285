package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/metria/innovation-accounting/internal/config"
	"github.com/metria/innovation-accounting/internal/engine"
	"github.com/metria/innovation-accounting/internal/narrative"
	"github.com/metria/innovation-accounting/internal/project"
	"github.com/metria/innovation-accounting/internal/store"
	"github.com/metria/innovation-accounting/pkg/constants"
	"github.com/metria/innovation-accounting/pkg/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath   string
	outputFormat string
	logLevel     string
	storePath    string
}

// app carries what the commands share once the configuration is loaded.
type app struct {
	conf         *config.Configuration
	logger       *zap.Logger
	outputFormat string

	store   *store.SQLiteStore
	service *project.Service
}

// loadConfiguration reads path; the default file may be absent, in which
// case defaults apply.
func loadConfiguration(path string) (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(path)
	if err == nil {
		return conf, nil
	}
	if path == constants.DefaultConfigFile {
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return nil, fmt.Errorf("failed to load configuration at %s: %w", path, err)
}

func newApp(flags globalFlags) (*app, error) {
	conf, err := loadConfiguration(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.storePath != "" {
		conf.Store.Path = flags.storePath
	}
	if flags.logLevel != "" {
		conf.Logging.Level = flags.logLevel
	}

	outputFormat := conf.Output.Format
	if flags.outputFormat != "" {
		outputFormat = flags.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return nil, err
	}
	conf.Output.Format = outputFormat

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	logger, err := initializeLogger(conf.Logging, flags.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.newApp"),
		)
	}

	return &app{conf: conf, logger: logger, outputFormat: outputFormat}, nil
}

// open connects the project store and builds the save workflow over it.
func (a *app) open() error {
	if a.service != nil {
		return nil
	}
	st, err := store.Open(a.conf.Store.Path, a.logger)
	if err != nil {
		return err
	}
	a.store = st

	var opts []project.Option
	if a.conf.Narrative.Enabled {
		gen, err := narrative.NewGeneratorFromEnv(a.conf.Narrative, a.logger)
		if err != nil {
			a.logger.Warn("narrative disabled",
				zap.String("op", "main.open"),
				zap.Error(err),
			)
		} else {
			opts = append(opts, project.WithNarrator(gen))
		}
	}
	a.service = project.NewService(a.logger, st, opts...)
	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close store", zap.String("op", "main.close"), zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// readDraft decodes a YAML project file.
func readDraft(path string) (project.Draft, error) {
	f, err := os.Open(path)
	if err != nil {
		return project.Draft{}, fmt.Errorf("opening project file: %w", err)
	}
	defer f.Close()

	var d project.Draft
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return project.Draft{}, fmt.Errorf("decoding project file %s: %w", path, err)
	}
	mode, err := engine.ParseMode(string(d.Mode))
	if err != nil {
		return project.Draft{}, fmt.Errorf("project file %s: %w", path, err)
	}
	d.Mode = mode
	return d, nil
}

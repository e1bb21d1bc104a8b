package main

import (
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ifabos/typescope/decl"
	"github.com/ifabos/typescope/qname"
	"github.com/ifabos/typescope/scope"
	"github.com/ifabos/typescope/symtab"
)

// version is set at build time
var version = "dev"

// Output formats
const (
	outputText = "text"
	outputJSON = "json"
)

// Config is the resolved CLI configuration
type Config struct {
	UniversalPackage string
	Stubs            []string
	Manifest         string
	LogLevel         string
	LogFormat        string
	Output           string
	MetricsFile      string
}

// config keys and the flags bound to them
var flagKeys = []struct {
	key  string
	flag string
}{
	{"universal_package", "universal-package"},
	{"stubs", "stubs"},
	{"manifest", "manifest"},
	{"log.level", "log-level"},
	{"log.format", "log-format"},
	{"output", "output"},
	{"metrics_file", "metrics-file"},
}

type app struct {
	v        *viper.Viper
	cfg      Config
	log      zerolog.Logger
	out      io.Writer
	errOut   io.Writer
	repo     *symtab.Repository
	registry *prometheus.Registry
	metrics  *scope.Metrics
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "typescope",
		Short:         "Decide how type references are spelled in generated sources",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.finish()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (YAML)")
	flags.String("universal-package", scope.DefaultUniversalPackage, "package whose types are visible everywhere")
	flags.StringSlice("stubs", nil, "declaration stubs: .java files, .txtar archives or directories")
	flags.String("manifest", "", "YAML symbol table manifest")
	flags.String("log-level", "info", "log level")
	flags.String("log-format", "console", "log format: console or json")
	flags.StringP("output", "o", outputText, "output format: text or json")
	flags.String("metrics-file", "", "write engine counters to this file in Prometheus text format")
	if err := a.bindFlags(flags); err != nil {
		panic(err)
	}

	root.AddCommand(
		a.resolveCommand(),
		a.planCommand(),
		a.describeCommand(),
		a.indexCommand(),
		versionCommand(),
	)
	return root
}

func (a *app) bindFlags(flags *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		if err := a.v.BindPFlag(fk.key, flags.Lookup(fk.flag)); err != nil {
			return errors.Wrapf(err, "failed to bind flag %s", fk.flag)
		}
	}
	return nil
}

func (a *app) init(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("TYPESCOPE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return errors.Wrap(err, "failed to load configuration from file")
		}
	}

	a.cfg = Config{
		UniversalPackage: a.v.GetString("universal_package"),
		Stubs:            a.v.GetStringSlice("stubs"),
		Manifest:         a.v.GetString("manifest"),
		LogLevel:         a.v.GetString("log.level"),
		LogFormat:        a.v.GetString("log.format"),
		Output:           a.v.GetString("output"),
		MetricsFile:      a.v.GetString("metrics_file"),
	}
	if a.cfg.Output != outputText && a.cfg.Output != outputJSON {
		return errors.Errorf("unknown output format %q", a.cfg.Output)
	}

	log, err := newLogger(a.cfg, a.errOut)
	if err != nil {
		return err
	}
	a.log = log

	a.registry = prometheus.NewRegistry()
	a.metrics, err = scope.NewMetrics(a.registry)
	return err
}

func newLogger(cfg Config, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return zerolog.Nop(), errors.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}

	switch cfg.LogFormat {
	case "json":
	case "console", "":
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	default:
		return zerolog.Nop(), errors.Errorf("unknown log format %q", cfg.LogFormat)
	}

	return zerolog.New(w).Level(level).With().
		Timestamp().
		Str("run", uuid.NewString()).
		Logger(), nil
}

// load builds the symbol table from the configured manifest and stubs.
func (a *app) load() error {
	if a.repo != nil {
		return nil
	}
	repo := symtab.NewRepository()

	if a.cfg.Manifest != "" {
		f, err := os.Open(a.cfg.Manifest)
		if err != nil {
			return errors.Wrap(err, "failed to open manifest")
		}
		defer f.Close()
		m, err := symtab.ReadManifest(f)
		if err != nil {
			return errors.Wrapf(err, "manifest %s", a.cfg.Manifest)
		}
		if err := repo.LoadManifest(m); err != nil {
			return errors.Wrapf(err, "manifest %s", a.cfg.Manifest)
		}
	}

	if len(a.cfg.Stubs) > 0 {
		err := decl.Load(repo, a.cfg.Stubs,
			decl.WithUniversalPackage(a.cfg.UniversalPackage),
			decl.WithLogger(a.log))
		if err != nil {
			return err
		}
	} else if err := repo.CheckAcyclic(); err != nil {
		return err
	}

	a.log.Info().
		Str("repository", repo.Id()).
		Int("packages", len(repo.Packages())).
		Int("types", repo.Len()).
		Msg("symbol table loaded")
	a.repo = repo
	return nil
}

func (a *app) handler() *scope.Handler {
	return scope.NewHandler(a.repo,
		scope.WithUniversalPackage(a.cfg.UniversalPackage),
		scope.WithLogger(a.log),
		scope.WithMetrics(a.metrics))
}

// name resolves a canonical name, preferring the structure known to the
// symbol table over the casing convention.
func (a *app) name(s string) (qname.Name, error) {
	if a.repo != nil {
		if td, err := a.repo.LookupTypeDef(s); err == nil {
			return td.QualifiedName(), nil
		}
	}
	n, err := qname.Parse(s)
	if err != nil {
		return qname.Name{}, errors.Wrapf(err, "invalid type name")
	}
	return n, nil
}

func (a *app) finish() error {
	if a.cfg.MetricsFile == "" || a.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.cfg.MetricsFile, a.registry); err != nil {
		return errors.Wrap(err, "failed to write metrics")
	}
	a.log.Debug().Str("file", a.cfg.MetricsFile).Msg("metrics written")
	return nil
}

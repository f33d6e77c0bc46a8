package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/five82/fluidboard/internal/app"
	"github.com/five82/fluidboard/internal/fluid"
	"github.com/five82/fluidboard/internal/livesync"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// cluster is the slice of kube.Client the headless commands use.
type cluster interface {
	livesync.Fetcher
	livesync.Dialer
	Get(ctx context.Context, kind fluid.Kind, namespace, name string) (*unstructured.Unstructured, error)
	Create(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error)
	Delete(ctx context.Context, kind fluid.Kind, namespace, name string) error
}

// session is one resolved cluster connection plus the starting scope.
type session struct {
	client cluster
	scope  fluid.Scope
	sync   livesync.Options
	close  func() error
}

func (s *session) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// namespace returns the scope namespace, or "default" when the scope spans
// all namespaces.
func (s *session) namespace() string {
	if s.scope.Namespace == "" {
		return "default"
	}
	return s.scope.Namespace
}

// CLI holds the global flags and is shared by every subcommand.
type CLI struct {
	Options app.Options
	Debug   bool

	// open resolves a session from the global flags.
	open func(cmd *cobra.Command) (*session, error)
	// runTUI starts the interactive board.
	runTUI func(ctx context.Context, opts app.Options) error
}

// NewCLI returns a CLI wired to the real kubeconfig and terminal.
func NewCLI() *CLI {
	cli := &CLI{runTUI: app.Run}
	cli.open = cli.openSession
	return cli
}

func (c *CLI) openSession(cmd *cobra.Command) (*session, error) {
	opts := c.Options
	opts.Console = cmd.ErrOrStderr()
	opts.LogLevel = "error"
	if c.Debug {
		opts.LogLevel = "debug"
	}

	env, err := app.Setup(opts)
	if err != nil {
		return nil, err
	}
	scope, err := env.Scope()
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	client, err := env.Client(scope.Cluster)
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	return &session{client: client, scope: scope, sync: env.SyncOptions(), close: env.Close}, nil
}

// withSession opens a session, runs fn and closes it.
func (c *CLI) withSession(cmd *cobra.Command, fn func(*session) error) (err error) {
	s, err := c.open(cmd)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Close()) }()
	return fn(s)
}

// NewRootCommand builds the command tree.
func NewRootCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fluidboard",
		Short: "Live console for Fluid datasets, runtimes and dataloads",
		Long: color.CyanString("fluidboard") + " watches the Fluid resources of a Kubernetes cluster and keeps\n" +
			"the view current over the watch API, falling back to polling when\n" +
			"watches are unavailable. Run without a subcommand for the interactive board.",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.runTUI(cmd.Context(), cli.Options)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.StringVar(&cli.Options.ConfigPath, "config", "", "config file (default ~/.config/fluidboard/config.toml)")
	flags.StringVar(&cli.Options.PrefsPath, "prefs", "", "preferences file (default ~/.config/fluidboard/prefs.toml)")
	flags.StringVar(&cli.Options.Kubeconfig, "kubeconfig", "", "kubeconfig file (default from KUBECONFIG or ~/.kube/config)")
	flags.StringVar(&cli.Options.Context, "context", "", "kubeconfig context to start on")
	flags.StringVarP(&cli.Options.Namespace, "namespace", "n", "", "namespace to show (default all namespaces)")
	flags.StringVar(&cli.Options.Kind, "kind", "", "resource kind to show (dataset, alluxio, dataload, ...)")
	flags.BoolVar(&cli.Debug, "debug", false, "log debug output to stderr")
	_ = flags.MarkHidden("prefs")

	cmd.AddCommand(
		newListCommand(cli),
		newWatchCommand(cli),
		newGetCommand(cli),
		newApplyCommand(cli),
		newDeleteCommand(cli),
		newCreateDatasetCommand(cli),
		newKindsCommand(),
	)
	return cmd
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		color.NoColor = true
	}
	root := NewRootCommand(NewCLI())
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("fluidboard:"), err)
		return 1
	}
	return 0
}

// kindArg resolves an optional positional kind, falling back to the scope.
func kindArg(args []string, scope fluid.Scope) (fluid.Kind, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return scope.Kind, nil
	}
	return fluid.ParseKind(args[0])
}

func newKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the supported resource kinds",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, k := range fluid.AllKinds() {
				fmt.Fprintf(out, "%-16s %s\n", k, k.Plural())
			}
		},
	}
}

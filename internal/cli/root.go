package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/adapter/client/propertyapi"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/cli/settings"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
)

// PropertyClient is the subset of the property API the commands use.
type PropertyClient interface {
	Search(ctx context.Context, q domain.SearchQuery) (*domain.PagedResult[domain.Property], error)
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	Create(ctx context.Context, in domain.PropertyInput) (*domain.Property, error)
	Update(ctx context.Context, id string, in domain.PropertyInput) (*domain.Property, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// runtime carries what every subcommand resolves in PersistentPreRunE.
type runtime struct {
	endpoint string
	timeout  time.Duration
	logLevel string

	settings *settings.Settings
	log      logger.Logger
	client   PropertyClient

	newClient func(baseURL string, timeout time.Duration, log logger.Logger) PropertyClient
}

func defaultClient(baseURL string, timeout time.Duration, log logger.Logger) PropertyClient {
	return propertyapi.New(propertyapi.Config{BaseURL: baseURL, Timeout: timeout}, log)
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&runtime{newClient: defaultClient}, os.Stdin)
}

func newRootCommand(rt *runtime, in io.Reader) *cobra.Command {
	root := &cobra.Command{
		Use:           "propertyctl",
		Short:         "Browse and manage properties of the real-estate portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&rt.endpoint, "endpoint", "", "property API base URL (overrides the api.endpoint setting)")
	root.PersistentFlags().DurationVar(&rt.timeout, "timeout", 10*time.Second, "request timeout")
	root.PersistentFlags().StringVar(&rt.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(
		newBrowseCommand(rt, in),
		newSearchCommand(rt),
		newPropertyCommand(rt),
		newConfigCommand(rt),
	)
	return root
}

func (rt *runtime) init(cmd *cobra.Command) error {
	log, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:    rt.logLevel,
		Encoding: "console",
		Output:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	rt.log = log

	if rt.settings == nil {
		s, err := settings.Load()
		if err != nil {
			return err
		}
		rt.settings = s
	}

	endpoint := rt.endpoint
	if endpoint == "" {
		endpoint = rt.settings.APIEndpoint()
	}
	rt.client = rt.newClient(endpoint, rt.timeout, rt.log)
	rt.log.Debugw("propertyctl: initialized", "endpoint", endpoint, "settings", rt.settings.Path())
	return nil
}

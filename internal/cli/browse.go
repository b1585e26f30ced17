package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/search"
)

const browseHelp = `Commands:
  name <text>     filter by name (empty clears)
  address <text>  filter by address (empty clears)
  min <price>     minimum price (empty clears)
  max <price>     maximum price (empty clears)
  page <n>        go to page n
  size <n>        results per page
  next, prev      move one page
  clear           reset every filter
  refresh         fetch the current query again
  help            show this help
  quit            exit`

var errQuit = errors.New("quit")

func newBrowseCommand(rt *runtime, in io.Reader) *cobra.Command {
	var metricsPort string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Interactively search properties",
		Long:  "Interactively search properties. Text filters are applied once typing settles.\n\n" + browseHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := &syncWriter{w: cmd.OutOrStdout()}
			opts := []search.Option{
				search.WithDebounce(rt.settings.Debounce()),
				search.WithLogger(rt.log),
				search.WithInitialQuery(domain.SearchQuery{Page: domain.DefaultPage, PageSize: rt.settings.PageSize()}),
				search.WithListener(func(v search.ViewModel) {
					fmt.Fprintln(out)
					renderView(out, v)
				}),
			}
			if metricsPort != "" {
				m := metrics.NewMetricsManager("propertyctl")
				opts = append(opts, search.WithObserver(m.FetchObserver()))
				go func() {
					if err := metrics.StartMetricsServer(metricsPort, rt.log, m.Registry); err != nil {
						rt.log.Errorf("metrics server failed: %v", err)
					}
				}()
			}

			ctrl := search.NewController(rt.client, opts...)
			defer ctrl.Close()
			ctrl.Start()

			scanner := bufio.NewScanner(in)
			for scanner.Scan() {
				err := applyLine(ctrl, scanner.Text(), out)
				if errors.Is(err, errQuit) {
					return nil
				}
				if err != nil {
					fmt.Fprintln(out, err)
				}
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&metricsPort, "metrics-port", "", "serve Prometheus metrics for fetches on this port")
	return cmd
}

// applyLine executes one browse command against ctrl.
func applyLine(ctrl *search.Controller, line string, out io.Writer) error {
	verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "":
		return nil
	case "name":
		ctrl.Update(search.Patch{Name: search.Set(arg)})
	case "address":
		ctrl.Update(search.Patch{Address: search.Set(arg)})
	case "min", "max":
		field := search.Unset[float64]()
		if arg != "" {
			p := domain.ParsePrice(arg)
			if p == nil {
				return fmt.Errorf("invalid price %q", arg)
			}
			field = search.Set(*p)
		}
		if strings.EqualFold(verb, "min") {
			ctrl.Update(search.Patch{MinPrice: field})
		} else {
			ctrl.Update(search.Patch{MaxPrice: field})
		}
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid page %q", arg)
		}
		ctrl.GoToPage(n)
	case "size":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > domain.MaxPageSize {
			return fmt.Errorf("page size must be between 1 and %d", domain.MaxPageSize)
		}
		ctrl.Update(search.Patch{PageSize: &n})
	case "next":
		ctrl.NextPage()
	case "prev":
		ctrl.PrevPage()
	case "clear":
		ctrl.Clear()
	case "refresh":
		ctrl.Refetch()
	case "help":
		fmt.Fprintln(out, browseHelp)
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, type help", verb)
	}
	return nil
}

// syncWriter serialises renders from fetch goroutines with prompt output.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

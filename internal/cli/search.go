package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/search"
)

type searchFlags struct {
	name     string
	address  string
	minPrice float64
	maxPrice float64
	page     int
	pageSize int
	output   string
}

func newSearchCommand(rt *runtime) *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a single property search and print the page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := f.query(cmd, rt.settings.PageSize())
			v := searchOnce(cmd.Context(), rt, q)
			if v.Error != "" {
				return errors.New(v.Error)
			}
			if v.Data == nil {
				return cmd.Context().Err()
			}
			if f.output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(v.Data)
			}
			renderPage(cmd.OutOrStdout(), v.Data)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.name, "name", "", "filter by name")
	cmd.Flags().StringVar(&f.address, "address", "", "filter by address")
	cmd.Flags().Float64Var(&f.minPrice, "min-price", 0, "minimum price")
	cmd.Flags().Float64Var(&f.maxPrice, "max-price", 0, "maximum price")
	cmd.Flags().IntVar(&f.page, "page", domain.DefaultPage, "page number")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "results per page (default from the search.page_size setting)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "table", "output format: table or json")
	return cmd
}

// query keeps only the filters given on the command line.
func (f searchFlags) query(cmd *cobra.Command, defaultPageSize int) domain.SearchQuery {
	q := domain.DefaultQuery()
	q.PageSize = defaultPageSize
	q.Name = domain.ParseText(f.name)
	q.Address = domain.ParseText(f.address)
	if cmd.Flags().Changed("min-price") {
		q.MinPrice = &f.minPrice
	}
	if cmd.Flags().Changed("max-price") {
		q.MaxPrice = &f.maxPrice
	}
	if f.page >= 1 {
		q.Page = f.page
	}
	if f.pageSize >= 1 {
		q.PageSize = min(f.pageSize, domain.MaxPageSize)
	}
	return q
}

// searchOnce drives a controller through exactly one fetch and returns the
// settled view.
func searchOnce(ctx context.Context, rt *runtime, q domain.SearchQuery) search.ViewModel {
	settled := make(chan struct{}, 1)
	ctrl := search.NewController(rt.client,
		search.WithDebounce(0),
		search.WithInitialQuery(q),
		search.WithLogger(rt.log),
		search.WithListener(func(v search.ViewModel) {
			if v.IsLoading {
				return
			}
			select {
			case settled <- struct{}{}:
			default:
			}
		}),
	)
	defer ctrl.Close()

	rt.log.Debugw("propertyctl search", "query", fmt.Sprint(q))
	ctrl.Start()
	select {
	case <-settled:
	case <-ctx.Done():
	}
	return ctrl.View()
}

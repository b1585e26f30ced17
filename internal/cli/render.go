package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/search"
)

func renderView(w io.Writer, v search.ViewModel) {
	switch {
	case v.IsLoading && v.Data == nil:
		fmt.Fprintln(w, "Loading...")
		return
	case v.IsLoading:
		fmt.Fprintln(w, "Loading...")
	case v.Error != "":
		fmt.Fprintf(w, "Error: %s\n", v.Error)
		return
	case v.Data == nil:
		return
	}
	renderPage(w, v.Data)
}

func renderPage(w io.Writer, page *domain.PagedResult[domain.Property]) {
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No properties found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tADDRESS\tPRICE")
	for _, p := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\n", p.ID, p.Name, p.Address, p.Price)
	}
	_ = tw.Flush()

	first, last := search.ItemRange(page.Total, page.PageSize, page.Page)
	fmt.Fprintf(w, "Showing %d-%d of %d\n", first, last, page.Total)
	if strip := pager(page); strip != "" {
		fmt.Fprintln(w, strip)
	}
}

// pager renders the page strip with the current page in brackets.
func pager(page *domain.PagedResult[domain.Property]) string {
	seq := search.PageSequence(page.Total, page.PageSize, page.Page)
	if len(seq) < 2 {
		return ""
	}
	parts := make([]string, 0, len(seq))
	for _, item := range seq {
		if !item.Gap && item.Number == page.Page {
			parts = append(parts, "["+item.String()+"]")
			continue
		}
		parts = append(parts, item.String())
	}
	return "Pages: " + strings.Join(parts, " ")
}

func renderProperty(w io.Writer, p *domain.Property) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(k string, v any) { fmt.Fprintf(tw, "%s:\t%v\n", k, v) }
	row("ID", p.ID)
	row("Name", p.Name)
	row("Address", p.Address)
	row("Price", fmt.Sprintf("%.2f", p.Price))
	if p.CodeInternal != "" {
		row("Code", p.CodeInternal)
	}
	if p.OwnerID != "" {
		row("Owner", p.OwnerID)
	}
	if p.Year != 0 {
		row("Year", p.Year)
	}
	if p.PropertyType != "" {
		row("Type", p.PropertyType)
	}
	if p.Status != "" {
		row("Status", p.Status)
	}
	if p.Bedrooms != 0 || p.Bathrooms != 0 {
		row("Rooms", fmt.Sprintf("%d bed / %d bath", p.Bedrooms, p.Bathrooms))
	}
	if p.Area != 0 {
		row("Area", fmt.Sprintf("%g m²", p.Area))
	}
	if p.Description != "" {
		row("Description", p.Description)
	}
	_ = tw.Flush()
}

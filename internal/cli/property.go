package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/validation"
)

func newPropertyCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "property",
		Aliases: []string{"prop"},
		Short:   "Get, create, update or delete a property",
	}
	cmd.AddCommand(
		newPropertyGetCommand(rt),
		newPropertyCreateCommand(rt),
		newPropertyUpdateCommand(rt),
		newPropertyDeleteCommand(rt),
	)
	return cmd
}

func newPropertyGetCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := rt.client.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderProperty(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func newPropertyCreateCommand(rt *runtime) *cobra.Command {
	var in domain.PropertyInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a property",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validation.New().Property(in); err != nil {
				return err
			}
			p, err := rt.client.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created property %s\n", p.ID)
			return nil
		},
	}
	bindInputFlags(cmd.Flags(), &in)
	return cmd
}

func newPropertyUpdateCommand(rt *runtime) *cobra.Command {
	var in domain.PropertyInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a property; flags not given keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := rt.client.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			merged := mergeInput(inputFrom(current), in, cmd.Flags())
			if err := validation.New().Property(merged); err != nil {
				return err
			}
			p, err := rt.client.Update(cmd.Context(), args[0], merged)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated property %s\n", p.ID)
			return nil
		},
	}
	bindInputFlags(cmd.Flags(), &in)
	return cmd
}

func newPropertyDeleteCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := rt.client.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("property %s: %w", args[0], domain.ErrPropertyNotFound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted property %s\n", args[0])
			return nil
		},
	}
}

func bindInputFlags(fs *pflag.FlagSet, in *domain.PropertyInput) {
	fs.StringVar(&in.Name, "name", "", "property name")
	fs.StringVar(&in.Address, "address", "", "street address")
	fs.Float64Var(&in.Price, "price", 0, "price")
	fs.StringVar(&in.OwnerID, "owner", "", "owner id")
	fs.StringVar(&in.CodeInternal, "code", "", "internal reference code")
	fs.IntVar(&in.Year, "year", 0, "year built")
	fs.StringVar(&in.Description, "description", "", "description")
	fs.StringVar(&in.ImageURL, "image-url", "", "main image URL")
	fs.IntVar(&in.Bedrooms, "bedrooms", 0, "number of bedrooms")
	fs.IntVar(&in.Bathrooms, "bathrooms", 0, "number of bathrooms")
	fs.Float64Var(&in.Area, "area", 0, "area in square metres")
	fs.StringVar((*string)(&in.PropertyType), "type", "", "House, Apartment, Condo, Townhouse or Commercial")
	fs.StringVar((*string)(&in.Status), "status", "", "Available, Sold, Rented or Pending")
}

func inputFrom(p *domain.Property) domain.PropertyInput {
	return domain.PropertyInput{
		Name:         p.Name,
		Address:      p.Address,
		Price:        p.Price,
		OwnerID:      p.OwnerID,
		CodeInternal: p.CodeInternal,
		Year:         p.Year,
		Description:  p.Description,
		ImageURL:     p.ImageURL,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		Area:         p.Area,
		PropertyType: p.PropertyType,
		Status:       p.Status,
	}
}

// mergeInput copies into base every field whose flag was set.
func mergeInput(base, flags domain.PropertyInput, fs *pflag.FlagSet) domain.PropertyInput {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("name", func() { base.Name = flags.Name })
	set("address", func() { base.Address = flags.Address })
	set("price", func() { base.Price = flags.Price })
	set("owner", func() { base.OwnerID = flags.OwnerID })
	set("code", func() { base.CodeInternal = flags.CodeInternal })
	set("year", func() { base.Year = flags.Year })
	set("description", func() { base.Description = flags.Description })
	set("image-url", func() { base.ImageURL = flags.ImageURL })
	set("bedrooms", func() { base.Bedrooms = flags.Bedrooms })
	set("bathrooms", func() { base.Bathrooms = flags.Bathrooms })
	set("area", func() { base.Area = flags.Area })
	set("type", func() { base.PropertyType = flags.PropertyType })
	set("status", func() { base.Status = flags.Status })
	return base
}

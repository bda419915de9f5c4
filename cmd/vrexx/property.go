package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	domprop "github.com/vrexx/vrexx/internal/domain/property"
	propertyuc "github.com/vrexx/vrexx/internal/usecase/property"
)

var addPropertyCmd = &cobra.Command{
	Use:   "add-property",
	Short: "Embed and store a property listing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		draft, err := draftFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer a.shutdown()

		p, err := a.catalog.Add(ctx, draft)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "property saved: %s\n", p.ID())
		return nil
	},
}

func init() {
	f := addPropertyCmd.Flags()
	f.String("address", "", "street address (required)")
	f.Float64("price", 0, "asking price in euro (required)")
	f.String("description", "", "free-text description used for search (required)")
	f.String("photo-url", "", "photo URL")
	f.String("video360-url", "", "360 video URL")
	f.String("render-url", "", "render URL")

	for _, name := range []string{"address", "price", "description"} {
		if err := addPropertyCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

func draftFromFlags(cmd *cobra.Command) (propertyuc.Draft, error) {
	f := cmd.Flags()
	var (
		d   propertyuc.Draft
		err error
	)
	if d.Address, err = f.GetString("address"); err != nil {
		return d, err
	}
	if d.Price, err = f.GetFloat64("price"); err != nil {
		return d, err
	}
	if d.Description, err = f.GetString("description"); err != nil {
		return d, err
	}

	var m domprop.Media
	if m.PhotoURL, err = f.GetString("photo-url"); err != nil {
		return d, err
	}
	if m.Video360URL, err = f.GetString("video360-url"); err != nil {
		return d, err
	}
	if m.RenderURL, err = f.GetString("render-url"); err != nil {
		return d, err
	}
	d.Media = m
	return d, nil
}

// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	errEnrichmentDisabled = errors.New("enrichment is disabled: OPENAI_API_KEY is not set")
	errGeocodingDisabled  = errors.New("geocoding is disabled: MAPBOX_API_KEY is not set")
)

func (c *cli) importJSONLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-jsonl <type> <name>",
		Short: "Import scraped posts from <raw_files_dir>/<type>/<name>.jsonl",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := c.components()
			if err != nil {
				return err
			}

			fmt.Fprintf(c.out, "Importing data from %s\n", comps.Importer.Path(args[0], args[1]))
			stats, err := comps.Importer.ImportJSONL(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, stats.Summary())
			return nil
		},
	}
}

func (c *cli) enrichCmd() *cobra.Command {
	var (
		workers int
		city    string
	)

	cmd := &cobra.Command{
		Use:   "enrich <scraped-place-id>...",
		Short: "Research scraped places with the LLM and create hidden places",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			comps, err := c.components()
			if err != nil {
				return err
			}
			if comps.Enricher == nil {
				return errEnrichmentDisabled
			}
			if workers < 1 {
				workers = c.cfg.Scraping.EnrichWorkers
			}

			failed := 0
			for _, res := range comps.Enricher.EnrichBatchWithCity(cmd.Context(), ids, city, workers) {
				switch {
				case res.Error != "":
					failed++
					fmt.Fprintf(c.out, "%d: failed: %s\n", res.ScrapedPlaceID, res.Error)
				case res.Created:
					fmt.Fprintf(c.out, "%d: created place %d (geocoded: %t)\n", res.ScrapedPlaceID, res.PlaceID, res.Geocoded)
				default:
					fmt.Fprintf(c.out, "%d: already enriched as place %d\n", res.ScrapedPlaceID, res.PlaceID)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d places failed to enrich", failed, len(ids))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent enrichments (default scraping.enrich_workers)")
	cmd.Flags().StringVar(&city, "city", "", "City hint passed to the model and the geocoder")
	return cmd
}

func (c *cli) geocodeCmd() *cobra.Command {
	var country string

	cmd := &cobra.Command{
		Use:   "geocode <name> [city]",
		Short: "Look up coordinates for a place with Mapbox",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := c.components()
			if err != nil {
				return err
			}
			if comps.Geocoder == nil {
				return errGeocodingDisabled
			}

			var city string
			if len(args) == 2 {
				city = args[1]
			}
			coords, err := comps.Geocoder.Geocode(cmd.Context(), args[0], city, country)
			if err != nil {
				return err
			}
			if coords == nil {
				fmt.Fprintln(c.out, "No match found.")
				return nil
			}
			fmt.Fprintf(c.out, "%.6f, %.6f\n", coords.Latitude, coords.Longitude)
			return nil
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "ISO country code (default geocoding.default_country)")
	return cmd
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("invalid scraped place ID %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

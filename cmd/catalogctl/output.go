package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	pipeline "github.com/vivispa/catalog-api/internal/catalog"
	"github.com/vivispa/catalog-api/internal/model"
	catalogService "github.com/vivispa/catalog-api/internal/service/catalog"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func locationOf(item model.Item) string {
	if item.Location != "" {
		return item.Location
	}
	names := make([]string, 0, len(item.Locations))
	for _, a := range item.Locations {
		names = append(names, a.Location)
	}
	return strings.Join(names, ", ")
}

func writeItems(w io.Writer, res *catalogService.QueryResult) error {
	if res.Empty {
		_, err := fmt.Fprintf(w, "no items in %s match %q\n", res.Catalog, res.Query)
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tSUBCATEGORY\tPRICE\tDISCOUNT\tLOCATION")
	for _, item := range res.Items {
		discount := "-"
		if d := pipeline.DiscountPercent(item); d > 0 {
			discount = fmt.Sprintf("%d%%", d)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			item.Name, item.Category, item.Subcategory, item.Price, discount, locationOf(item))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d items\n", res.Count, res.Total)
	return err
}

func writeGroups(w io.Writer, res *catalogService.GroupResult) error {
	if res.Empty {
		_, err := fmt.Fprintf(w, "no items in %s match %q\n", res.Catalog, res.Query)
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "CATEGORY\tSUBCATEGORY\tITEMS")
	for _, g := range res.Groups {
		for _, sub := range g.Subcategories {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", g.Category, sub.Key, len(sub.Items))
		}
	}
	return tw.Flush()
}

func writeDefinitions(w io.Writer, defs []model.FilterDefinition) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "KEY\tKIND\tDEFAULT\tOPTIONS")
	for _, d := range defs {
		opts := make([]string, 0, len(d.Options))
		for _, o := range d.Options {
			if o.Count > 0 {
				opts = append(opts, fmt.Sprintf("%s (%d)", o.Value, o.Count))
				continue
			}
			opts = append(opts, o.Value)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Key, d.Kind, d.Default, strings.Join(opts, ", "))
	}
	return tw.Flush()
}

func writeSnapshot(w io.Writer, path string, snap *model.Snapshot) error {
	fmt.Fprintf(w, "%s: %d catalogs, %d items, %d locations\n",
		path, len(snap.Catalogs), snap.ItemCount(), len(snap.Locations))

	tw := newTable(w)
	fmt.Fprintln(tw, "CATALOG\tITEMS\tBUCKETS\tDEFAULT SORT")
	for _, c := range snap.Catalogs {
		sort := string(c.DefaultSort)
		if sort == "" {
			sort = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", c.Name, len(c.Items), c.BucketSet, sort)
	}
	return tw.Flush()
}

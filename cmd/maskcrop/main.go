// Command maskcrop previews how a defect image and mask pair will be
// cropped and loaded from a catalog directory.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"defectpaste/internal/catalog"
)

func main() {
	dir := flag.String("dir", "", "Catalog root directory to scan")
	typ := flag.String("type", "", "Only show entries of this defect type")
	load := flag.Bool("load", false, "Load each entry and report cropped sizes")
	thumbDir := flag.String("thumbs", "", "Write 64 px thumbnails into this directory")
	flag.Parse()

	if *dir == "" {
		fmt.Println("Usage: maskcrop -dir <catalog-root> [-type <name>] [-load]")
		os.Exit(1)
	}

	cat, err := catalog.Scan(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		os.Exit(1)
	}

	entries := cat.Entries
	if *typ != "" {
		entries = cat.ByType(*typ)
	}
	fmt.Printf("Found %d entries (%d types)\n\n", len(entries), len(cat.Types()))

	fmt.Printf("%-16s %-24s %-6s %s\n", "TYPE", "NAME", "MASK", "SIZE")
	for _, e := range entries {
		hasMask := "no"
		if e.MaskPath != "" {
			hasMask = "yes"
		}

		size := "-"
		if *load {
			p, err := catalog.Instantiate(e)
			if err != nil {
				size = fmt.Sprintf("error: %v", err)
			} else {
				size = fmt.Sprintf("%dx%d", p.Sprite.Width(), p.Sprite.Height())
			}
		}
		fmt.Printf("%-16s %-24s %-6s %s\n", e.Type, e.Name, hasMask, size)

		if *thumbDir != "" {
			if err := writeThumb(*thumbDir, e); err != nil {
				fmt.Fprintf(os.Stderr, "Thumbnail for %s/%s failed: %v\n", e.Type, e.Name, err)
			}
		}
	}
}

func writeThumb(dir string, e *catalog.Entry) error {
	thumb, err := catalog.Thumbnail(e, 64)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, e.Type+"_"+e.Name+".png"))
	if err != nil {
		return err
	}
	if err := png.Encode(f, thumb); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

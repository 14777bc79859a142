// Package export writes composited results to disk: the flattened image,
// the union defect mask, and a metadata sidecar describing every placement.
package export

import (
	"encoding/json"
	"fmt"
	goimage "image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"defectpaste/internal/scene"
)

// DefectRecord describes one catalog defect placement in the metadata file.
type DefectRecord struct {
	Type            string  `json:"type"`
	Position        [2]int  `json:"position"`
	Scale           float64 `json:"scale"`
	Rotation        float64 `json:"rotation"`
	Opacity         float64 `json:"opacity"`
	MaskPath        string  `json:"mask_path,omitempty"`
	DefectImagePath string  `json:"defect_image_path"`
}

// RegionRecord describes one extracted-region placement in the metadata
// file. OriginalRect is [x, y, width, height] in base-image pixels.
type RegionRecord struct {
	Type         string  `json:"type"`
	Position     [2]int  `json:"position"`
	Scale        float64 `json:"scale"`
	Rotation     float64 `json:"rotation"`
	Opacity      float64 `json:"opacity"`
	OriginalRect [4]int  `json:"original_rect"`
	Source       string  `json:"source"`
}

// Metadata is the sidecar written next to each exported composite.
type Metadata struct {
	TargetImage     string         `json:"target_image"`
	TargetImagePath string         `json:"target_image_path"`
	Defects         []DefectRecord `json:"defects"`
	Regions         []RegionRecord `json:"regions"`
}

// Result names the three files one export produced.
type Result struct {
	Index        int
	ImagePath    string
	MaskPath     string
	MetadataPath string
}

// Request is one scene to export plus the target identity recorded in its
// metadata.
type Request struct {
	Scene           *scene.Scene
	TargetImage     string
	TargetImagePath string
}

// BuildMetadata collects every placement of a scene into the sidecar
// structure, defects and regions in z order.
func BuildMetadata(req Request) Metadata {
	md := Metadata{
		TargetImage:     req.TargetImage,
		TargetImagePath: req.TargetImagePath,
		Defects:         []DefectRecord{},
		Regions:         []RegionRecord{},
	}
	for _, p := range req.Scene.Placements() {
		t := p.Transform.Translation()
		pos := [2]int{int(t.X), int(t.Y)}
		switch p.Kind {
		case scene.KindRegion:
			rec := RegionRecord{
				Type:     p.Prov.TypeName,
				Position: pos,
				Scale:    p.Transform.Scale(),
				Rotation: p.Transform.Rotation(),
				Opacity:  p.Opacity(),
				Source:   p.Prov.Source,
			}
			if r := p.Prov.OriginalRect; r != nil {
				rec.OriginalRect = [4]int{r.X, r.Y, r.Width, r.Height}
			}
			md.Regions = append(md.Regions, rec)
		default:
			md.Defects = append(md.Defects, DefectRecord{
				Type:            p.Prov.TypeName,
				Position:        pos,
				Scale:           p.Transform.Scale(),
				Rotation:        p.Transform.Rotation(),
				Opacity:         p.Opacity(),
				MaskPath:        p.Prov.MaskPath,
				DefectImagePath: p.Prov.ImagePath,
			})
		}
	}
	return md
}

// NextIndex returns the first integer n for which "<n>.png" does not exist
// in dir, starting from 1.
func NextIndex(dir string) int {
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(dir, fmt.Sprintf("%d.png", i))); os.IsNotExist(err) {
			return i
		}
	}
}

// Write composites the scene and writes "<index>.png", "<index>_mask.png",
// and "<index>_metadata.json" into dir, creating it as needed.
func Write(dir string, index int, req Request) (*Result, error) {
	composite, err := req.Scene.Composite()
	if err != nil {
		return nil, fmt.Errorf("composite: %w", err)
	}
	mask, err := req.Scene.MaskUnion()
	if err != nil {
		return nil, fmt.Errorf("mask union: %w", err)
	}
	return WriteFiles(dir, index, composite, mask, BuildMetadata(req))
}

// WriteFiles writes an already-composited frame, its mask, and the metadata
// sidecar. It exists so alternative compositors can share the file layout.
func WriteFiles(dir string, index int, composite, mask goimage.Image, md Metadata) (*Result, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create output directory: %w", err)
	}

	res := &Result{
		Index:        index,
		ImagePath:    filepath.Join(dir, fmt.Sprintf("%d.png", index)),
		MaskPath:     filepath.Join(dir, fmt.Sprintf("%d_mask.png", index)),
		MetadataPath: filepath.Join(dir, fmt.Sprintf("%d_metadata.json", index)),
	}

	if err := writePNG(res.ImagePath, composite); err != nil {
		return nil, err
	}
	if err := writePNG(res.MaskPath, mask); err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("cannot serialize metadata: %w", err)
	}
	if err := os.WriteFile(res.MetadataPath, data, 0644); err != nil {
		return nil, fmt.Errorf("cannot write metadata: %w", err)
	}
	return res, nil
}

// WriteNext exports at the first free index in dir.
func WriteNext(dir string, req Request) (*Result, error) {
	return Write(dir, NextIndex(dir), req)
}

// BatchExport writes several scenes concurrently, at most workers at a
// time (workers <= 0 means unbounded), assigning consecutive indices
// starting at the first free one. Results come back in request order; the
// first failure cancels the batch.
func BatchExport(dir string, workers int, reqs []Request) ([]*Result, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create output directory: %w", err)
	}

	start := NextIndex(dir)
	results := make([]*Result, len(reqs))

	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			res, err := Write(dir, start+i, req)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func writePNG(path string, img goimage.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("cannot encode %s: %w", path, err)
	}
	return f.Close()
}

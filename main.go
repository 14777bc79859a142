// Command defectpaste composites catalog defects and extracted regions onto
// target images from a scenario script and exports the results.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"defectpaste/internal/catalog"
	"defectpaste/internal/config"
	"defectpaste/internal/export"
	img "defectpaste/internal/image"
	"defectpaste/internal/project"
	"defectpaste/internal/render"
	"defectpaste/internal/scene"
	"defectpaste/internal/version"
)

const appName = "defectpaste"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", "", "Path to a YAML config file")
	scenarioPath := flag.String("scenario", "", "Path to a YAML scenario file")
	outDir := flag.String("out", "", "Output directory (overrides config)")
	useOpenCV := flag.Bool("opencv", false, "Composite with the OpenCV warp path")
	projectPath := flag.String("save-project", "", "Also save the placements as a project file")
	replayPath := flag.String("project", "", "Re-render every target saved in a project file")
	flag.Parse()

	if *scenarioPath == "" && *replayPath == "" {
		fmt.Println("Usage: defectpaste -scenario <path> | -project <path> [-config <path>] [-out <dir>] [-opencv]")
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *useOpenCV {
		cfg.UseOpenCV = true
	}

	log.Printf("Starting %s v%s", appName, version.Version)

	if *replayPath != "" {
		if err := replay(cfg, *replayPath); err != nil {
			log.Fatalf("Replay failed: %v", err)
		}
		return
	}

	sc, err := config.LoadScenario(*scenarioPath)
	if err != nil {
		log.Fatalf("Failed to load scenario: %v", err)
	}

	res, s, err := run(cfg, sc)
	if err != nil {
		log.Fatalf("Scenario failed: %v", err)
	}
	log.Printf("Exported %s, %s, %s", res.ImagePath, res.MaskPath, res.MetadataPath)

	if *projectPath != "" {
		proj := project.New(appName)
		proj.SetTarget(*projectPath, sc.Target, s)
		if err := proj.Save(*projectPath); err != nil {
			log.Fatalf("Failed to save project: %v", err)
		}
		log.Printf("Saved project %s", *projectPath)
	}
}

// run executes one scenario end to end: build the scene, apply scripted
// placements and strokes, composite, and export.
func run(cfg config.Config, sc *config.Scenario) (*export.Result, *scene.Scene, error) {
	base, err := img.Load(sc.Target)
	if err != nil {
		return nil, nil, fmt.Errorf("load target: %w", err)
	}
	log.Printf("Loaded target %s (%dx%d)", sc.Target, base.Width(), base.Height())

	s, err := scene.New(base)
	if err != nil {
		return nil, nil, err
	}

	var cat *catalog.Catalog
	if len(sc.Defects) > 0 {
		if len(cfg.CatalogDirs) == 0 {
			return nil, nil, fmt.Errorf("scenario places defects but no catalog_dirs configured")
		}
		cat, err = catalog.Scan(cfg.CatalogDirs...)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Catalog: %d entries, %d types", len(cat.Entries), len(cat.Types()))
	}

	for i, d := range sc.Defects {
		if err := placeDefect(s, cat, d); err != nil {
			return nil, nil, fmt.Errorf("defect %d: %w", i, err)
		}
	}

	for _, st := range sc.Strokes {
		applyStroke(s, cfg, st)
	}

	req := export.Request{
		Scene:           s,
		TargetImage:     sc.Target,
		TargetImagePath: sc.Target,
	}

	if cfg.UseOpenCV {
		composite, err := render.CompositeOpenCV(s)
		if err != nil {
			return nil, nil, err
		}
		mask, err := s.MaskUnion()
		if err != nil {
			return nil, nil, err
		}
		res, err := export.WriteFiles(cfg.OutputDir, export.NextIndex(cfg.OutputDir),
			composite, mask, export.BuildMetadata(req))
		return res, s, err
	}
	res, err := export.WriteNext(cfg.OutputDir, req)
	return res, s, err
}

// replay re-renders every target saved in a project file, exporting each as
// a fresh indexed set in the output directory.
func replay(cfg config.Config, path string) error {
	proj, err := project.Load(path)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if len(proj.Targets) == 0 {
		return fmt.Errorf("project %s has no targets", path)
	}
	if len(cfg.CatalogDirs) == 0 {
		return fmt.Errorf("project replay needs catalog_dirs configured")
	}
	cat, err := catalog.Scan(cfg.CatalogDirs...)
	if err != nil {
		return err
	}

	reqs := make([]export.Request, 0, len(proj.Targets))
	for i := range proj.Targets {
		t := &proj.Targets[i]
		imgPath := proj.TargetImagePath(path, t)
		base, err := img.Load(imgPath)
		if err != nil {
			return fmt.Errorf("target %s: %w", t.ImagePath, err)
		}
		s, err := scene.New(base)
		if err != nil {
			return err
		}
		if err := project.RestoreDefects(s, cat, t.Defects); err != nil {
			return fmt.Errorf("target %s: %w", t.ImagePath, err)
		}
		reqs = append(reqs, export.Request{
			Scene:           s,
			TargetImage:     t.ImagePath,
			TargetImagePath: imgPath,
		})
	}

	results, err := export.BatchExport(cfg.OutputDir, cfg.Workers, reqs)
	if err != nil {
		return err
	}
	for _, res := range results {
		log.Printf("Exported %s, %s, %s", res.ImagePath, res.MaskPath, res.MetadataPath)
	}
	return nil
}

// placeDefect instantiates one scripted catalog entry and positions it.
func placeDefect(s *scene.Scene, cat *catalog.Catalog, d config.DefectSpec) error {
	var entry *catalog.Entry
	if d.Name != "" {
		entry = cat.Find(d.Type, d.Name)
	} else if byType := cat.ByType(d.Type); len(byType) > 0 {
		entry = byType[0]
	}
	if entry == nil {
		return fmt.Errorf("no catalog entry for type %q name %q", d.Type, d.Name)
	}

	p, err := catalog.Instantiate(entry)
	if err != nil {
		return err
	}
	p.Transform.SetTranslation(d.X, d.Y)
	if d.Scale != 0 {
		p.Transform.SetScale(d.Scale)
	}
	p.Transform.SetRotation(d.Rotation)
	if d.Opacity != 0 {
		p.SetOpacity(d.Opacity)
	}
	s.Add(p)
	return nil
}

// applyStroke replays one scripted paint stroke through the dispatcher.
func applyStroke(s *scene.Scene, cfg config.Config, st config.StrokeSpec) {
	b := scene.DefaultBrush()
	b.Radius = cfg.Brush.Radius
	b.Opacity = cfg.Brush.Opacity
	if st.Radius > 0 {
		b.Radius = st.Radius
	}
	if st.Erase {
		b.Mode = scene.BrushErase
	}

	d := scene.NewDispatcher(s)
	d.SetTool(scene.ToolPaint)
	d.SetBrush(b)

	d.PointerDown(st.Points[0].X, st.Points[0].Y)
	for _, pt := range st.Points[1:] {
		d.PointerMove(pt.X, pt.Y)
	}
	last := st.Points[len(st.Points)-1]
	d.PointerUp(last.X, last.Y)
}

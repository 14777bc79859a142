// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"defectpaste/internal/catalog"
	"defectpaste/internal/scene"
)

// File represents a saved editing session (.dpproj): for each target image,
// the catalog placements and their transforms. Extracted regions and paint
// strokes are pixel-bound and are not persisted; exports capture those.
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	Targets []TargetState `json:"targets"`
}

// TargetState holds the restorable placements for one target image. The
// image path is stored relative to the project file when possible.
type TargetState struct {
	ImagePath string           `json:"image_path"`
	Defects   []PlacementState `json:"defects"`
}

// PlacementState is one catalog placement by reference: the entry identity
// plus the full transform, enough to re-instantiate it.
type PlacementState struct {
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
	Opacity  float64 `json:"opacity"`
}

// New creates an empty project.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
	}
}

// Load loads a project from a .dpproj file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, err
	}
	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SetTarget records the scene state for a target image, replacing any prior
// entry for the same image. projectPath relativizes the stored image path.
func (p *File) SetTarget(projectPath, imagePath string, s *scene.Scene) {
	state := TargetState{
		ImagePath: relativeTo(projectPath, imagePath),
		Defects:   CaptureDefects(s),
	}
	for i, t := range p.Targets {
		if t.ImagePath == state.ImagePath {
			p.Targets[i] = state
			p.Modified = time.Now()
			return
		}
	}
	p.Targets = append(p.Targets, state)
	p.Modified = time.Now()
}

// Target returns the saved state for an image path, or nil.
func (p *File) Target(projectPath, imagePath string) *TargetState {
	rel := relativeTo(projectPath, imagePath)
	for i, t := range p.Targets {
		if t.ImagePath == rel {
			return &p.Targets[i]
		}
	}
	return nil
}

// TargetImagePath returns the absolute path to a saved target image.
func (p *File) TargetImagePath(projectPath string, t *TargetState) string {
	if filepath.IsAbs(t.ImagePath) {
		return t.ImagePath
	}
	return filepath.Join(filepath.Dir(projectPath), t.ImagePath)
}

// CaptureDefects serializes a scene's catalog placements by reference.
func CaptureDefects(s *scene.Scene) []PlacementState {
	var out []PlacementState
	for _, pl := range s.Placements() {
		if pl.Kind != scene.KindDefect {
			continue
		}
		t := pl.Transform.Translation()
		out = append(out, PlacementState{
			Type:     pl.Prov.TypeName,
			Name:     pl.Prov.Source,
			X:        t.X,
			Y:        t.Y,
			Scale:    pl.Transform.Scale(),
			Rotation: pl.Transform.Rotation(),
			Opacity:  pl.Opacity(),
		})
	}
	return out
}

// RestoreDefects re-instantiates saved placements from the catalog into the
// scene, in saved order.
func RestoreDefects(s *scene.Scene, cat *catalog.Catalog, states []PlacementState) error {
	for _, st := range states {
		entry := cat.Find(st.Type, st.Name)
		if entry == nil {
			return fmt.Errorf("catalog entry %s/%s not found", st.Type, st.Name)
		}
		pl, err := catalog.Instantiate(entry)
		if err != nil {
			return err
		}
		pl.Transform.SetTranslation(st.X, st.Y)
		pl.Transform.SetScale(st.Scale)
		pl.Transform.SetRotation(st.Rotation)
		pl.SetOpacity(st.Opacity)
		s.Add(pl)
	}
	s.Deselect()
	return nil
}

func relativeTo(projectPath, imagePath string) string {
	rel, err := filepath.Rel(filepath.Dir(projectPath), imagePath)
	if err != nil {
		return imagePath
	}
	return rel
}

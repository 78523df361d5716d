// Package project reads and writes YAML project files: the declarative form
// of a full render request (clips, animations, transitions, output settings).
package project

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/image2video/internal/animation"
	"github.com/ivlev/image2video/internal/config"
	"github.com/ivlev/image2video/internal/curve"
	"github.com/ivlev/image2video/internal/engine"
	"github.com/ivlev/image2video/internal/transition"
)

// File represents a complete project description.
type File struct {
	Version string `yaml:"version,omitempty"`

	// Output settings; zero values inherit the configuration defaults.
	Width   int    `yaml:"width,omitempty"`
	Height  int    `yaml:"height,omitempty"`
	FPS     int    `yaml:"fps,omitempty"`
	Quality string `yaml:"quality,omitempty"`

	// Transition is the global default for every clip boundary.
	Transition Transition `yaml:"transition,omitempty"`

	Clips []Clip `yaml:"clips"`
}

// Clip describes one slide of the project.
type Clip struct {
	Image    string  `yaml:"image"`
	Duration float64 `yaml:"duration,omitempty"`
	Audio    string  `yaml:"audio,omitempty"`
	// Text is synthesized to speech when no audio file is given.
	Text      string    `yaml:"text,omitempty"`
	Animation Animation `yaml:"animation,omitempty"`
	// Transition overrides the global default on the boundary between the
	// previous clip and this one. Meaningless on the first clip.
	Transition *Transition `yaml:"transition,omitempty"`
}

// Transition names a boundary effect and its overlap in seconds.
type Transition struct {
	Kind     string  `yaml:"kind"`
	Duration float64 `yaml:"duration,omitempty"`
}

// Animation accepts three YAML forms: a bare preset name, a raw numeric
// descriptor (scale/position ranges) and a combination of separately named
// scale/position/curve presets.
type Animation struct {
	Name  string
	Spec  *animation.Spec
	Combo *animation.Combo
}

// rawAnimation is the numeric YAML form of an animation descriptor.
type rawAnimation struct {
	Scale    [2]float64   `yaml:"scale"`
	Position [][2]float64 `yaml:"position"`
	Curve    string       `yaml:"curve"`
}

func (r rawAnimation) toSpec() *animation.Spec {
	spec := animation.Spec{
		Scale: r.Scale,
		Curve: curve.Parse(r.Curve),
	}
	if len(r.Position) > 0 {
		spec.Position[0] = animation.Offset{X: r.Position[0][0], Y: r.Position[0][1]}
	}
	if len(r.Position) > 1 {
		spec.Position[1] = animation.Offset{X: r.Position[1][0], Y: r.Position[1][1]}
	}
	spec = spec.Normalize()
	return &spec
}

func (a *Animation) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&a.Name)
	case yaml.MappingNode:
		// Числовая форма отличается от комбинированной типом поля scale
		var probe struct {
			Scale yaml.Node `yaml:"scale"`
		}
		if err := node.Decode(&probe); err != nil {
			return err
		}
		if probe.Scale.Kind == yaml.SequenceNode {
			var raw rawAnimation
			if err := node.Decode(&raw); err != nil {
				return err
			}
			a.Spec = raw.toSpec()
			return nil
		}
		var combo animation.Combo
		if err := node.Decode(&combo); err != nil {
			return err
		}
		a.Combo = &combo
		return nil
	}
	return fmt.Errorf("project: неожиданная форма animation (строка %d)", node.Line)
}

func (a Animation) MarshalYAML() (interface{}, error) {
	switch {
	case a.Spec != nil:
		return rawAnimation{
			Scale: a.Spec.Scale,
			Position: [][2]float64{
				{a.Spec.Position[0].X, a.Spec.Position[0].Y},
				{a.Spec.Position[1].X, a.Spec.Position[1].Y},
			},
			Curve: a.Spec.Curve.String(),
		}, nil
	case a.Combo != nil:
		return a.Combo, nil
	default:
		return a.Name, nil
	}
}

// IsZero keeps empty animations out of written files.
func (a Animation) IsZero() bool {
	return a.Name == "" && a.Spec == nil && a.Combo == nil
}

// Load reads a project file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("project: разбор %s: %w", path, err)
	}
	if len(f.Clips) == 0 {
		return nil, fmt.Errorf("project: в файле %s нет клипов", path)
	}
	return &f, nil
}

// Write saves a project file.
func Write(f *File, path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Apply copies the project's output settings over the configuration.
// Unset fields keep their configured values.
func (f *File) Apply(cfg *config.Config) {
	if f.Width > 0 {
		cfg.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Height = f.Height
	}
	if f.FPS > 0 {
		cfg.FPS = f.FPS
	}
	if f.Quality != "" {
		cfg.Quality = f.Quality
	}
}

// ClipSpecs converts the project clips into render requests.
func (f *File) ClipSpecs() []engine.ClipSpec {
	specs := make([]engine.ClipSpec, 0, len(f.Clips))
	for _, c := range f.Clips {
		specs = append(specs, engine.ClipSpec{
			ImagePath:     c.Image,
			DurationHint:  c.Duration,
			AudioPath:     c.Audio,
			Text:          c.Text,
			Animation:     c.Animation.Name,
			AnimationSpec: c.Animation.Spec,
			Combo:         c.Animation.Combo,
		})
	}
	return specs
}

// Transitions builds the global boundary spec and the per-boundary override
// list. Boundaries without an override inherit the global spec; a project
// without a global transition inherits the configured default.
func (f *File) Transitions(cfg *config.Config) (engine.TransitionSpec, []engine.TransitionSpec) {
	global := engine.TransitionSpec{
		Kind:     transition.Parse(cfg.Transition),
		Duration: cfg.FadeDuration,
	}
	if f.Transition.Kind != "" {
		global.Kind = transition.Parse(f.Transition.Kind)
	}
	if f.Transition.Duration > 0 {
		global.Duration = f.Transition.Duration
	}

	if len(f.Clips) < 2 {
		return global, nil
	}

	perBoundary := make([]engine.TransitionSpec, len(f.Clips)-1)
	for i := 1; i < len(f.Clips); i++ {
		spec := global
		if o := f.Clips[i].Transition; o != nil {
			// Частичное переопределение: пустой kind наследует глобальный
			if o.Kind != "" {
				spec.Kind = transition.Parse(o.Kind)
			}
			if o.Duration > 0 {
				spec.Duration = o.Duration
			}
		}
		perBoundary[i-1] = spec
	}
	return global, perBoundary
}

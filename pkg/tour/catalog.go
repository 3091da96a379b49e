package tour

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/spotlight/pkg/metrics"
)

// ErrUnknownTour is returned when a tour id is not in the catalog.
var ErrUnknownTour = errors.New("unknown tour")

// ChecklistItem is one onboarding task in a role's persistent checklist.
// Completed is filled from the progress store; definitions leave it false.
type ChecklistItem struct {
	ID        string `yaml:"id" json:"id"`
	Title     string `yaml:"title" json:"title"`
	Completed bool   `yaml:"-" json:"completed"`
	// TourID is started on the destination page when the item is clicked.
	TourID string `yaml:"tour,omitempty" json:"tour,omitempty"`
	// Route is where clicking the item navigates.
	Route string `yaml:"route,omitempty" json:"route,omitempty"`
}

// definitionFile is the on-disk shape of a tour definition file.
type definitionFile struct {
	Tours      []Tour                     `yaml:"tours"`
	Checklists map[string][]ChecklistItem `yaml:"checklists"`
}

// Catalog holds every known tour and checklist.
type Catalog struct {
	tours      map[string]Tour
	order      []string
	checklists map[string][]ChecklistItem
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		tours:      make(map[string]Tour),
		checklists: make(map[string][]ChecklistItem),
	}
}

// Add registers a tour after validating it.
func (c *Catalog) Add(t Tour) error {
	if err := ValidateTour(t); err != nil {
		return err
	}
	if _, dup := c.tours[t.ID]; dup {
		return fmt.Errorf("duplicate tour id %q", t.ID)
	}
	c.tours[t.ID] = t
	c.order = append(c.order, t.ID)
	return nil
}

// SetChecklist replaces the checklist for a role.
func (c *Catalog) SetChecklist(role string, items []ChecklistItem) error {
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("checklist %q item %d: missing id", role, i)
		}
		if seen[item.ID] {
			return fmt.Errorf("checklist %q: duplicate item id %q", role, item.ID)
		}
		seen[item.ID] = true
	}
	c.checklists[role] = items
	return nil
}

// Tour looks up a tour by id.
func (c *Catalog) Tour(id string) (Tour, error) {
	t, ok := c.tours[id]
	if !ok {
		return Tour{}, fmt.Errorf("%w: %q", ErrUnknownTour, id)
	}
	return t, nil
}

// Tours returns tours in definition order.
func (c *Catalog) Tours() []Tour {
	out := make([]Tour, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.tours[id])
	}
	return out
}

// ToursForRoute returns the tours bound to a route, in definition order.
func (c *Catalog) ToursForRoute(route string) []Tour {
	var out []Tour
	for _, id := range c.order {
		if t := c.tours[id]; t.Route == route {
			out = append(out, t)
		}
	}
	return out
}

// Checklist returns a copy of the checklist for role.
func (c *Catalog) Checklist(role string) []ChecklistItem {
	items := c.checklists[role]
	out := make([]ChecklistItem, len(items))
	copy(out, items)
	return out
}

// Roles returns the roles that have checklists, sorted.
func (c *Catalog) Roles() []string {
	roles := make([]string, 0, len(c.checklists))
	for r := range c.checklists {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return roles
}

// ValidateTour checks a tour definition for authoring mistakes.
func ValidateTour(t Tour) error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("tour is missing an id")
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("tour %q: %w", t.ID, ErrNoSteps)
	}
	for i, s := range t.Steps {
		if strings.TrimSpace(s.Content) == "" && strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("tour %q step %d: needs a title or content", t.ID, i+1)
		}
		switch s.Placement {
		case "", PlacementCenter:
		default:
			if !s.Locator.Anchored() {
				return fmt.Errorf("tour %q step %d: placement %q needs a target", t.ID, i+1, s.Placement)
			}
		}
	}
	return nil
}

// ParseDefinitions decodes one definition document into c and verifies
// cross references.
func (c *Catalog) ParseDefinitions(data []byte) error {
	var file definitionFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return fmt.Errorf("parsing tour definitions: %w", err)
	}
	if err := c.merge(file); err != nil {
		return err
	}
	return c.Verify()
}

func (c *Catalog) merge(file definitionFile) error {
	for _, t := range file.Tours {
		if err := c.Add(t); err != nil {
			return err
		}
	}
	roles := make([]string, 0, len(file.Checklists))
	for role := range file.Checklists {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		if err := c.SetChecklist(role, file.Checklists[role]); err != nil {
			return err
		}
	}
	return nil
}

// LoadDefinitions reads definition files and directories of *.yaml / *.yml
// files. Files are read and parsed concurrently and merged in argument order.
func LoadDefinitions(paths ...string) (*Catalog, error) {
	defer metrics.Timer(metrics.DefinitionLoad)()

	files, err := expandDefinitionPaths(paths)
	if err != nil {
		return nil, err
	}

	parsed := make([]definitionFile, len(files))
	var g errgroup.Group
	for i, path := range files {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			dec := yaml.NewDecoder(bytes.NewReader(data))
			dec.KnownFields(true)
			if err := dec.Decode(&parsed[i]); err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := NewCatalog()
	for i, file := range parsed {
		if err := c.merge(file); err != nil {
			return nil, fmt.Errorf("%s: %w", files[i], err)
		}
	}
	if err := c.Verify(); err != nil {
		return nil, err
	}
	return c, nil
}

// Verify checks cross references: every checklist tour must exist.
func (c *Catalog) Verify() error {
	for _, role := range c.Roles() {
		for _, item := range c.checklists[role] {
			if item.TourID == "" {
				continue
			}
			if _, ok := c.tours[item.TourID]; !ok {
				return fmt.Errorf("checklist %q item %q: %w: %q", role, item.ID, ErrUnknownTour, item.TourID)
			}
		}
	}
	return nil
}

func expandDefinitionPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("tour definitions: %w", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("tour definitions: %w", err)
		}
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}
	return files, nil
}

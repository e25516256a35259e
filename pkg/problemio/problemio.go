// Package problemio reads matching problems from disk and writes problems and
// assignments back out.
//
// The file format keys students and teachers by ID:
//
//	{
//	  "students": {"s1": {"choice": {"t1": 1}}},
//	  "teachers": {"t1": {"capacity": 1, "preference": {"s1": 1}}}
//	}
//
// JSON and YAML share this layout.
package problemio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jakechorley/lab-matching/pkg/core/model"
)

type studentRecord struct {
	Choice map[string]int `json:"choice" yaml:"choice"`
}

type teacherRecord struct {
	Capacity   int            `json:"capacity" yaml:"capacity"`
	Preference map[string]int `json:"preference" yaml:"preference"`
}

type problemFile struct {
	Students map[string]studentRecord `json:"students" yaml:"students"`
	Teachers map[string]teacherRecord `json:"teachers" yaml:"teachers"`
}

// LoadProblem reads a .json, .yaml or .yml problem file.
// Students and teachers are ordered by ID. The problem is not validated.
func LoadProblem(path string) (*model.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file: %w", err)
	}

	var file problemFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse problem file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse problem file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported problem file extension '%s' (expected .json, .yaml or .yml)", ext)
	}

	return file.toProblem(), nil
}

func (f problemFile) toProblem() *model.Problem {
	p := &model.Problem{}
	for id, s := range f.Students {
		choice := s.Choice
		if choice == nil {
			choice = map[string]int{}
		}
		p.Students = append(p.Students, model.Student{ID: id, Choice: choice})
	}
	for id, t := range f.Teachers {
		pref := t.Preference
		if pref == nil {
			pref = map[string]int{}
		}
		p.Teachers = append(p.Teachers, model.Teacher{ID: id, Capacity: t.Capacity, Preference: pref})
	}
	p.SortByID()
	return p
}

func fromProblem(p *model.Problem) problemFile {
	f := problemFile{
		Students: make(map[string]studentRecord, len(p.Students)),
		Teachers: make(map[string]teacherRecord, len(p.Teachers)),
	}
	for _, s := range p.Students {
		f.Students[s.ID] = studentRecord{Choice: s.Choice}
	}
	for _, t := range p.Teachers {
		f.Teachers[t.ID] = teacherRecord{Capacity: t.Capacity, Preference: t.Preference}
	}
	return f
}

// AssignmentFileName returns the base name used for an assignment computed from inputPath
func AssignmentFileName(method, inputPath string) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return fmt.Sprintf("assignment_%s_%s.json", method, stem)
}

// SaveAssignment writes the assignment as JSON into dir under
// assignment_<method>_<input stem>.json, never overwriting an existing file.
// Returns the path written.
func SaveAssignment(dir, method, inputPath string, assignment model.Assignment) (string, error) {
	return writeJSON(dir, AssignmentFileName(method, inputPath), assignment)
}

// SaveProblem writes the problem as JSON into dir under name, never overwriting an
// existing file. Returns the path written.
func SaveProblem(dir, name string, p *model.Problem) (string, error) {
	return writeJSON(dir, name, fromProblem(p))
}

func writeJSON(dir, name string, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path, err := UniquePath(dir, name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// UniquePath returns dir/name, or dir/stem(i).ext with the smallest i >= 1 that is not taken
func UniquePath(dir, name string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read output directory: %w", err)
	}
	taken := make(map[string]bool, len(entries))
	for _, e := range entries {
		taken[e.Name()] = true
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for i := 1; taken[candidate]; i++ {
		candidate = fmt.Sprintf("%s(%d)%s", stem, i, ext)
	}
	return filepath.Join(dir, candidate), nil
}

// EnsureDir checks that dir exists and is a directory
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("output directory %s does not exist", dir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// FormatAssignment renders the assignment for a terminal: each teacher with its
// capacity and the choice rank every placed student gave it, then the unassigned bucket.
func FormatAssignment(p *model.Problem, assignment model.Assignment) string {
	var b strings.Builder
	for _, t := range p.Teachers {
		fmt.Fprintf(&b, "%s (capacity: %d)\n", t.ID, t.Capacity)
		students := append([]string(nil), assignment[t.ID]...)
		sort.Strings(students)
		for _, id := range students {
			choice := "unranked"
			if s, ok := p.Student(id); ok {
				if rank, ok := s.Choice[t.ID]; ok {
					choice = fmt.Sprintf("%d", rank)
				}
			}
			fmt.Fprintf(&b, "  - %s (choice: %s)\n", id, choice)
		}
	}
	if unassigned := assignment.Unassigned(); len(unassigned) > 0 {
		fmt.Fprintf(&b, "%s\n", model.UnassignedKey)
		for _, id := range unassigned {
			fmt.Fprintf(&b, "  - %s\n", id)
		}
	}
	return b.String()
}

// FileStore reads and writes problem files on the local filesystem
type FileStore struct{}

func (FileStore) LoadProblem(path string) (*model.Problem, error) { return LoadProblem(path) }

func (FileStore) SaveAssignment(dir, method, inputPath string, assignment model.Assignment) (string, error) {
	return SaveAssignment(dir, method, inputPath, assignment)
}

func (FileStore) SaveProblem(dir, name string, p *model.Problem) (string, error) {
	return SaveProblem(dir, name, p)
}

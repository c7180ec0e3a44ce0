package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

const maxCloseMatches = 5

var ErrProgramNotFound = errors.New("program not found")

type Program struct {
	ID                 string `json:"id"`
	ProgramGroupID     string `json:"programGroupId"`
	CatalogDisplayName string `json:"catalogDisplayName"`
	LongName           string `json:"longName"`
	Name               string `json:"name"`
	// Raw is the program object exactly as the API returned it.
	Raw json.RawMessage `json:"-"`
}

func (p *Program) UnmarshalJSON(data []byte) error {
	type programFields Program
	var fields programFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*p = Program(fields)
	p.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Title is the first non-empty of the display, long and short names.
func (p Program) Title() string {
	switch {
	case p.CatalogDisplayName != "":
		return p.CatalogDisplayName
	case p.LongName != "":
		return p.LongName
	default:
		return p.Name
	}
}

type Match struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

type Programs []Program

func LoadPrograms(path string) (Programs, error) {
	rawBytes, readError := os.ReadFile(path)
	if readError != nil {
		return nil, readError
	}
	var envelope struct {
		Data Programs `json:"data"`
	}
	if err := json.Unmarshal(rawBytes, &envelope); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return envelope.Data, nil
}

func (ps Programs) ByID(id string) (Program, error) {
	for _, program := range ps {
		if program.ProgramGroupID == id || program.ID == id {
			return program, nil
		}
	}
	return Program{}, fmt.Errorf("%w: id %s", ErrProgramNotFound, id)
}

// ByName returns the first program whose title contains name, ignoring case.
// On a miss it returns ErrProgramNotFound together with up to five programs
// sharing the first word of name, best Jaro-Winkler score first.
func (ps Programs) ByName(name string) (Program, []Match, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Program{}, nil, fmt.Errorf("%w: empty name", ErrProgramNotFound)
	}
	for _, program := range ps {
		if strings.Contains(strings.ToLower(program.Title()), needle) {
			return program, nil, nil
		}
	}

	firstWord := strings.Fields(needle)[0]
	var closeMatches []Match
	for _, program := range ps {
		lowerTitle := strings.ToLower(program.Title())
		if !strings.Contains(lowerTitle, firstWord) {
			continue
		}
		closeMatches = append(closeMatches, Match{
			ID:    program.ID,
			Title: program.Title(),
			Score: matchr.JaroWinkler(lowerTitle, needle, false),
		})
	}
	sort.SliceStable(closeMatches, func(i, j int) bool { return closeMatches[i].Score > closeMatches[j].Score })
	if len(closeMatches) > maxCloseMatches {
		closeMatches = closeMatches[:maxCloseMatches]
	}
	return Program{}, closeMatches, fmt.Errorf("%w: no exact match for name %s", ErrProgramNotFound, name)
}

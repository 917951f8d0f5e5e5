package output

import (
	"fmt"

	"github.com/dhabedank/workflow-lens/internal/core"
)

// UnknownStep stands in for a maps_to id that names no today step.
const UnknownStep = "unknown step"

// MappingRow pairs a future step with the today steps it absorbs.
type MappingRow struct {
	Future core.Step
	Today  []string
}

// Stats summarizes who does the work before and after.
type Stats struct {
	TodaySteps    int `json:"today_steps"`
	FutureSteps   int `json:"future_steps"`
	FutureWithAI  int `json:"future_with_ai"`
	HumanInLoop   int `json:"human_in_loop"`
	MappedFuture  int `json:"mapped_future"`
	UnknownMapped int `json:"unknown_mapped"`
}

// view is what every renderer draws from.
type view struct {
	Heading   string
	Year      int
	RequestID string
	Mode      core.Mode
	Repaired  bool
	Doc       *core.WorkflowDocument
	Mapping   []MappingRow
	Stats     Stats
	Warnings  []string
	Raw       string
}

func newView(result *core.Result, config Config) view {
	year := config.Year
	if year == 0 {
		year = core.DefaultYear
	}
	heading := config.Heading
	if heading == "" {
		heading = fmt.Sprintf("%d Workflow Shift Lens", year)
	}
	v := view{
		Heading:   heading,
		Year:      year,
		RequestID: result.RequestID,
		Mode:      result.Mode,
		Repaired:  result.Repaired,
		Doc:       result.Document,
		Warnings:  result.Warnings,
	}
	if config.IncludeRaw {
		v.Raw = result.Raw
		if result.Repaired {
			v.Raw = result.RepairRaw
		}
	}
	if result.Document != nil {
		v.Mapping = BuildMapping(result.Document)
		v.Stats = Summarize(result.Document)
	}
	return v
}

// BuildMapping resolves each future step's maps_to ids to today labels.
// Steps with no stated mapping are left out.
func BuildMapping(doc *core.WorkflowDocument) []MappingRow {
	var rows []MappingRow
	for _, f := range doc.FutureSteps {
		if len(f.MapsTo) == 0 {
			continue
		}
		row := MappingRow{Future: f}
		for _, id := range f.MapsTo {
			if label, ok := doc.TodayLabel(id); ok {
				row.Today = append(row.Today, label)
			} else {
				row.Today = append(row.Today, fmt.Sprintf("%s (%s)", UnknownStep, id))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Summarize counts actors across the document.
func Summarize(doc *core.WorkflowDocument) Stats {
	s := Stats{TodaySteps: len(doc.TodaySteps), FutureSteps: len(doc.FutureSteps)}
	for _, f := range doc.FutureSteps {
		if f.Actor.Has(core.ActorAI) {
			s.FutureWithAI++
		}
		if f.Actor.Has(core.ActorHuman) {
			s.HumanInLoop++
		}
		if len(f.MapsTo) > 0 {
			s.MappedFuture++
		}
		for _, id := range f.MapsTo {
			if _, ok := doc.TodayLabel(id); !ok {
				s.UnknownMapped++
			}
		}
	}
	return s
}

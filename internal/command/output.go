package command

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"k8s.io/apimachinery/pkg/util/duration"
	"sigs.k8s.io/yaml"

	"github.com/five82/fluidboard/internal/fluid"
)

// Output formats accepted by -o.
const (
	outputTable = "table"
	outputYAML  = "yaml"
	outputJSON  = "json"
)

func validateOutput(format string) error {
	switch format {
	case outputTable, outputYAML, outputJSON:
		return nil
	}
	return fmt.Errorf("invalid output format %q, expected one of: table, yaml, json", format)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).PaddingRight(3)
	cellStyle   = lipgloss.NewStyle().PaddingRight(3)
)

// printTable renders records in kubectl-like columns for their kind.
func printTable(w io.Writer, kind fluid.Kind, records []fluid.Record, now time.Time) error {
	if len(records) == 0 {
		_, err := fmt.Fprintf(w, "No %s found.\n", kind.Plural())
		return err
	}

	headers := columns(kind)
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, row(kind, rec, now))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(r, c int) lipgloss.Style {
			if r < 0 {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func columns(kind fluid.Kind) []string {
	switch {
	case kind == fluid.KindDataset:
		return []string{"NAMESPACE", "NAME", "PHASE", "UFS TOTAL", "CACHED", "CACHED%", "AGE"}
	case kind.IsRuntime():
		return []string{"NAMESPACE", "NAME", "PHASE", "MASTERS", "WORKERS", "CACHED", "AGE"}
	default:
		return []string{"NAMESPACE", "NAME", "DATASET", "PHASE", "POLICY", "DURATION", "AGE"}
	}
}

func row(kind fluid.Kind, rec fluid.Record, now time.Time) []string {
	created := age(rec.Created, now)
	switch {
	case kind == fluid.KindDataset:
		ds := rec.Dataset
		if ds == nil {
			ds = &fluid.DatasetInfo{}
		}
		return []string{rec.Namespace, rec.Name, rec.Phase, dash(ds.UfsTotal), dash(ds.Cache.Cached), dash(ds.Cache.Percentage), created}
	case kind.IsRuntime():
		rt := rec.Runtime
		if rt == nil {
			rt = &fluid.RuntimeInfo{}
		}
		return []string{rec.Namespace, rec.Name, rec.Phase, dash(rt.MasterReplicas), dash(rt.WorkerReplicas), dash(rt.Cache.Cached), created}
	default:
		dl := rec.DataLoad
		if dl == nil {
			dl = &fluid.DataLoadInfo{}
		}
		return []string{rec.Namespace, rec.Name, dash(dl.DatasetName), rec.Phase, dash(dl.Policy), dash(dl.Duration), created}
	}
}

func age(created, now time.Time) string {
	if created.IsZero() {
		return fluid.Placeholder
	}
	return duration.HumanDuration(now.Sub(created))
}

func dash(v string) string {
	if v == "" {
		return fluid.Placeholder
	}
	return v
}

// printObjects writes raw objects as YAML or JSON. With asList, or when
// there is more than one object, they are wrapped in a v1 List.
func printObjects(w io.Writer, format string, objs []map[string]any, asList bool) error {
	var doc any
	switch {
	case len(objs) == 1 && !asList:
		doc = objs[0]
	default:
		items := make([]any, 0, len(objs))
		for _, o := range objs {
			items = append(items, o)
		}
		doc = map[string]any{"apiVersion": "v1", "kind": "List", "items": items}
	}

	switch format {
	case outputJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
}

package builtin

import (
	"path/filepath"

	"flowback/internal/schema"
	"flowback/pkg/records"
)

// AttachMetadata stamps per-file context onto every row. Well name, unique
// well identifier and formation come from the file's metadata and only fill
// cells that are blank or absent, so values carried by the table itself win.
// The source file column is always set to the base name of Source.
type AttachMetadata struct {
	Meta   records.Metadata
	Source string
}

// Apply implements transformer.Transformer.
func (t AttachMetadata) Apply(in records.Batch) records.Batch {
	out := in.Clone()
	fills := []struct{ col, val string }{
		{schema.ColWellName, t.Meta.WellName},
		{schema.ColWellID, t.Meta.WellID},
		{schema.ColFormation, t.Meta.Formation},
	}
	for _, f := range fills {
		name, ok := out.ColumnName(f.col)
		if !ok {
			name = f.col
			out.Columns = append(out.Columns, name)
		}
		for _, r := range out.Rows {
			if r[name] == "" {
				r[name] = f.val
			}
		}
	}

	if t.Source != "" {
		name, ok := out.ColumnName(schema.ColSourceFile)
		if !ok {
			name = schema.ColSourceFile
			out.Columns = append(out.Columns, name)
		}
		base := filepath.Base(t.Source)
		for _, r := range out.Rows {
			r[name] = base
		}
	}
	return out
}

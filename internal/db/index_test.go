package db

import "testing"

func TestIndexDefinition_Validate(t *testing.T) {
	valid := IndexDefinition{
		Name:     "nearby:catalog:idx",
		Prefixes: []string{"nearby:catalog:offering:"},
		Fields: []IndexField{
			{Name: "category", Type: IndexFieldTag},
			{Name: "lat", Type: IndexFieldNumeric},
			{Name: "vector", Type: IndexFieldVector, VectorDim: 1536, VectorAlgo: VectorHNSW},
		},
	}

	tests := []struct {
		name    string
		mutate  func(d *IndexDefinition)
		wantErr bool
	}{
		{"valid", func(*IndexDefinition) {}, false},
		{"empty name", func(d *IndexDefinition) { d.Name = "" }, true},
		{"bad name", func(d *IndexDefinition) { d.Name = "has space" }, true},
		{"no fields", func(d *IndexDefinition) { d.Fields = nil }, true},
		{"empty field name", func(d *IndexDefinition) { d.Fields = []IndexField{{Type: IndexFieldTag}} }, true},
		{"duplicate field", func(d *IndexDefinition) {
			d.Fields = []IndexField{{Name: "a"}, {Name: "a"}}
		}, true},
		{"vector without dim", func(d *IndexDefinition) {
			d.Fields = []IndexField{{Name: "vector", Type: IndexFieldVector}}
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			d.Fields = append([]IndexField(nil), valid.Fields...)
			tt.mutate(&d)
			err := d.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	for _, s := range []string{"a", "nearby:catalog:idx", "x_y-z"} {
		if !IsValidIdentifier(s) {
			t.Errorf("expected %q valid", s)
		}
	}
	for _, s := range []string{"", "a b", "a/b", "é"} {
		if IsValidIdentifier(s) {
			t.Errorf("expected %q invalid", s)
		}
	}
}

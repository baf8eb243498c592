package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FilterPolicy decides how a per-field constraint matches: free-form text
// fields use substring containment, controlled-vocabulary fields use exact
// (case-insensitive) equality.
type FilterPolicy string

const (
	FilterContains FilterPolicy = "contains"
	FilterEquals   FilterPolicy = "equals"
)

// PendingLabel is the group shown for records whose classification field is
// absent or blank.
const PendingLabel = "Sin clasificar"

// Dataset describes one browsable collection: where its rows come from and
// how the view engine should interpret them. Each page of the dashboard is
// one Dataset entry in datasets.yaml instead of its own copy of the
// filter/sort/paginate pipeline.
type Dataset struct {
	Name  string `yaml:"-" json:"name"` // registry key, filled by the loader
	Table string `yaml:"table" json:"table"`
	Label string `yaml:"label" json:"label"`

	IDField     string `yaml:"idField" json:"id_field"`
	DateField   string `yaml:"dateField" json:"date_field"`
	AmountField string `yaml:"amountField" json:"amount_field"`

	SearchFields []string                `yaml:"searchFields" json:"search_fields"`
	Filters      map[string]FilterPolicy `yaml:"filters" json:"filters"`

	CategoryField     string `yaml:"categoryField" json:"category_field,omitempty"`
	CounterpartyField string `yaml:"counterpartyField" json:"counterparty_field,omitempty"`

	ExportFields []string `yaml:"exportFields" json:"export_fields"`

	DefaultSortKey string  `yaml:"defaultSortKey" json:"default_sort_key"`
	DefaultSortDir SortDir `yaml:"defaultSortDir" json:"default_sort_dir"`

	TopN int `yaml:"topN" json:"top_n"`
}

// Validate checks a dataset entry after YAML load.
func (d Dataset) Validate() error {
	if err := validation.ValidateStruct(&d,
		validation.Field(&d.Table, validation.Required),
		validation.Field(&d.Label, validation.Required),
		validation.Field(&d.IDField, validation.Required),
		validation.Field(&d.DateField, validation.Required),
		validation.Field(&d.AmountField, validation.Required),
		validation.Field(&d.SearchFields, validation.Required),
		validation.Field(&d.ExportFields, validation.Required),
		validation.Field(&d.DefaultSortKey, validation.Required),
		validation.Field(&d.DefaultSortDir, validation.Required, validation.In(SortAsc, SortDesc)),
		validation.Field(&d.TopN, validation.Min(1)),
	); err != nil {
		return err
	}
	for field, policy := range d.Filters {
		if err := validation.Validate(string(policy),
			validation.Required, validation.In(string(FilterContains), string(FilterEquals))); err != nil {
			return validation.Errors{field: err}
		}
	}
	return nil
}

// SortableField reports whether key is a field the collator may be asked to
// sort this dataset by.
func (d Dataset) SortableField(key string) bool {
	if key == d.IDField || key == d.DateField || key == d.AmountField {
		return true
	}
	for _, f := range d.SearchFields {
		if f == key {
			return true
		}
	}
	return false
}

// FieldKind tells the collator how to compare a sort key.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldNumeric
	FieldDate
)

// KindOf classifies a field name for collation purposes.
func (d Dataset) KindOf(field string) FieldKind {
	switch field {
	case d.AmountField:
		return FieldNumeric
	case d.DateField:
		return FieldDate
	default:
		return FieldText
	}
}

package netsuite

import (
	"slices"
	"strings"

	"github.com/jask/linkwise/internal/draftstore"
	"github.com/jask/linkwise/internal/form"
)

// fieldSpec describes one input of the add form: its copy and its rules,
// checked in order with the first failure reported.
type fieldSpec struct {
	field     string
	labelBase string
	suffix    string
	// existing extracts the value already configured on a segment; nil
	// means the field need not be unique.
	existing func(CustomSegment) string
	oneOf    []string
}

var fieldSpecs = map[string]fieldSpec{
	InputCustomSegmentType: {field: InputCustomSegmentType, labelBase: "customSegmentType", oneOf: RecordTypes},
	InputSegmentName: {field: InputSegmentName, labelBase: "segmentName", suffix: "Name",
		existing: func(s CustomSegment) string { return s.SegmentName }},
	InputInternalID: {field: InputInternalID, labelBase: "internalID", suffix: "InternalID",
		existing: func(s CustomSegment) string { return s.InternalID }},
	InputScriptID: {field: InputScriptID, labelBase: "scriptID", suffix: "ScriptID",
		existing: func(s CustomSegment) string { return s.ScriptID }},
	InputMapping: {field: InputMapping, labelBase: "mapping", suffix: "Mapping", oneOf: Mappings},
}

// FieldOrder is the order in which the wizard asks for inputs.
var FieldOrder = []string{InputCustomSegmentType, InputSegmentName, InputInternalID, InputScriptID, InputMapping}

// Label returns the field label copy key for a record type.
func (s fieldSpec) Label(recordType string) string {
	base := s.labelBase
	if s.suffix != "" && recordType != RecordTypeCustomSegment {
		base = "customRecord" + s.suffix
	}
	return copyPrefix + "customSegments.fields." + base
}

func (s fieldSpec) Title(recordType string) string {
	if s.suffix == "" {
		return copyPrefix + "customSegments.addForm.segmentTypeTitle"
	}
	return copyPrefix + "customSegments.addForm." + recordType + s.suffix + "Title"
}

func (s fieldSpec) Footer(recordType string) string {
	if s.suffix == "" {
		return ""
	}
	return copyPrefix + "customSegments.addForm." + recordType + s.suffix + "Footer"
}

func (s fieldSpec) validate(errs form.Errors, values draftstore.Record, existing []CustomSegment) {
	label := s.Label(RecordType(values))
	v := strings.TrimSpace(values.String(s.field))
	switch {
	case !form.IsRequiredFulfilled(v):
		errs.Add(s.field, form.KindRequiredFieldMissing, MsgRequiredField, label)
	case s.existing != nil && form.MatchesAnyFold(v, existingValues(existing, s.existing)):
		errs.Add(s.field, form.KindDuplicateValue, MsgUniqueField, label)
	case s.oneOf != nil && !slices.Contains(s.oneOf, v):
		errs.Add(s.field, form.KindInvalidValue, MsgInvalidField, label)
	}
}

func existingValues(segments []CustomSegment, get func(CustomSegment) string) []string {
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		out = append(out, get(s))
	}
	return out
}

// ValidateField checks one input against the policy's configured segments.
func ValidateField(field string, values draftstore.Record, policy *Policy) form.Errors {
	errs := form.Errors{}
	if s, ok := fieldSpecs[field]; ok {
		s.validate(errs, values, policy.segments())
	}
	return errs
}

// ValidateSegment checks every input, as the final submit does.
func ValidateSegment(values draftstore.Record, policy *Policy) form.Errors {
	errs := form.Errors{}
	for _, f := range FieldOrder {
		fieldSpecs[f].validate(errs, values, policy.segments())
	}
	return errs
}

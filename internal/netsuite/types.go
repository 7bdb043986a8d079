// Package netsuite implements the wizard that adds a NetSuite custom segment
// or custom record to a policy's import configuration.
package netsuite

import (
	"strings"

	"github.com/jask/linkwise/internal/draftstore"
)

// KeyAddFormDraft holds the inputs of the add form between screens.
const (
	FormID          = "netSuiteCustomFieldAddForm"
	KeyAddFormDraft = "netSuiteCustomFieldAddFormDraft"
)

// Record types a custom segment entry can describe.
const (
	RecordTypeCustomSegment = "customSegment"
	RecordTypeCustomRecord  = "customRecord"
)

// Input ids of the add form.
const (
	InputCustomSegmentType = "customSegmentType"
	InputSegmentName       = "segmentName"
	InputInternalID        = "internalID"
	InputScriptID          = "scriptID"
	InputMapping           = "mapping"
)

// Where imported values land in the workspace.
const (
	MappingTag         = "TAG"
	MappingReportField = "REPORT_FIELD"
)

const copyPrefix = "workspace.netsuite.import.importCustomFields."

// Message keys for validation errors. Params carry the translated field label.
const (
	MsgRequiredField = copyPrefix + "requiredFieldError"
	MsgUniqueField   = copyPrefix + "customSegments.errors.uniqueFieldError"
	MsgInvalidField  = copyPrefix + "customSegments.errors.invalidFieldError"
)

var (
	RecordTypes = []string{RecordTypeCustomSegment, RecordTypeCustomRecord}
	Mappings    = []string{MappingTag, MappingReportField}
)

// CustomSegment is one configured entry.
type CustomSegment struct {
	RecordType  string `json:"customSegmentType"`
	SegmentName string `json:"segmentName"`
	InternalID  string `json:"internalID"`
	ScriptID    string `json:"scriptID"`
	Mapping     string `json:"mapping"`
}

// Policy is the slice of workspace configuration the wizard validates
// against.
type Policy struct {
	ID             string
	CustomSegments []CustomSegment
}

func (p *Policy) segments() []CustomSegment {
	if p == nil {
		return nil
	}
	return p.CustomSegments
}

// RecordType reads the discriminator from the form draft.
func RecordType(draft draftstore.Record) string {
	if t := draft.String(InputCustomSegmentType); t != "" {
		return t
	}
	return RecordTypeCustomSegment
}

// SegmentFromValues builds an entry from form values.
func SegmentFromValues(values draftstore.Record) CustomSegment {
	return CustomSegment{
		RecordType:  RecordType(values),
		SegmentName: strings.TrimSpace(values.String(InputSegmentName)),
		InternalID:  strings.TrimSpace(values.String(InputInternalID)),
		ScriptID:    strings.TrimSpace(values.String(InputScriptID)),
		Mapping:     strings.TrimSpace(values.String(InputMapping)),
	}
}

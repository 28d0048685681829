package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormRecordWith_CopiesFieldsOnly(t *testing.T) {
	aliases := StringList{"Member Number"}
	record := FormRecord{FormID: "ED-001", Title: "Element Description", Fields: map[string]Value{
		"name":    Text("Member ID"),
		"aliases": aliases,
	}}

	next := record.With("name", Text("Member Code"))

	if got := record.Fields["name"]; got != Text("Member ID") {
		t.Fatalf("receiver changed: name = %v", got)
	}
	if got := next.Fields["name"]; got != Text("Member Code") {
		t.Fatalf("name = %v", got)
	}
	shared := next.Fields["aliases"].(StringList)
	if &shared[0] != &aliases[0] {
		t.Fatalf("untouched value was copied")
	}
	if diff := cmp.Diff([]string{"ED-001", "Element Description"}, []string{next.FormID, next.Title}); diff != "" {
		t.Fatalf("frame mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordSetWith_LeavesReceiver(t *testing.T) {
	set := RecordSet{"A": {FormID: "ED-001"}}
	next := set.With("B", FormRecord{FormID: "DF-001"})

	if diff := cmp.Diff([]string{"A"}, set.Types()); diff != "" {
		t.Fatalf("receiver types mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "B"}, next.Types()); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}
}

// Package sample ships the default record set: one Element, Data Flow and
// Data Store description for a membership system.
package sample

import (
	_ "embed"

	"github.com/goliatone/go-formdoc/pkg/bridge"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/schema"
)

//go:embed forms.json
var formsJSON []byte

// JSON returns a copy of the embedded sample document.
func JSON() []byte {
	return append([]byte(nil), formsJSON...)
}

// Records decodes the sample document against reg. A nil registry uses the
// embedded schemas.
func Records(reg *schema.Registry) (model.RecordSet, error) {
	if reg == nil {
		var err error
		if reg, err = schema.Default(); err != nil {
			return nil, err
		}
	}
	return bridge.Deserialize(reg, formsJSON)
}

// MustRecords panics when the sample fails to decode.
func MustRecords(reg *schema.Registry) model.RecordSet {
	set, err := Records(reg)
	if err != nil {
		panic(err)
	}
	return set
}

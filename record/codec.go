package record

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/store_errors"
)

// Encode serializes a record to its stored value representation.
// Encode and Decode are a round trip: Decode(Encode(r)) == r for every
// valid r.
func Encode(e Entity) ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses a stored value into the given record and checks that every
// required field of the record's kind is present. A value that does not
// parse, or parses with a required field absent, is corrupt; it is never
// defaulted into a valid record.
func Decode(data []byte, into Entity) error {
	if err := json.Unmarshal(data, into); err != nil {
		return errors.Join(store_errors.ErrCorruptRecord, err)
	}
	if err := into.Validate(); err != nil {
		return errors.Join(store_errors.ErrCorruptRecord, err)
	}
	return nil
}

func missing(kind, field string) error {
	return fmt.Errorf("%s: missing required field %q", kind, field)
}

func malformed(kind, field, value string) error {
	return fmt.Errorf("%s: bad value %q for field %q", kind, value, field)
}

package pipeline

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/qbadvisory/hr-analytics-go/internal/pkg/tabular"
)

// rawEnvelope is the wire shape of every HR API payload.
type rawEnvelope struct {
	Message struct {
		Data []map[string]interface{} `json:"data"`
	} `json:"message"`
}

// NormalizeGeneric unwraps message.data into one row per item, flattening
// nested objects into dotted columns and JSON-encoding nested lists into
// string cells.
func NormalizeGeneric(payload []byte) (*tabular.Table, error) {
	var env rawEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	t := tabular.New()
	for _, item := range env.Message.Data {
		row := make(tabular.Row, len(item))
		flattenInto(row, "", item)
		t.Append(row)
	}
	return t, nil
}

// balanceMetaColumns are the parent identity values broadcast onto every
// child balance row.
var balanceMetaColumns = []string{"employee", "user_id", "employee_name", "company", "department_name"}

// NormalizeBalances flattens the per-employee leave_balances list, with the
// employee identity broadcast onto every child row.
func NormalizeBalances(payload []byte) (*tabular.Table, error) {
	var env rawEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	t := tabular.New()
	for _, item := range env.Message.Data {
		balances, ok := item["leave_balances"].([]interface{})
		if !ok {
			continue
		}
		meta := make(tabular.Row)
		for _, c := range balanceMetaColumns {
			if v, ok := item[c]; ok {
				meta[c] = scalarString(v)
			}
		}
		for _, b := range balances {
			entry, ok := b.(map[string]interface{})
			if !ok {
				continue
			}
			row := make(tabular.Row, len(entry)+len(meta))
			for k, v := range meta {
				row[k] = v
			}
			flattenInto(row, "", entry)
			t.Append(row)
		}
	}
	return t, nil
}

// flattenInto writes item into row, prefixing nested object keys with dots.
func flattenInto(row tabular.Row, prefix string, item map[string]interface{}) {
	for k, v := range item {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flattenInto(row, key, val)
		case []interface{}:
			encoded, err := json.Marshal(val)
			if err != nil {
				row[key] = ""
				continue
			}
			row[key] = string(encoded)
		default:
			row[key] = scalarString(v)
		}
	}
}

func scalarString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

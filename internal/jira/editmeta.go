package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/lotas/ticketdeck/internal/types"
)

type editMetaResponse struct {
	Fields map[string]editMetaField `json:"fields"`
}

type editMetaField struct {
	Name   string `json:"name"`
	Schema struct {
		Type   string `json:"type"`
		Items  string `json:"items"`
		System string `json:"system"`
		Custom string `json:"custom"`
	} `json:"schema"`
	Operations    []string `json:"operations"`
	AllowedValues []any    `json:"allowedValues"`
}

// EditMeta fetches the editable-field descriptors for key. current holds
// the ticket's known field values and fills CurrentValue; it may be nil.
func (c *Client) EditMeta(ctx context.Context, key string, current map[string]any) ([]types.FieldMeta, error) {
	body, err := c.get(ctx, "/rest/api/2/issue/"+url.PathEscape(key)+"/editmeta", nil)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	return ParseEditMeta(body, current)
}

// ParseEditMeta converts an editmeta response body into field descriptors
// sorted by field key.
func ParseEditMeta(body []byte, current map[string]any) ([]types.FieldMeta, error) {
	var resp editMetaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode editmeta: %w", err)
	}

	out := make([]types.FieldMeta, 0, len(resp.Fields))
	for key, f := range resp.Fields {
		fieldType := f.Schema.Type
		if f.Schema.Custom != "" {
			fieldType = f.Schema.Custom
		}
		allowed := make([]string, 0, len(f.AllowedValues))
		for _, v := range f.AllowedValues {
			if s := displayValue(v); s != "" {
				allowed = append(allowed, s)
			}
		}
		out = append(out, types.FieldMeta{
			FieldKey:      key,
			FieldName:     f.Name,
			FieldType:     fieldType,
			WidgetType:    widgetType(f.Schema.Type, len(allowed) > 0),
			IsEditable:    hasOperation(f.Operations, "set"),
			AllowedValues: allowed,
			CurrentValue:  displayValue(current[key]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FieldKey < out[j].FieldKey })
	return out, nil
}

func hasOperation(ops []string, want string) bool {
	for _, op := range ops {
		if op == want {
			return true
		}
	}
	return false
}

func widgetType(schemaType string, hasAllowed bool) string {
	switch schemaType {
	case "date", "datetime":
		return "date"
	case "number":
		return "number"
	case "option", "priority", "resolution", "issuetype", "version", "component":
		return "select"
	case "array":
		if hasAllowed {
			return "select"
		}
	}
	if hasAllowed {
		return "select"
	}
	return "text"
}

// displayValue renders a JSON field value the way the tracker UI would:
// objects by name/value/displayName, arrays joined by ", ".
func displayValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case map[string]any:
		for _, k := range []string{"name", "value", "displayName", "key"} {
			if s, ok := x[k].(string); ok && s != "" {
				return s
			}
		}
		return ""
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if s := displayValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(x)
	}
}

package lua

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/workbench/internal/plugin"
)

// decodeManifest reads a MANIFEST table. Absent fields stay empty so that
// validation can name them; fields of the wrong type are an error wrapping
// plugin.ErrInvalidManifest.
func decodeManifest(v lua.LValue) (*plugin.Manifest, error) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: MANIFEST must be a table, got %s", plugin.ErrInvalidManifest, v.Type())
	}

	m := &plugin.Manifest{Enabled: true}

	strs := []struct {
		field string
		dst   *string
	}{
		{plugin.FieldName, &m.Name},
		{plugin.FieldDisplayName, &m.DisplayName},
		{plugin.FieldDescription, &m.Description},
		{plugin.FieldIcon, &m.Icon},
		{plugin.FieldColor, &m.Color},
	}
	for _, s := range strs {
		val, err := stringField(tbl, s.field)
		if err != nil {
			return nil, err
		}
		*s.dst = val
	}

	category, err := stringField(tbl, plugin.FieldCategory)
	if err != nil {
		return nil, err
	}
	m.Category = plugin.Category(strings.ToLower(strings.TrimSpace(category)))

	if m.RequiresAPIKey, err = boolField(tbl, "requires_api_key", false); err != nil {
		return nil, err
	}
	if m.Enabled, err = boolField(tbl, "enabled", true); err != nil {
		return nil, err
	}

	switch deps := tbl.RawGetString("dependencies").(type) {
	case *lua.LNilType:
	case *lua.LTable:
		n := deps.Len()
		m.Dependencies = make([]string, 0, n)
		for i := 1; i <= n; i++ {
			name, ok := deps.RawGetInt(i).(lua.LString)
			if !ok {
				return nil, fmt.Errorf("%w: dependencies[%d] must be a string", plugin.ErrInvalidManifest, i)
			}
			m.Dependencies = append(m.Dependencies, string(name))
		}
	default:
		return nil, fmt.Errorf("%w: dependencies must be a list, got %s", plugin.ErrInvalidManifest, deps.Type())
	}

	return m, nil
}

func stringField(tbl *lua.LTable, key string) (string, error) {
	switch v := tbl.RawGetString(key).(type) {
	case *lua.LNilType:
		return "", nil
	case lua.LString:
		return string(v), nil
	default:
		return "", fmt.Errorf("%w: %s must be a string, got %s", plugin.ErrInvalidManifest, key, v.Type())
	}
}

func boolField(tbl *lua.LTable, key string, def bool) (bool, error) {
	switch v := tbl.RawGetString(key).(type) {
	case *lua.LNilType:
		return def, nil
	case lua.LBool:
		return bool(v), nil
	default:
		return false, fmt.Errorf("%w: %s must be a boolean, got %s", plugin.ErrInvalidManifest, key, v.Type())
	}
}
